// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

// Package ast defines the Abstract Syntax Tree for the Luxbin language.
//
// Design overview:
//
//   - All AST nodes implement the Node interface via TokenLiteral and String.
//   - Expressions and Statements each have a marker interface that embeds
//     Node to enable type-safe dispatch; both sets are closed: every consumer
//     switches exhaustively over the node kinds defined here.
//   - The tree is position-annotated via token.Token so error messages can
//     reference source locations.
//   - Nodes are constructed once by the parser and never mutated afterwards;
//     the analysis and both generators read them only.
package ast

import (
	"math/big"
	"strings"

	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/token"
)

// ---------------------------------------------------------------------------
// Core interfaces
// ---------------------------------------------------------------------------

// Node is the base interface that every AST node must implement.
type Node interface {
	// TokenLiteral returns the literal of the token that begins this node.
	TokenLiteral() string

	// String renders the node back to Luxbin-like source, for diagnostics.
	String() string
}

// Expression is a marker interface for all expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a marker interface for all statement nodes.
type Statement interface {
	Node
	statementNode()
}

// ---------------------------------------------------------------------------
// Program, the root of every parse tree
// ---------------------------------------------------------------------------

// Program is the top-level AST node. It holds all top-level statements in
// source order. Order is semantically significant: it is both declaration
// order for state-variable getters and execution order for the synthesized
// constructor.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, s := range p.Statements {
		sb.WriteString(s.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// Helper types shared by multiple nodes
// ---------------------------------------------------------------------------

// Param represents a single parameter in a function signature.
// TypeName is empty when the parameter carries no annotation.
type Param struct {
	Token    token.Token
	Name     string
	TypeName string
}

func (p Param) String() string {
	if p.TypeName != "" {
		return p.Name + ": " + p.TypeName
	}
	return p.Name
}

// ElseIf is a single "else if <cond> then <body>" clause. Clause order is
// preserved and evaluated first-match-wins at generation time.
type ElseIf struct {
	Token     token.Token
	Condition Expression
	Body      []Statement
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// VarDecl is a top-level or local variable declaration:
// "let name [: type] [= expr]" or "const name [: type] [= expr]".
type VarDecl struct {
	Token    token.Token // 'let' or 'const'
	Name     string
	TypeName string // empty when unannotated
	Const    bool
	Value    Expression // nil when no initializer
}

func (s *VarDecl) statementNode()       {}
func (s *VarDecl) TokenLiteral() string { return s.Token.Literal }
func (s *VarDecl) String() string {
	var sb strings.Builder
	if s.Const {
		sb.WriteString("const ")
	} else {
		sb.WriteString("let ")
	}
	sb.WriteString(s.Name)
	if s.TypeName != "" {
		sb.WriteString(": " + s.TypeName)
	}
	if s.Value != nil {
		sb.WriteString(" = " + s.Value.String())
	}
	return sb.String()
}

// FuncDecl is "func name(params) [: type] body end".
type FuncDecl struct {
	Token      token.Token // 'func'
	Name       string
	Params     []Param
	ReturnType string // empty when unannotated; resolved by inference
	Body       []Statement
}

func (s *FuncDecl) statementNode()       {}
func (s *FuncDecl) TokenLiteral() string { return s.Token.Literal }
func (s *FuncDecl) String() string {
	var sb strings.Builder
	sb.WriteString("func " + s.Name + "(")
	for i, p := range s.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	if s.ReturnType != "" {
		sb.WriteString(": " + s.ReturnType)
	}
	sb.WriteString(" ... end")
	return sb.String()
}

// IfStmt is "if cond then body {else if cond then body} [else body] end".
type IfStmt struct {
	Token     token.Token // 'if'
	Condition Expression
	Then      []Statement
	ElseIfs   []ElseIf
	Else      []Statement // nil when no else branch
}

func (s *IfStmt) statementNode()       {}
func (s *IfStmt) TokenLiteral() string { return s.Token.Literal }
func (s *IfStmt) String() string {
	return "if " + s.Condition.String() + " then ... end"
}

// WhileStmt is "while cond do body end".
type WhileStmt struct {
	Token     token.Token // 'while'
	Condition Expression
	Body      []Statement
}

func (s *WhileStmt) statementNode()       {}
func (s *WhileStmt) TokenLiteral() string { return s.Token.Literal }
func (s *WhileStmt) String() string {
	return "while " + s.Condition.String() + " do ... end"
}

// ForStmt is "for var in iterable do body end".
type ForStmt struct {
	Token    token.Token // 'for'
	Var      string
	Iterable Expression
	Body     []Statement
}

func (s *ForStmt) statementNode()       {}
func (s *ForStmt) TokenLiteral() string { return s.Token.Literal }
func (s *ForStmt) String() string {
	return "for " + s.Var + " in " + s.Iterable.String() + " do ... end"
}

// ReturnStmt is "return [expr]".
type ReturnStmt struct {
	Token token.Token // 'return'
	Value Expression  // nil for a bare return
}

func (s *ReturnStmt) statementNode()       {}
func (s *ReturnStmt) TokenLiteral() string { return s.Token.Literal }
func (s *ReturnStmt) String() string {
	if s.Value != nil {
		return "return " + s.Value.String()
	}
	return "return"
}

// AssignStmt is "name = expr".
type AssignStmt struct {
	Token token.Token // '='
	Name  string
	Value Expression
}

func (s *AssignStmt) statementNode()       {}
func (s *AssignStmt) TokenLiteral() string { return s.Token.Literal }
func (s *AssignStmt) String() string {
	return s.Name + " = " + s.Value.String()
}

// IndexAssignStmt is "name[index] = expr".
type IndexAssignStmt struct {
	Token token.Token // '='
	Name  string
	Index Expression
	Value Expression
}

func (s *IndexAssignStmt) statementNode()       {}
func (s *IndexAssignStmt) TokenLiteral() string { return s.Token.Literal }
func (s *IndexAssignStmt) String() string {
	return s.Name + "[" + s.Index.String() + "] = " + s.Value.String()
}

// ExprStmt wraps an expression used in statement position.
type ExprStmt struct {
	Token      token.Token
	Expression Expression
}

func (s *ExprStmt) statementNode()       {}
func (s *ExprStmt) TokenLiteral() string { return s.Token.Literal }
func (s *ExprStmt) String() string       { return s.Expression.String() }

// BreakStmt is "break".
type BreakStmt struct {
	Token token.Token
}

func (s *BreakStmt) statementNode()       {}
func (s *BreakStmt) TokenLiteral() string { return s.Token.Literal }
func (s *BreakStmt) String() string       { return "break" }

// ContinueStmt is "continue".
type ContinueStmt struct {
	Token token.Token
}

func (s *ContinueStmt) statementNode()       {}
func (s *ContinueStmt) TokenLiteral() string { return s.Token.Literal }
func (s *ContinueStmt) String() string       { return "continue" }

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// IntLiteral is an integer literal. Value is arbitrary precision since the
// target integer type is 256 bits wide.
type IntLiteral struct {
	Token token.Token
	Value *big.Int
}

func (e *IntLiteral) expressionNode()      {}
func (e *IntLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *IntLiteral) String() string       { return e.Token.Literal }

// StringLiteral is a double-quoted string literal; Value holds the decoded text.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (e *StringLiteral) expressionNode()      {}
func (e *StringLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *StringLiteral) String() string       { return "\"" + e.Value + "\"" }

// BoolLiteral is true or false.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (e *BoolLiteral) expressionNode()      {}
func (e *BoolLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *BoolLiteral) String() string       { return e.Token.Literal }

// NilLiteral is the nil keyword.
type NilLiteral struct {
	Token token.Token
}

func (e *NilLiteral) expressionNode()      {}
func (e *NilLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *NilLiteral) String() string       { return "nil" }

// ArrayLiteral is "[e1, e2, ...]".
type ArrayLiteral struct {
	Token    token.Token // '['
	Elements []Expression
}

func (e *ArrayLiteral) expressionNode()      {}
func (e *ArrayLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *ArrayLiteral) String() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Ident is an identifier reference.
type Ident struct {
	Token token.Token
	Value string
}

func (e *Ident) expressionNode()      {}
func (e *Ident) TokenLiteral() string { return e.Token.Literal }
func (e *Ident) String() string       { return e.Value }

// PrefixExpr is a unary operation: "not x" or "-x".
type PrefixExpr struct {
	Token    token.Token
	Operator string // "not" or "-"
	Right    Expression
}

func (e *PrefixExpr) expressionNode()      {}
func (e *PrefixExpr) TokenLiteral() string { return e.Token.Literal }
func (e *PrefixExpr) String() string {
	if e.Operator == "not" {
		return "(not " + e.Right.String() + ")"
	}
	return "(" + e.Operator + e.Right.String() + ")"
}

// InfixExpr is a binary operation: "a + b", "x and y", "n ^ 2".
type InfixExpr struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (e *InfixExpr) expressionNode()      {}
func (e *InfixExpr) TokenLiteral() string { return e.Token.Literal }
func (e *InfixExpr) String() string {
	return "(" + e.Left.String() + " " + e.Operator + " " + e.Right.String() + ")"
}

// CallExpr is "callee(args)". Callees are plain names: either a declared
// function or one of the builtin primitives.
type CallExpr struct {
	Token     token.Token // '('
	Callee    string
	Arguments []Expression
}

func (e *CallExpr) expressionNode()      {}
func (e *CallExpr) TokenLiteral() string { return e.Token.Literal }
func (e *CallExpr) String() string {
	parts := make([]string, len(e.Arguments))
	for i, a := range e.Arguments {
		parts[i] = a.String()
	}
	return e.Callee + "(" + strings.Join(parts, ", ") + ")"
}

// IndexExpr is "left[index]".
type IndexExpr struct {
	Token token.Token // '['
	Left  Expression
	Index Expression
}

func (e *IndexExpr) expressionNode()      {}
func (e *IndexExpr) TokenLiteral() string { return e.Token.Literal }
func (e *IndexExpr) String() string {
	return e.Left.String() + "[" + e.Index.String() + "]"
}
