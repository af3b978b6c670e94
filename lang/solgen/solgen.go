// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

// Package solgen renders an analyzed Luxbin program as Solidity source.
//
// The generator never fails on a program the analysis accepted; any AST
// shape it cannot handle is a defect and panics, to be contained by the
// compile facade. Output is a pure function of the AST, the analysis Info
// and the Options, so identical inputs produce byte-identical text.
package solgen

import (
	"fmt"
	"strings"

	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/analysis"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/ast"
)

// DefaultPragma is the Solidity version constraint emitted when the caller
// does not override it.
const DefaultPragma = "^0.8.0"

// Options configure a single generation run.
type Options struct {
	ContractName string
	Pragma       string // empty means DefaultPragma
}

// Generate renders the program as a single Solidity contract.
func Generate(prog *ast.Program, info *analysis.Info, opts Options) string {
	pragma := opts.Pragma
	if pragma == "" {
		pragma = DefaultPragma
	}
	g := &generator{info: info}
	g.linef("// SPDX-License-Identifier: MIT")
	g.linef("pragma solidity %s;", pragma)
	g.linef("")
	g.linef("contract %s {", opts.ContractName)
	g.indent++

	g.stateVars()
	g.events()
	g.constructor()
	for _, fi := range info.Funcs {
		g.function(fi)
	}

	g.indent--
	g.linef("}")
	return g.out.String()
}

type generator struct {
	info   *analysis.Info
	out    strings.Builder
	indent int

	// loopSeq numbers synthesized loop index variables so nested array
	// loops never collide. tmpSeq does the same for hoisted array
	// temporaries.
	loopSeq int
	tmpSeq  int

	wroteSection bool
}

// sectionBreak separates contract sections with a single blank line.
func (g *generator) sectionBreak() {
	if g.wroteSection {
		g.linef("")
	}
	g.wroteSection = true
}

func (g *generator) linef(format string, args ...interface{}) {
	if format != "" {
		g.out.WriteString(strings.Repeat("    ", g.indent))
		fmt.Fprintf(&g.out, format, args...)
	}
	g.out.WriteByte('\n')
}

// ---------------------------------------------------------------------------
// Contract sections
// ---------------------------------------------------------------------------

// stateVars emits one public storage declaration per top-level let/const.
// Scalar initializers are emitted inline; array literals are deferred to the
// constructor, which Solidity requires for dynamic storage arrays.
func (g *generator) stateVars() {
	if len(g.info.StateVars) == 0 {
		return
	}
	g.sectionBreak()
	for _, sv := range g.info.StateVars {
		typ := sv.Type.Target()
		if sv.Type == analysis.IntArray || sv.Decl.Value == nil {
			g.linef("%s public %s;", typ, sv.Name)
			continue
		}
		g.linef("%s public %s = %s;", typ, sv.Name, g.expr(sv.Decl.Value))
	}
}

// events declares exactly the log event variants the program uses, each at
// most once.
func (g *generator) events() {
	if !g.info.Events.Any() {
		return
	}
	g.sectionBreak()
	if g.info.Events.String {
		g.linef("event LogString(string value);")
	}
	if g.info.Events.Bool {
		g.linef("event LogBool(bool value);")
	}
	if g.info.Events.Number {
		g.linef("event LogNumber(int256 value);")
	}
}

// constructor emits the synthesized constructor: array state-variable
// initializers first, then every top-level executable statement, all in
// source order.
func (g *generator) constructor() {
	if !g.info.NeedsConstructor() {
		return
	}
	g.sectionBreak()
	g.linef("constructor() {")
	g.indent++
	for _, sv := range g.info.StateVars {
		if sv.Type != analysis.IntArray || sv.Decl.Value == nil {
			continue
		}
		arr, ok := sv.Decl.Value.(*ast.ArrayLiteral)
		if !ok {
			g.linef("%s = %s;", sv.Name, g.expr(sv.Decl.Value))
			continue
		}
		for _, el := range arr.Elements {
			g.linef("%s.push(%s);", sv.Name, g.expr(el))
		}
	}
	for _, stmt := range g.info.CtorStmts {
		g.stmt(stmt)
	}
	g.indent--
	g.linef("}")
}

func (g *generator) function(fi *analysis.FuncInfo) {
	g.sectionBreak()
	params := make([]string, len(fi.Params))
	for i, p := range fi.Params {
		params[i] = paramDecl(p.Type, p.Name)
	}
	sig := fmt.Sprintf("function %s(%s) public", fi.Name, strings.Join(params, ", "))
	if fi.View {
		sig += " view"
	}
	if fi.HasReturn {
		ret := fi.ReturnType.Target()
		if fi.ReturnType.Reference() {
			ret += " memory"
		}
		sig += fmt.Sprintf(" returns (%s)", ret)
	}
	g.linef("%s {", sig)
	g.indent++
	for _, stmt := range fi.Decl.Body {
		g.stmt(stmt)
	}
	g.indent--
	g.linef("}")
}

func paramDecl(t analysis.Type, name string) string {
	if t.Reference() {
		return t.Target() + " memory " + name
	}
	return t.Target() + " " + name
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (g *generator) stmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		g.localDecl(s)
	case *ast.AssignStmt:
		g.linef("%s = %s;", s.Name, g.expr(s.Value))
	case *ast.IndexAssignStmt:
		g.linef("%s[%s] = %s;", s.Name, g.index(s.Index), g.expr(s.Value))
	case *ast.IfStmt:
		g.ifStmt(s)
	case *ast.WhileStmt:
		g.linef("while (%s) {", g.expr(s.Condition))
		g.indent++
		g.block(s.Body)
		g.indent--
		g.linef("}")
	case *ast.ForStmt:
		g.forStmt(s)
	case *ast.ReturnStmt:
		if s.Value != nil {
			g.linef("return %s;", g.expr(s.Value))
		} else {
			g.linef("return;")
		}
	case *ast.BreakStmt:
		g.linef("break;")
	case *ast.ContinueStmt:
		g.linef("continue;")
	case *ast.ExprStmt:
		g.exprStmt(s.Expression)
	default:
		panic(fmt.Sprintf("solgen: unhandled statement %T", stmt))
	}
}

func (g *generator) block(stmts []ast.Statement) {
	for _, s := range stmts {
		g.stmt(s)
	}
}

// localDecl emits a local variable. Array literals need an explicit
// allocation plus element stores since Solidity has no dynamic-array
// literal in memory.
func (g *generator) localDecl(d *ast.VarDecl) {
	t := g.info.VarType(d)
	if t == analysis.IntArray {
		arr, ok := d.Value.(*ast.ArrayLiteral)
		if !ok {
			if d.Value != nil {
				g.linef("int256[] memory %s = %s;", d.Name, g.expr(d.Value))
			} else {
				g.linef("int256[] memory %s;", d.Name)
			}
			return
		}
		g.linef("int256[] memory %s = new int256[](%d);", d.Name, len(arr.Elements))
		for i, el := range arr.Elements {
			g.linef("%s[%d] = %s;", d.Name, i, g.expr(el))
		}
		return
	}
	decl := paramDecl(t, d.Name)
	if d.Value != nil {
		g.linef("%s = %s;", decl, g.expr(d.Value))
	} else {
		g.linef("%s;", decl)
	}
}

func (g *generator) ifStmt(s *ast.IfStmt) {
	g.linef("if (%s) {", g.expr(s.Condition))
	g.indent++
	g.block(s.Then)
	g.indent--
	for _, clause := range s.ElseIfs {
		g.linef("} else if (%s) {", g.expr(clause.Condition))
		g.indent++
		g.block(clause.Body)
		g.indent--
	}
	if s.Else != nil {
		g.linef("} else {")
		g.indent++
		g.block(s.Else)
		g.indent--
	}
	g.linef("}")
}

// forStmt lowers the two iterable forms: range(lo, hi) becomes a counting
// loop, an array expression becomes an index loop that rebinds the element
// each iteration.
func (g *generator) forStmt(s *ast.ForStmt) {
	if call, ok := s.Iterable.(*ast.CallExpr); ok && call.Callee == "range" {
		lo, hi := g.expr(call.Arguments[0]), g.expr(call.Arguments[1])
		g.linef("for (int256 %s = %s; %s < %s; %s++) {", s.Var, lo, s.Var, hi, s.Var)
		g.indent++
		g.block(s.Body)
		g.indent--
		g.linef("}")
		return
	}
	g.loopSeq++
	idx := fmt.Sprintf("i_%d", g.loopSeq)
	src := g.expr(s.Iterable)
	g.linef("for (uint256 %s = 0; %s < %s.length; %s++) {", idx, idx, src, idx)
	g.indent++
	g.linef("int256 %s = %s[%s];", s.Var, src, idx)
	g.block(s.Body)
	g.indent--
	g.linef("}")
}

// exprStmt emits an expression in statement position. log calls become
// event emissions; everything else is rendered as a call statement.
func (g *generator) exprStmt(e ast.Expression) {
	if call, ok := e.(*ast.CallExpr); ok && call.Callee == "log" {
		arg := call.Arguments[0]
		switch analysis.StaticType(arg) {
		case analysis.String:
			g.linef("emit LogString(%s);", g.expr(arg))
		case analysis.Bool:
			g.linef("emit LogBool(%s);", g.expr(arg))
		default:
			g.linef("emit LogNumber(%s);", g.expr(arg))
		}
		return
	}
	g.linef("%s;", g.expr(e))
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// opRewrite maps Luxbin operators to their Solidity spelling. Operators not
// in the table pass through unchanged.
var opRewrite = map[string]string{
	"and": "&&",
	"or":  "||",
	"^":   "**",
}

func (g *generator) expr(e ast.Expression) string {
	switch x := e.(type) {
	case *ast.IntLiteral:
		return x.Token.Literal
	case *ast.StringLiteral:
		return quote(x.Value)
	case *ast.BoolLiteral:
		if x.Value {
			return "true"
		}
		return "false"
	case *ast.NilLiteral:
		return "0"
	case *ast.Ident:
		return x.Value
	case *ast.PrefixExpr:
		if x.Operator == "not" {
			return "(!" + g.expr(x.Right) + ")"
		}
		return "(-" + g.expr(x.Right) + ")"
	case *ast.InfixExpr:
		op := x.Operator
		if rw, ok := opRewrite[op]; ok {
			op = rw
		}
		return "(" + g.expr(x.Left) + " " + op + " " + g.expr(x.Right) + ")"
	case *ast.IndexExpr:
		return g.expr(x.Left) + "[" + g.index(x.Index) + "]"
	case *ast.ArrayLiteral:
		return g.hoistArray(x)
	case *ast.CallExpr:
		return g.call(x)
	}
	panic(fmt.Sprintf("solgen: unhandled expression %T", e))
}

// hoistArray lowers an array literal in value position into a fresh memory
// temporary. Solidity inline array literals are fixed size and do not
// convert to int256[], so the literal becomes an allocation plus element
// stores; assigning the temporary to a storage array copies it.
func (g *generator) hoistArray(arr *ast.ArrayLiteral) string {
	g.tmpSeq++
	tmp := fmt.Sprintf("a_%d", g.tmpSeq)
	g.linef("int256[] memory %s = new int256[](%d);", tmp, len(arr.Elements))
	for i, el := range arr.Elements {
		g.linef("%s[%d] = %s;", tmp, i, g.expr(el))
	}
	return tmp
}

// index renders an array subscript. Solidity indexes with uint256 while
// Luxbin integers are int256, so everything but a plain number literal is
// cast.
func (g *generator) index(e ast.Expression) string {
	if lit, ok := e.(*ast.IntLiteral); ok {
		return lit.Token.Literal
	}
	return "uint256(" + g.expr(e) + ")"
}

func (g *generator) call(call *ast.CallExpr) string {
	switch call.Callee {
	case "qubit":
		// Quantum register creation collapses to chain-state entropy.
		return fmt.Sprintf(
			"uint256(keccak256(abi.encodePacked(block.timestamp, block.number, %s)))",
			g.expr(call.Arguments[0]))
	case "measure":
		return fmt.Sprintf(
			"int256(uint256(keccak256(abi.encodePacked(block.timestamp, block.number, %s))) %% 2)",
			g.expr(call.Arguments[0]))
	}
	args := make([]string, len(call.Arguments))
	for i, a := range call.Arguments {
		args[i] = g.expr(a)
	}
	return call.Callee + "(" + strings.Join(args, ", ") + ")"
}

// quote re-encodes a decoded string literal as Solidity source.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
