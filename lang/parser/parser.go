// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

// Package parser turns a Luxbin token stream into an AST.
//
// The parser is a recursive-descent parser with Pratt-style expression
// parsing. It is fail-fast: the first syntax error aborts the parse and is
// returned as a *Error carrying the offending line. Blocks are delimited by
// keywords (then/do ... end) rather than braces, so the parser never needs
// to balance punctuation across statements.
package parser

import (
	"fmt"
	"math/big"

	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/ast"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/token"
)

// Error is a syntax error with the line it occurred on.
type Error struct {
	Msg  string
	Line int
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Operator precedence levels, lowest to highest. POWER sits above UNARY so
// that -2 ^ 2 parses as -(2 ^ 2).
const (
	_ int = iota
	LOWEST
	LOGICOR  // or
	LOGICAND // and
	EQUALS   // == !=
	COMPARE  // < > <= >=
	SUM      // + -
	PRODUCT  // * / %
	UNARY    // not -x
	POWER    // ^
	CALL     // f(x) a[i]
)

var precedences = map[token.Type]int{
	token.OR:       LOGICOR,
	token.AND:      LOGICAND,
	token.EQ:       EQUALS,
	token.NEQ:      EQUALS,
	token.LT:       COMPARE,
	token.GT:       COMPARE,
	token.LTE:      COMPARE,
	token.GTE:      COMPARE,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.STAR:     PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.CARET:    POWER,
	token.LPAREN:   CALL,
	token.LBRACKET: CALL,
}

// Parser holds the token stream and the current parse position.
type Parser struct {
	toks []token.Token
	pos  int

	cur  token.Token
	peek token.Token

	// loopDepth tracks lexical loop nesting so break and continue can be
	// rejected outside loops at parse time.
	loopDepth int
}

// New creates a Parser over a token stream produced by lexer.Tokenize.
// The stream is expected to end with an EOF token.
func New(toks []token.Token) *Parser {
	p := &Parser{toks: toks}
	p.next()
	p.next()
	return p
}

// Parse is a convenience wrapper: parse the whole stream as a Program.
func Parse(toks []token.Token) (*ast.Program, error) {
	return New(toks).ParseProgram()
}

func (p *Parser) next() {
	p.cur = p.peek
	if p.pos < len(p.toks) {
		p.peek = p.toks[p.pos]
		p.pos++
	} else {
		p.peek = token.Token{Type: token.EOF, Pos: p.cur.Pos}
	}
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

// expect asserts the current token type and advances past it.
func (p *Parser) expect(t token.Type) error {
	if !p.curIs(t) {
		return p.errorf("expected %q, found %s", t.String(), p.describe(p.cur))
	}
	p.next()
	return nil
}

func (p *Parser) describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.INT:
		return fmt.Sprintf("%q", tok.Literal)
	case token.STRING:
		return "string literal"
	default:
		return fmt.Sprintf("%q", tok.Type.String())
	}
}

func (p *Parser) errorf(format string, args ...interface{}) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Line: p.cur.Pos.Line}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// ParseProgram parses the full token stream into a Program. The first
// syntax error aborts the parse.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		stmt, err := p.parseStatement(true)
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// parseStatement dispatches on the leading token. topLevel gates function
// declarations, which are only legal at program scope.
func (p *Parser) parseStatement(topLevel bool) (ast.Statement, error) {
	switch p.cur.Type {
	case token.LET, token.CONST:
		return p.parseVarDecl()
	case token.FUNC:
		if !topLevel {
			return nil, p.errorf("function declarations are only allowed at the top level")
		}
		return p.parseFuncDecl()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.BREAK:
		if p.loopDepth == 0 {
			return nil, p.errorf("'break' outside of a loop")
		}
		stmt := &ast.BreakStmt{Token: p.cur}
		p.next()
		return stmt, nil
	case token.CONTINUE:
		if p.loopDepth == 0 {
			return nil, p.errorf("'continue' outside of a loop")
		}
		stmt := &ast.ContinueStmt{Token: p.cur}
		p.next()
		return stmt, nil
	default:
		return p.parseSimpleStmt()
	}
}

// parseBlock consumes statements until one of the given terminator keywords
// is current. The terminator itself is left for the caller.
func (p *Parser) parseBlock(terminators ...token.Type) ([]ast.Statement, error) {
	var stmts []ast.Statement
	for {
		if p.curIs(token.EOF) {
			return nil, p.errorf("unexpected end of input, expected %q", terminators[0].String())
		}
		for _, t := range terminators {
			if p.curIs(t) {
				return stmts, nil
			}
		}
		stmt, err := p.parseStatement(false)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseVarDecl() (ast.Statement, error) {
	decl := &ast.VarDecl{Token: p.cur, Const: p.curIs(token.CONST)}
	p.next()
	if !p.curIs(token.IDENT) {
		return nil, p.errorf("expected variable name, found %s", p.describe(p.cur))
	}
	decl.Name = p.cur.Literal
	p.next()
	if p.curIs(token.COLON) {
		p.next()
		name, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		decl.TypeName = name
	}
	if p.curIs(token.ASSIGN) {
		p.next()
		value, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		decl.Value = value
	}
	if decl.Const && decl.Value == nil {
		return nil, p.errorf("const declaration of %q requires an initializer", decl.Name)
	}
	return decl, nil
}

// parseTypeName accepts a bare identifier used in annotation position.
// Whether the name denotes a known type is the analyzer's concern.
func (p *Parser) parseTypeName() (string, error) {
	if !p.curIs(token.IDENT) {
		return "", p.errorf("expected type name after ':', found %s", p.describe(p.cur))
	}
	name := p.cur.Literal
	p.next()
	return name, nil
}

func (p *Parser) parseFuncDecl() (ast.Statement, error) {
	decl := &ast.FuncDecl{Token: p.cur}
	p.next()
	if !p.curIs(token.IDENT) {
		return nil, p.errorf("expected function name, found %s", p.describe(p.cur))
	}
	decl.Name = p.cur.Literal
	p.next()
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	for !p.curIs(token.RPAREN) {
		if len(decl.Params) > 0 {
			if err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		if !p.curIs(token.IDENT) {
			return nil, p.errorf("expected parameter name, found %s", p.describe(p.cur))
		}
		param := ast.Param{Token: p.cur, Name: p.cur.Literal}
		p.next()
		if p.curIs(token.COLON) {
			p.next()
			name, err := p.parseTypeName()
			if err != nil {
				return nil, err
			}
			param.TypeName = name
		}
		decl.Params = append(decl.Params, param)
	}
	p.next() // ')'
	if p.curIs(token.COLON) {
		p.next()
		name, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		decl.ReturnType = name
	}
	body, err := p.parseBlock(token.END)
	if err != nil {
		return nil, err
	}
	decl.Body = body
	p.next() // 'end'
	return decl, nil
}

func (p *Parser) parseIfStmt() (ast.Statement, error) {
	stmt := &ast.IfStmt{Token: p.cur}
	p.next()
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Condition = cond
	if err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	then, err := p.parseBlock(token.ELSE, token.END)
	if err != nil {
		return nil, err
	}
	stmt.Then = then

	// Fold "else if" chains into flat clauses so downstream passes never
	// recurse through nested conditionals that the author wrote linearly.
	for p.curIs(token.ELSE) && p.peekIs(token.IF) {
		clause := ast.ElseIf{Token: p.peek}
		p.next() // 'else'
		p.next() // 'if'
		cond, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		clause.Condition = cond
		if err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		body, err := p.parseBlock(token.ELSE, token.END)
		if err != nil {
			return nil, err
		}
		clause.Body = body
		stmt.ElseIfs = append(stmt.ElseIfs, clause)
	}
	if p.curIs(token.ELSE) {
		p.next()
		body, err := p.parseBlock(token.END)
		if err != nil {
			return nil, err
		}
		stmt.Else = body
	}
	p.next() // 'end'
	return stmt, nil
}

func (p *Parser) parseWhileStmt() (ast.Statement, error) {
	stmt := &ast.WhileStmt{Token: p.cur}
	p.next()
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Condition = cond
	if err := p.expect(token.DO); err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseBlock(token.END)
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	p.next() // 'end'
	return stmt, nil
}

func (p *Parser) parseForStmt() (ast.Statement, error) {
	stmt := &ast.ForStmt{Token: p.cur}
	p.next()
	if !p.curIs(token.IDENT) {
		return nil, p.errorf("expected loop variable name, found %s", p.describe(p.cur))
	}
	stmt.Var = p.cur.Literal
	p.next()
	if err := p.expect(token.IN); err != nil {
		return nil, err
	}
	iter, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Iterable = iter
	if err := p.expect(token.DO); err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseBlock(token.END)
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	p.next() // 'end'
	return stmt, nil
}

// exprStart reports whether a token of type t can begin an expression.
// A return followed by anything else is a bare return.
func exprStart(t token.Type) bool {
	switch t {
	case token.INT, token.STRING, token.IDENT, token.TRUE, token.FALSE,
		token.NIL, token.NOT, token.MINUS, token.LPAREN, token.LBRACKET:
		return true
	}
	return false
}

func (p *Parser) parseReturnStmt() (ast.Statement, error) {
	stmt := &ast.ReturnStmt{Token: p.cur}
	p.next()
	if !exprStart(p.cur.Type) {
		return stmt, nil
	}
	value, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	return stmt, nil
}

// parseSimpleStmt covers assignments, index assignments and expression
// statements. The distinction is only visible after the left-hand side has
// been parsed, so it parses an expression first and inspects what follows.
func (p *Parser) parseSimpleStmt() (ast.Statement, error) {
	startLine := p.cur.Pos.Line
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.curIs(token.ASSIGN) {
		assignTok := p.cur
		p.next()
		value, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		switch target := expr.(type) {
		case *ast.Ident:
			return &ast.AssignStmt{Token: assignTok, Name: target.Value, Value: value}, nil
		case *ast.IndexExpr:
			base, ok := target.Left.(*ast.Ident)
			if !ok {
				return nil, &Error{Msg: "indexed assignment target must be a variable", Line: startLine}
			}
			return &ast.IndexAssignStmt{
				Token: assignTok,
				Name:  base.Value,
				Index: target.Index,
				Value: value,
			}, nil
		default:
			return nil, &Error{Msg: "invalid assignment target", Line: startLine}
		}
	}
	return &ast.ExprStmt{Token: tokenOf(expr), Expression: expr}, nil
}

func tokenOf(expr ast.Expression) token.Token {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Token
	case *ast.CallExpr:
		return e.Token
	case *ast.IntLiteral:
		return e.Token
	case *ast.StringLiteral:
		return e.Token
	case *ast.BoolLiteral:
		return e.Token
	case *ast.NilLiteral:
		return e.Token
	case *ast.ArrayLiteral:
		return e.Token
	case *ast.PrefixExpr:
		return e.Token
	case *ast.InfixExpr:
		return e.Token
	case *ast.IndexExpr:
		return e.Token
	}
	return token.Token{}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for precedence < p.curPrecedence() {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parsePrefix() (ast.Expression, error) {
	switch p.cur.Type {
	case token.INT:
		return p.parseIntLiteral()
	case token.STRING:
		lit := &ast.StringLiteral{Token: p.cur, Value: p.cur.Literal}
		p.next()
		return lit, nil
	case token.TRUE, token.FALSE:
		lit := &ast.BoolLiteral{Token: p.cur, Value: p.curIs(token.TRUE)}
		p.next()
		return lit, nil
	case token.NIL:
		lit := &ast.NilLiteral{Token: p.cur}
		p.next()
		return lit, nil
	case token.IDENT:
		ident := &ast.Ident{Token: p.cur, Value: p.cur.Literal}
		p.next()
		return ident, nil
	case token.NOT, token.MINUS:
		expr := &ast.PrefixExpr{Token: p.cur, Operator: p.cur.Literal}
		p.next()
		right, err := p.parseExpression(UNARY)
		if err != nil {
			return nil, err
		}
		expr.Right = right
		return expr, nil
	case token.LPAREN:
		p.next()
		inner, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case token.LBRACKET:
		return p.parseArrayLiteral()
	default:
		return nil, p.errorf("unexpected %s in expression", p.describe(p.cur))
	}
}

func (p *Parser) parseInfix(left ast.Expression) (ast.Expression, error) {
	switch p.cur.Type {
	case token.LPAREN:
		return p.parseCall(left)
	case token.LBRACKET:
		expr := &ast.IndexExpr{Token: p.cur, Left: left}
		p.next()
		index, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		expr.Index = index
		if err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		expr := &ast.InfixExpr{Token: p.cur, Left: left, Operator: p.cur.Literal}
		prec := p.curPrecedence()
		p.next()
		// '^' is right-associative: parse the right side one level below
		// its own precedence so a ^ b ^ c groups as a ^ (b ^ c).
		if expr.Operator == "^" {
			prec--
		}
		right, err := p.parseExpression(prec)
		if err != nil {
			return nil, err
		}
		expr.Right = right
		return expr, nil
	}
}

func (p *Parser) parseIntLiteral() (ast.Expression, error) {
	lit := &ast.IntLiteral{Token: p.cur}
	value, ok := new(big.Int).SetString(p.cur.Literal, 10)
	// The literal text is unsigned digits, so the only rejection is a
	// constant that cannot fit an int256.
	if !ok || value.BitLen() > 255 {
		return nil, p.errorf("integer literal %q out of range", p.cur.Literal)
	}
	lit.Value = value
	p.next()
	return lit, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	lit := &ast.ArrayLiteral{Token: p.cur}
	p.next()
	for !p.curIs(token.RBRACKET) {
		if len(lit.Elements) > 0 {
			if err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		elem, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, elem)
	}
	p.next() // ']'
	return lit, nil
}

func (p *Parser) parseCall(callee ast.Expression) (ast.Expression, error) {
	ident, ok := callee.(*ast.Ident)
	if !ok {
		return nil, p.errorf("only named functions can be called")
	}
	call := &ast.CallExpr{Token: p.cur, Callee: ident.Value}
	p.next() // '('
	for !p.curIs(token.RPAREN) {
		if len(call.Arguments) > 0 {
			if err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		call.Arguments = append(call.Arguments, arg)
	}
	p.next() // ')'
	return call, nil
}
