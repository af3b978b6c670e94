// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

// Package token defines the lexical token types for the Luxbin language.
//
// Design principles:
//   - ASCII-only primitives
//   - Keyword-delimited blocks (then/do ... end), not brace scoping
//   - Line boundaries carry no syntax; '#' comments run to end of line
package token

import "fmt"

// Token represents a lexical token.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

// Position tracks source location.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Type is the set of lexical token types.
type Type int

const (
	// Special tokens
	ILLEGAL Type = iota
	EOF
	COMMENT

	// Literals
	IDENT  // count, measure_result, _tmp
	INT    // 42
	STRING // "hello"

	// Operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	CARET   // ^  (power)
	ASSIGN  // =

	// Comparison
	EQ  // ==
	NEQ // !=
	LT  // <
	GT  // >
	LTE // <=
	GTE // >=

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	COLON    // :
	COMMA    // ,

	// Keywords
	keywordStart
	LET      // let
	CONST    // const
	FUNC     // func
	RETURN   // return
	IF       // if
	THEN     // then
	ELSE     // else
	END      // end
	WHILE    // while
	DO       // do
	FOR      // for
	IN       // in
	BREAK    // break
	CONTINUE // continue
	AND      // and
	OR       // or
	NOT      // not
	TRUE     // true
	FALSE    // false
	NIL      // nil
	keywordEnd
)

var tokenNames = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:  "IDENT",
	INT:    "INT",
	STRING: "STRING",

	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	CARET:   "^",
	ASSIGN:  "=",

	EQ:  "==",
	NEQ: "!=",
	LT:  "<",
	GT:  ">",
	LTE: "<=",
	GTE: ">=",

	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	COLON:    ":",
	COMMA:    ",",

	LET:      "let",
	CONST:    "const",
	FUNC:     "func",
	RETURN:   "return",
	IF:       "if",
	THEN:     "then",
	ELSE:     "else",
	END:      "end",
	WHILE:    "while",
	DO:       "do",
	FOR:      "for",
	IN:       "in",
	BREAK:    "break",
	CONTINUE: "continue",
	AND:      "and",
	OR:       "or",
	NOT:      "not",
	TRUE:     "true",
	FALSE:    "false",
	NIL:      "nil",
}

// String returns the string form of a token type.
func (t Type) String() string {
	if int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// IsKeyword returns true if the token is a keyword.
func (t Type) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsLiteral returns true if the token is a literal value.
func (t Type) IsLiteral() bool {
	return t >= IDENT && t <= STRING
}

// keywords maps keyword strings to token types.
var keywords map[string]Type

func init() {
	keywords = make(map[string]Type)
	for i := keywordStart + 1; i < keywordEnd; i++ {
		keywords[tokenNames[i]] = i
	}
}

// LookupIdent checks if an identifier is a keyword.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
