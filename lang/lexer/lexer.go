// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

// Package lexer implements a single-pass, no-backtracking lexer for the Luxbin
// language.
//
// Design principles:
//   - ASCII-only input
//   - Single-pass, no backtracking
//   - '#' line comments
//   - Double-quoted string literals with standard escape sequences
//   - Integer numeric literals only (the language has no float literal form;
//     float is a declared type, not a literal shape)
package lexer

import (
	"fmt"

	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/token"
)

// Error is a fatal lexical error. Lexing aborts at the first one.
type Error struct {
	Msg string
	Pos token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Lexer holds the state for a single-pass tokenization run.
type Lexer struct {
	input []byte

	// pos is the index into input of the next byte to be loaded into ch.
	// After advance(), ch == input[pos-1] and pos points one past it.
	pos  int
	line int // 1-based current line number
	col  int // 1-based current column number

	ch byte // current character; 0 when past end
}

// New creates a new Lexer for the given input string.
func New(input string) *Lexer {
	l := &Lexer{
		input: []byte(input),
		line:  1,
		col:   0,
	}
	l.advance() // prime l.ch with the first byte
	return l
}

// Tokenize scans the entire input and returns all tokens including the final
// EOF, or the first lexical error encountered. Comment tokens are not
// included in the result.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.COMMENT {
			continue
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

// advance moves to the next byte in the input, updating line/column tracking.
// When the end of input is reached, ch is set to 0.
func (l *Lexer) advance() {
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	if l.pos >= len(l.input) {
		l.ch = 0
		return
	}
	l.ch = l.input[l.pos]
	l.pos++
}

// peek returns the byte after the current character without consuming it.
// Returns 0 if at or past end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// currentPos returns a token.Position capturing the lexer's state right now.
// Call this before consuming the first character of a token.
func (l *Lexer) currentPos() token.Position {
	// After advance(), pos is already one past ch, so the byte offset of ch is pos-1.
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos - 1,
	}
}

// makeToken constructs a token with the given type, literal, and position.
func makeToken(typ token.Type, literal string, pos token.Position) token.Token {
	return token.Token{Type: typ, Literal: literal, Pos: pos}
}

// skipWhitespace consumes space, tab, carriage return, and newline characters.
// Newlines are plain whitespace: statements are delimited by keywords.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.advance()
	}
}

// NextToken scans and returns the next token from the input. After EOF is
// reached, subsequent calls continue returning EOF tokens.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	pos := l.currentPos()
	ch := l.ch

	if ch == 0 {
		return makeToken(token.EOF, "", pos), nil
	}

	l.advance() // consume ch; from here on, l.ch is the character AFTER ch

	switch {
	// -------------------------------------------------------------------------
	// Identifiers and keywords
	// -------------------------------------------------------------------------
	case isIdentStart(ch):
		lit := l.readIdentFromFirst(ch)
		typ := token.LookupIdent(lit)
		return makeToken(typ, lit, pos), nil

	// -------------------------------------------------------------------------
	// Numeric literals
	// -------------------------------------------------------------------------
	case isDigit(ch):
		lit := l.readNumberFromFirst(ch)
		return makeToken(token.INT, lit, pos), nil

	// -------------------------------------------------------------------------
	// String literals
	// -------------------------------------------------------------------------
	case ch == '"':
		// The opening '"' has been consumed; read the rest.
		lit, ok := l.readStringBody()
		if !ok {
			return token.Token{}, &Error{Msg: "unterminated string literal", Pos: pos}
		}
		return makeToken(token.STRING, lit, pos), nil

	// -------------------------------------------------------------------------
	// Comments: '#' to end of line
	// -------------------------------------------------------------------------
	case ch == '#':
		body := l.readLineCommentBody()
		return makeToken(token.COMMENT, "#"+body, pos), nil

	// -------------------------------------------------------------------------
	// Operators
	// -------------------------------------------------------------------------
	case ch == '+':
		return makeToken(token.PLUS, "+", pos), nil
	case ch == '-':
		return makeToken(token.MINUS, "-", pos), nil
	case ch == '*':
		return makeToken(token.STAR, "*", pos), nil
	case ch == '/':
		return makeToken(token.SLASH, "/", pos), nil
	case ch == '%':
		return makeToken(token.PERCENT, "%", pos), nil
	case ch == '^':
		return makeToken(token.CARET, "^", pos), nil

	case ch == '=':
		if l.ch == '=' {
			l.advance()
			return makeToken(token.EQ, "==", pos), nil
		}
		return makeToken(token.ASSIGN, "=", pos), nil

	case ch == '!':
		if l.ch == '=' {
			l.advance()
			return makeToken(token.NEQ, "!=", pos), nil
		}
		return token.Token{}, &Error{Msg: "unexpected character: '!' (use 'not')", Pos: pos}

	case ch == '<':
		if l.ch == '=' {
			l.advance()
			return makeToken(token.LTE, "<=", pos), nil
		}
		return makeToken(token.LT, "<", pos), nil

	case ch == '>':
		if l.ch == '=' {
			l.advance()
			return makeToken(token.GTE, ">=", pos), nil
		}
		return makeToken(token.GT, ">", pos), nil

	// -------------------------------------------------------------------------
	// Single-character punctuation
	// -------------------------------------------------------------------------
	case ch == '(':
		return makeToken(token.LPAREN, "(", pos), nil
	case ch == ')':
		return makeToken(token.RPAREN, ")", pos), nil
	case ch == '[':
		return makeToken(token.LBRACKET, "[", pos), nil
	case ch == ']':
		return makeToken(token.RBRACKET, "]", pos), nil
	case ch == ':':
		return makeToken(token.COLON, ":", pos), nil
	case ch == ',':
		return makeToken(token.COMMA, ",", pos), nil
	}

	// Anything else is a fatal lexical error.
	return token.Token{}, &Error{
		Msg: fmt.Sprintf("unrecognized character: %q", string([]byte{ch})),
		Pos: pos,
	}
}

// ---------------------------------------------------------------------------
// Internal readers. Each assumes the first character has already been
// consumed by the advance() call inside NextToken.
// ---------------------------------------------------------------------------

// readIdentFromFirst builds an identifier literal starting with the already-
// consumed byte `first`, then consuming subsequent ident-continue bytes.
func (l *Lexer) readIdentFromFirst(first byte) string {
	buf := make([]byte, 1, 16)
	buf[0] = first
	for isIdentContinue(l.ch) {
		buf = append(buf, l.ch)
		l.advance()
	}
	return string(buf)
}

// readNumberFromFirst accumulates decimal digits after the already-consumed
// first digit `first`.
func (l *Lexer) readNumberFromFirst(first byte) string {
	buf := make([]byte, 1, 24)
	buf[0] = first
	for isDigit(l.ch) {
		buf = append(buf, l.ch)
		l.advance()
	}
	return string(buf)
}

// readStringBody reads the content of a string literal after the opening '"'
// has been consumed. The returned literal excludes the quote characters, with
// escape sequences decoded. The bool is false when the string was
// unterminated (newline or end of input before a closing quote).
func (l *Lexer) readStringBody() (string, bool) {
	buf := make([]byte, 0, 32)
	for {
		switch l.ch {
		case 0, '\n':
			// Unterminated string.
			return string(buf), false
		case '\\':
			l.advance() // consume '\'
			switch l.ch {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case '\\':
				buf = append(buf, '\\')
			case '"':
				buf = append(buf, '"')
			case 0:
				return string(buf), false
			default:
				buf = append(buf, '\\', l.ch)
			}
			l.advance() // consume the escaped character
		case '"':
			l.advance() // consume closing '"'
			return string(buf), true
		default:
			buf = append(buf, l.ch)
			l.advance()
		}
	}
}

// readLineCommentBody reads from the current position to end-of-line (not
// including the newline byte). The '#' prefix has already been consumed.
func (l *Lexer) readLineCommentBody() string {
	var buf []byte
	for l.ch != '\n' && l.ch != 0 {
		buf = append(buf, l.ch)
		l.advance()
	}
	return string(buf)
}

// ---------------------------------------------------------------------------
// Character classification helpers
// ---------------------------------------------------------------------------

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
