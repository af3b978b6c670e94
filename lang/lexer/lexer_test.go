// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

package lexer_test

import (
	"strings"
	"testing"

	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/lexer"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/token"
)

// tokenCase is a single expected token in a table-driven test.
type tokenCase struct {
	typ     token.Type
	literal string
}

// runTokenize lexes input and checks that it produces exactly the expected
// sequence (plus a final EOF).
func runTokenize(t *testing.T, name, input string, want []tokenCase) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		t.Helper()
		toks, err := lexer.Tokenize(input)
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", input, err)
		}

		// Tokenize always appends EOF; the want slice should NOT include EOF.
		if len(toks) == 0 {
			t.Fatal("Tokenize returned empty slice")
		}
		last := toks[len(toks)-1]
		if last.Type != token.EOF {
			t.Errorf("last token is %s, want EOF", last.Type)
		}
		body := toks[:len(toks)-1]

		if len(body) != len(want) {
			t.Errorf("got %d tokens (excl. EOF), want %d", len(body), len(want))
			for i, tok := range body {
				t.Logf("  [%d] %s %q", i, tok.Type, tok.Literal)
			}
			return
		}
		for i, w := range want {
			got := body[i]
			if got.Type != w.typ {
				t.Errorf("token[%d]: type = %s, want %s (literal %q)", i, got.Type, w.typ, got.Literal)
			}
			if got.Literal != w.literal {
				t.Errorf("token[%d]: literal = %q, want %q", i, got.Literal, w.literal)
			}
		}
	})
}

// runTokenizeError lexes input and expects a lexical error whose message
// contains wantMsg.
func runTokenizeError(t *testing.T, name, input, wantMsg string) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		t.Helper()
		_, err := lexer.Tokenize(input)
		if err == nil {
			t.Fatalf("Tokenize(%q) succeeded, want error containing %q", input, wantMsg)
		}
		if _, ok := err.(*lexer.Error); !ok {
			t.Errorf("error has type %T, want *lexer.Error", err)
		}
		if !strings.Contains(err.Error(), wantMsg) {
			t.Errorf("error = %q, want it to contain %q", err.Error(), wantMsg)
		}
	})
}

func TestOperators(t *testing.T) {
	runTokenize(t, "arithmetic", "+ - * / % ^", []tokenCase{
		{token.PLUS, "+"}, {token.MINUS, "-"}, {token.STAR, "*"},
		{token.SLASH, "/"}, {token.PERCENT, "%"}, {token.CARET, "^"},
	})
	runTokenize(t, "comparison", "== != < > <= >=", []tokenCase{
		{token.EQ, "=="}, {token.NEQ, "!="}, {token.LT, "<"},
		{token.GT, ">"}, {token.LTE, "<="}, {token.GTE, ">="},
	})
	runTokenize(t, "assign vs eq", "a = b == c", []tokenCase{
		{token.IDENT, "a"}, {token.ASSIGN, "="},
		{token.IDENT, "b"}, {token.EQ, "=="}, {token.IDENT, "c"},
	})
	runTokenize(t, "punctuation", "( ) [ ] : ,", []tokenCase{
		{token.LPAREN, "("}, {token.RPAREN, ")"},
		{token.LBRACKET, "["}, {token.RBRACKET, "]"},
		{token.COLON, ":"}, {token.COMMA, ","},
	})
}

func TestKeywords(t *testing.T) {
	input := "let const func return if then else end while do for in break continue and or not true false nil"
	runTokenize(t, "all keywords", input, []tokenCase{
		{token.LET, "let"}, {token.CONST, "const"}, {token.FUNC, "func"},
		{token.RETURN, "return"}, {token.IF, "if"}, {token.THEN, "then"},
		{token.ELSE, "else"}, {token.END, "end"}, {token.WHILE, "while"},
		{token.DO, "do"}, {token.FOR, "for"}, {token.IN, "in"},
		{token.BREAK, "break"}, {token.CONTINUE, "continue"},
		{token.AND, "and"}, {token.OR, "or"}, {token.NOT, "not"},
		{token.TRUE, "true"}, {token.FALSE, "false"}, {token.NIL, "nil"},
	})
	runTokenize(t, "keyword prefix is ident", "letter form income", []tokenCase{
		{token.IDENT, "letter"}, {token.IDENT, "form"}, {token.IDENT, "income"},
	})
}

func TestIdentifiers(t *testing.T) {
	runTokenize(t, "shapes", "x _tmp camelCase snake_case x1 _1", []tokenCase{
		{token.IDENT, "x"}, {token.IDENT, "_tmp"}, {token.IDENT, "camelCase"},
		{token.IDENT, "snake_case"}, {token.IDENT, "x1"}, {token.IDENT, "_1"},
	})
}

func TestNumbers(t *testing.T) {
	runTokenize(t, "integers", "0 7 42 1000000", []tokenCase{
		{token.INT, "0"}, {token.INT, "7"}, {token.INT, "42"}, {token.INT, "1000000"},
	})
}

func TestStrings(t *testing.T) {
	runTokenize(t, "plain", `"hello"`, []tokenCase{
		{token.STRING, "hello"},
	})
	runTokenize(t, "empty", `""`, []tokenCase{
		{token.STRING, ""},
	})
	runTokenize(t, "escapes", `"a\nb\tc\\d\"e"`, []tokenCase{
		{token.STRING, "a\nb\tc\\d\"e"},
	})
}

func TestComments(t *testing.T) {
	runTokenize(t, "comment to end of line", "let x = 1 # the counter\nlet y = 2", []tokenCase{
		{token.LET, "let"}, {token.IDENT, "x"}, {token.ASSIGN, "="}, {token.INT, "1"},
		{token.LET, "let"}, {token.IDENT, "y"}, {token.ASSIGN, "="}, {token.INT, "2"},
	})
	runTokenize(t, "comment only", "# nothing here", nil)
}

func TestPositions(t *testing.T) {
	toks, err := lexer.Tokenize("let x = 1\n  x = 2")
	if err != nil {
		t.Fatal(err)
	}
	wantPos := []struct{ line, col int }{
		{1, 1}, {1, 5}, {1, 7}, {1, 9},
		{2, 3}, {2, 5}, {2, 7},
	}
	if len(toks)-1 != len(wantPos) {
		t.Fatalf("got %d tokens (excl. EOF), want %d", len(toks)-1, len(wantPos))
	}
	for i, w := range wantPos {
		got := toks[i].Pos
		if got.Line != w.line || got.Column != w.col {
			t.Errorf("token[%d] %q: pos = %d:%d, want %d:%d",
				i, toks[i].Literal, got.Line, got.Column, w.line, w.col)
		}
	}
}

func TestErrors(t *testing.T) {
	runTokenizeError(t, "unterminated string", `"never closed`, "unterminated string literal")
	runTokenizeError(t, "string broken by newline", "\"split\nhere\"", "unterminated string literal")
	runTokenizeError(t, "bare bang", "a ! b", "use 'not'")
	runTokenizeError(t, "unrecognized char", "let x = 1.5", "unrecognized character")
	runTokenizeError(t, "unrecognized at sign", "@", "unrecognized character")
}

func TestErrorPosition(t *testing.T) {
	_, err := lexer.Tokenize("let x = 1\nlet y = @")
	lexErr, ok := err.(*lexer.Error)
	if !ok {
		t.Fatalf("error has type %T, want *lexer.Error", err)
	}
	if lexErr.Pos.Line != 2 || lexErr.Pos.Column != 9 {
		t.Errorf("error position = %d:%d, want 2:9", lexErr.Pos.Line, lexErr.Pos.Column)
	}
}
