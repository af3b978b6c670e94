// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/analysis"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/lexer"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/parser"
)

func analyze(t *testing.T, src string) *analysis.Info {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	prog, err := parser.Parse(toks)
	require.NoError(t, err)
	info, err := analysis.Analyze(prog)
	require.NoError(t, err)
	return info
}

func analyzeErr(t *testing.T, src string) *analysis.Error {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	prog, err := parser.Parse(toks)
	require.NoError(t, err)
	_, err = analysis.Analyze(prog)
	require.Error(t, err)
	aerr, ok := err.(*analysis.Error)
	require.True(t, ok, "error has type %T, want *analysis.Error", err)
	return aerr
}

func TestStateVarTypes(t *testing.T) {
	info := analyze(t, `
let a: int = 1
let b: photon_int = 2
let c: string = "x"
let d: bool = true
let e: float = 3
let f: array = [1, 2]
let g: qubit
`)
	require.Len(t, info.StateVars, 7)
	want := []analysis.Type{
		analysis.Int, analysis.Int, analysis.String, analysis.Bool,
		analysis.Int, analysis.IntArray, analysis.Uint,
	}
	for i, sv := range info.StateVars {
		assert.Equal(t, want[i], sv.Type, "state var %s", sv.Name)
	}
}

func TestTypeInferenceFromInitializer(t *testing.T) {
	info := analyze(t, `
let n = 42
let s = "hello"
let b = true
let cmp = 1 < 2
let arr = [1, 2, 3]
let q = qubit(4)
let bare
`)
	want := map[string]analysis.Type{
		"n":    analysis.Int,
		"s":    analysis.String,
		"b":    analysis.Bool,
		"cmp":  analysis.Bool,
		"arr":  analysis.IntArray,
		"q":    analysis.Uint,
		"bare": analysis.Int,
	}
	for _, sv := range info.StateVars {
		assert.Equal(t, want[sv.Name], sv.Type, "state var %s", sv.Name)
	}
}

func TestTargetTypeNames(t *testing.T) {
	assert.Equal(t, "int256", analysis.Int.Target())
	assert.Equal(t, "string", analysis.String.Target())
	assert.Equal(t, "bool", analysis.Bool.Target())
	assert.Equal(t, "int256[]", analysis.IntArray.Target())
	assert.Equal(t, "uint256", analysis.Uint.Target())
}

func TestDuplicateTopLevel(t *testing.T) {
	err := analyzeErr(t, "let x = 1\nlet x = 2")
	assert.Contains(t, err.Msg, "duplicate top-level declaration")
	assert.Equal(t, 2, err.Line)

	err = analyzeErr(t, "let x = 1\nfunc x()\nend")
	assert.Contains(t, err.Msg, "duplicate top-level declaration")
}

func TestUndefinedNames(t *testing.T) {
	err := analyzeErr(t, "func f()\n return missing\nend")
	assert.Contains(t, err.Msg, `undefined identifier "missing"`)
	assert.Equal(t, 2, err.Line)

	err = analyzeErr(t, "func f()\n ghost = 1\nend")
	assert.Contains(t, err.Msg, `assignment to undefined variable "ghost"`)

	err = analyzeErr(t, "func f()\n nothere()\nend")
	assert.Contains(t, err.Msg, `undefined function "nothere"`)
}

func TestScopes(t *testing.T) {
	// Params, locals, loop variables and top-level names all resolve.
	analyze(t, `
let total = 0
func accumulate(n: int)
  let doubled = n * 2
  for i in range(0, doubled) do
    total = total + i
  end
end
`)

	// A block-local name is not visible after its block.
	err := analyzeErr(t, `
func f()
  if true then
    let inner = 1
  end
  inner = 2
end
`)
	assert.Contains(t, err.Msg, "undefined")
}

func TestUnknownType(t *testing.T) {
	err := analyzeErr(t, "let x: quantum = 1")
	assert.Contains(t, err.Msg, `unknown type "quantum"`)

	err = analyzeErr(t, "func f(a: whatever)\nend")
	assert.Contains(t, err.Msg, `unknown type "whatever"`)
}

func TestViewClassification(t *testing.T) {
	info := analyze(t, `
let count = 0

func getCount(): photon_int
  return count
end

func increment()
  count = count + 1
end

func loggedGet(): int
  log(count)
  return count
end

func nestedWrite(): int
  if count > 0 then
    while true do
      count = 0
    end
  end
  return count
end

func pureCompute(a: int, b: int): int
  if a > b then
    return a - b
  end
  return b - a
end
`)
	view := map[string]bool{
		"getCount":    true,
		"increment":   false, // no return
		"loggedGet":   false, // log call
		"nestedWrite": false, // assignment in nested block
		"pureCompute": true,
	}
	for _, fi := range info.Funcs {
		assert.Equal(t, view[fi.Name], fi.View, "function %s", fi.Name)
	}
}

func TestReturnTypeInference(t *testing.T) {
	info := analyze(t, `
func s()
  return "text"
end

func b(x: int)
  return x > 0
end

func n(x: int)
  return x * 2
end

func nested(x: int)
  if x > 0 then
    return "deep"
  end
  return "shallow"
end

func annotated(): photon_bool
  return true
end

func silent()
  let x = 1
end
`)
	type want struct {
		hasReturn bool
		typ       analysis.Type
	}
	wants := map[string]want{
		"s":         {true, analysis.String},
		"b":         {true, analysis.Bool},
		"n":         {true, analysis.Int},
		"nested":    {true, analysis.String},
		"annotated": {true, analysis.Bool},
		"silent":    {false, analysis.Int},
	}
	for _, fi := range info.Funcs {
		w := wants[fi.Name]
		assert.Equal(t, w.hasReturn, fi.HasReturn, "function %s HasReturn", fi.Name)
		if w.hasReturn {
			assert.Equal(t, w.typ, fi.ReturnType, "function %s return type", fi.Name)
		}
	}
}

func TestEventUsage(t *testing.T) {
	info := analyze(t, `
func f()
  log("starting")
  log("again")
  log(1 + 2)
end
`)
	assert.True(t, info.Events.String)
	assert.False(t, info.Events.Bool)
	assert.True(t, info.Events.Number)

	info = analyze(t, "func f()\n log(true)\nend")
	assert.False(t, info.Events.String)
	assert.True(t, info.Events.Bool)
	assert.False(t, info.Events.Number)

	info = analyze(t, "let x = 1")
	assert.False(t, info.Events.Any())
}

func TestConstructorDetection(t *testing.T) {
	// Plain declarations only: no constructor.
	info := analyze(t, "let x = 1\nfunc f()\nend")
	assert.False(t, info.NeedsConstructor())

	// Top-level executable statement.
	info = analyze(t, "let x = 1\nx = 2")
	assert.True(t, info.NeedsConstructor())
	assert.Len(t, info.CtorStmts, 1)

	// Array state variable.
	info = analyze(t, "let values = [1, 2, 3]")
	assert.True(t, info.NeedsConstructor())
	assert.Empty(t, info.CtorStmts)
}

func TestWarnings(t *testing.T) {
	info := analyze(t, `
let price: float = 10
func f(rate: photon_float)
  let q = qubit(8)
  let m = measure(q)
end
`)
	require.Len(t, info.Warnings, 4)
	assert.Contains(t, info.Warnings[0], "float variable \"price\"")
	assert.Contains(t, info.Warnings[0], "int256")
	assert.Contains(t, info.Warnings[1], "float parameter \"rate\"")
	assert.Contains(t, info.Warnings[2], "qubit()")
	assert.Contains(t, info.Warnings[2], "not cryptographically secure")
	assert.Contains(t, info.Warnings[3], "measure()")
}

func TestBuiltinChecks(t *testing.T) {
	err := analyzeErr(t, "func f()\n log(1, 2)\nend")
	assert.Contains(t, err.Msg, "log expects 1 argument(s), got 2")

	err = analyzeErr(t, "func f()\n let x = range(0, 5)\nend")
	assert.Contains(t, err.Msg, "range is only valid as a for loop iterable")

	err = analyzeErr(t, "func f()\n for i in range(5) do\n end\nend")
	assert.Contains(t, err.Msg, "range expects 2 arguments, got 1")

	err = analyzeErr(t, "func f()\n for i in 42 do\n end\nend")
	assert.Contains(t, err.Msg, "iterable must be range(lo, hi) or an array value")

	err = analyzeErr(t, "func f()\n let x = log(1)\nend")
	assert.Contains(t, err.Msg, "log produces no value and is only valid as a statement")
	assert.Equal(t, 2, err.Line)
}

func TestCallArity(t *testing.T) {
	err := analyzeErr(t, `
func add(a: int, b: int): int
  return a + b
end
func g()
  add(1)
end
`)
	assert.Contains(t, err.Msg, "add expects 2 argument(s), got 1")
}

func TestForIterableArrayIdent(t *testing.T) {
	analyze(t, `
let values = [1, 2, 3]
func sum(): int
  let total = 0
  for v in values do
    total = total + v
  end
  return total
end
`)
}
