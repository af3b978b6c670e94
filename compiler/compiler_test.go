// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

package compiler_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Luxbin-labs/luxbin-evm-compiler/compiler"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/abi"
)

func findEntry(entries []abi.Entry, name string) (abi.Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return abi.Entry{}, false
}

func TestCounter(t *testing.T) {
	result := compiler.Compile(`let count = 0
func increment()
  count = count + 1
end`, "Counter")
	require.True(t, result.Success, "compile failed: %s", result.Error)
	assert.Empty(t, result.Error)
	assert.Empty(t, result.Warnings)
	assert.Contains(t, result.Solidity, "contract Counter {")

	getter, ok := findEntry(result.ABI, "count")
	require.True(t, ok, "count getter missing")
	assert.Equal(t, abi.MutabilityView, getter.StateMutability)
	assert.Empty(t, getter.Inputs)
	require.Len(t, getter.Outputs, 1)
	assert.Equal(t, "int256", getter.Outputs[0].Type)

	inc, ok := findEntry(result.ABI, "increment")
	require.True(t, ok, "increment entry missing")
	assert.Equal(t, abi.MutabilityNonpayable, inc.StateMutability)
	assert.Empty(t, inc.Inputs)
	assert.Empty(t, inc.Outputs)
}

func TestViewGetter(t *testing.T) {
	result := compiler.Compile(`let count = 0
func getCount(): photon_int
  return count
end`, "C")
	require.True(t, result.Success, "compile failed: %s", result.Error)
	fn, ok := findEntry(result.ABI, "getCount")
	require.True(t, ok)
	assert.Equal(t, abi.MutabilityView, fn.StateMutability)
	require.Len(t, fn.Outputs, 1)
	assert.Equal(t, "int256", fn.Outputs[0].Type)
}

func TestReturningLoggerIsNonpayable(t *testing.T) {
	result := compiler.Compile(`let count = 0
func report(): int
  log(count)
  return count
end`, "C")
	require.True(t, result.Success, "compile failed: %s", result.Error)
	fn, ok := findEntry(result.ABI, "report")
	require.True(t, ok)
	assert.Equal(t, abi.MutabilityNonpayable, fn.StateMutability)
}

func TestMissingEndFails(t *testing.T) {
	result := compiler.Compile("func f()\n return 1", "C")
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Error)
	assert.Contains(t, result.Error, `expected "end"`)
	assert.Empty(t, result.Solidity)
	assert.Empty(t, result.ABI)
	assert.Empty(t, result.Warnings)
}

func TestArrayDeclaration(t *testing.T) {
	result := compiler.Compile("let values = [1, 2, 3]", "C")
	require.True(t, result.Success, "compile failed: %s", result.Error)

	hasCtor := false
	for _, e := range result.ABI {
		if e.Kind == abi.KindConstructor {
			hasCtor = true
		}
	}
	assert.True(t, hasCtor, "constructor entry missing")

	getter, ok := findEntry(result.ABI, "values")
	require.True(t, ok, "values getter missing")
	require.Len(t, getter.Inputs, 1)
	assert.Equal(t, "uint256", getter.Inputs[0].Type)
	require.Len(t, getter.Outputs, 1)
	assert.Equal(t, "int256", getter.Outputs[0].Type)
}

func TestArrayReassignment(t *testing.T) {
	result := compiler.Compile("let values: array = [1, 2]\n\nfunc reset()\n values = [9, 9]\nend", "C")
	require.True(t, result.Success, "compile failed: %s", result.Error)
	assert.Contains(t, result.Solidity, "int256[] memory a_1 = new int256[](2);")
	assert.Contains(t, result.Solidity, "values = a_1;")
	assert.NotContains(t, result.Solidity, "[9, 9]")
}

func TestLexFailure(t *testing.T) {
	result := compiler.Compile(`let s = "never closed`, "C")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unterminated string literal")
	assert.Empty(t, result.Solidity)
	assert.Empty(t, result.ABI)
}

func TestResolutionFailure(t *testing.T) {
	result := compiler.Compile("func f()\n return missing\nend", "C")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "undefined identifier")
	assert.Empty(t, result.Solidity)
}

func TestDefaultContractName(t *testing.T) {
	result := compiler.Compile("let x = 1", "")
	require.True(t, result.Success, "compile failed: %s", result.Error)
	assert.Contains(t, result.Solidity, "contract "+compiler.DefaultContractName+" {")
}

func TestWarningsSurface(t *testing.T) {
	result := compiler.Compile(`let price: float = 10
func roll(): int
  return measure(qubit(2))
end`, "C")
	require.True(t, result.Success, "compile failed: %s", result.Error)
	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "float")
	joined := strings.Join(result.Warnings, "\n")
	assert.Contains(t, joined, "qubit()")
	assert.Contains(t, joined, "measure()")
}

func TestIdempotence(t *testing.T) {
	src := `
let supply = 1000
let holders = [1, 2, 3]

func balance(i: int): int
  return holders[i]
end

func mint(amount: int)
  supply = supply + amount
  log(supply)
end
`
	first := compiler.Compile(src, "Token")
	second := compiler.Compile(src, "Token")
	require.True(t, first.Success, "compile failed: %s", first.Error)

	assert.Equal(t, first.Solidity, second.Solidity)
	if diff := cmp.Diff(first.ABI, second.ABI); diff != "" {
		t.Errorf("ABI differs between runs (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestOptionsPragma(t *testing.T) {
	result := compiler.CompileWithOptions("let x = 1", compiler.Options{
		ContractName: "C",
		Pragma:       "^0.8.21",
	})
	require.True(t, result.Success, "compile failed: %s", result.Error)
	assert.Contains(t, result.Solidity, "pragma solidity ^0.8.21;")
}

// Concurrent compiles share no state.
func TestConcurrentCompiles(t *testing.T) {
	src := `let count = 0
func increment()
  count = count + 1
end`
	ref := compiler.Compile(src, "Counter")
	require.True(t, ref.Success, "compile failed: %s", ref.Error)

	done := make(chan compiler.Result, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- compiler.Compile(src, "Counter")
		}()
	}
	for i := 0; i < 8; i++ {
		got := <-done
		assert.Equal(t, ref.Solidity, got.Solidity)
	}
}
