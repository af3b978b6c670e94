// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

// Package compiler is the single entry point into the Luxbin compilation
// pipeline. It runs lexing, parsing, semantic analysis and both generators
// in order and folds every possible fault, including panics from generator
// defects, into a structured Result. Callers never see a partial output
// mixed with an error.
package compiler

import (
	"fmt"

	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/abi"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/analysis"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/lexer"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/parser"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/solgen"
)

// DefaultContractName is used when the caller does not name the contract.
const DefaultContractName = "LuxbinContract"

// Options configure one compile invocation. The zero value is valid.
type Options struct {
	ContractName string // default DefaultContractName
	Pragma       string // default solgen.DefaultPragma
}

// Result is the complete outcome of one compile call. Exactly one of two
// shapes is produced: Success true with Solidity, ABI and possibly
// non-empty Warnings populated and Error empty, or Success false with a
// single Error message and everything else empty.
type Result struct {
	Success  bool
	Solidity string
	ABI      []abi.Entry
	Warnings []string
	Error    string
}

// Compile translates Luxbin source into Solidity plus its ABI descriptor.
// An empty contractName selects DefaultContractName.
func Compile(source, contractName string) Result {
	return CompileWithOptions(source, Options{ContractName: contractName})
}

// CompileWithOptions is Compile with full control over the output options.
// Each invocation allocates fresh pipeline state, so concurrent calls are
// independent; identical inputs yield byte-identical results.
func CompileWithOptions(source string, opts Options) (result Result) {
	// Generator defects surface as panics. They must not escape the
	// facade, so they degrade into a failure result like any other fault.
	defer func() {
		if r := recover(); r != nil {
			result = failure(fmt.Sprintf("internal error: %v", r))
		}
	}()

	name := opts.ContractName
	if name == "" {
		name = DefaultContractName
	}

	toks, err := lexer.Tokenize(source)
	if err != nil {
		return failure(err.Error())
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		return failure(err.Error())
	}
	info, err := analysis.Analyze(prog)
	if err != nil {
		return failure(err.Error())
	}

	solidity := solgen.Generate(prog, info, solgen.Options{
		ContractName: name,
		Pragma:       opts.Pragma,
	})
	return Result{
		Success:  true,
		Solidity: solidity,
		ABI:      abi.Generate(info),
		Warnings: info.Warnings,
	}
}

func failure(msg string) Result {
	return Result{Error: msg}
}
