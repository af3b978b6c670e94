// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

// luxc is the command line interface to the Luxbin compiler.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/Luxbin-labs/luxbin-evm-compiler/compiler"
	"github.com/Luxbin-labs/luxbin-evm-compiler/internal/luxcfg"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/abi"
	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/lexer"
)

const clientIdentifier = "luxc"

var (
	version   = "0.1.0"
	gitCommit = "" // set via linker flags
)

var (
	nameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "contract name used in the generated Solidity source",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "path for the generated Solidity file (default: <src>.sol)",
	}
	abiOutFlag = cli.StringFlag{
		Name:  "abi",
		Usage: "path for the generated ABI JSON file (default: <src>.abi.json)",
	}
	pragmaFlag = cli.StringFlag{
		Name:  "pragma",
		Usage: "Solidity pragma constraint for the generated contract",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = clientIdentifier
	app.Usage = "compiler for the Luxbin contract language"
	app.Version = versionString()
	app.Commands = []cli.Command{
		compileCommand,
		tokensCommand,
		abiCommand,
		dumpConfigCommand,
		versionCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		fatalf("%v", err)
	}
}

func versionString() string {
	if gitCommit != "" {
		return version + "-" + gitCommit[:8]
	}
	return version
}

func fatalf(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// loadOptions merges config file values and command line flags into compile
// options. Flags win over file values.
func loadOptions(ctx *cli.Context, src string) (compiler.Options, luxcfg.Config, error) {
	var cfg luxcfg.Config
	if file := ctx.String(configFlag.Name); file != "" {
		if err := luxcfg.Load(file, &cfg); err != nil {
			return compiler.Options{}, cfg, err
		}
	}
	opts := compiler.Options{
		ContractName: cfg.Compiler.ContractName,
		Pragma:       cfg.Compiler.Pragma,
	}
	if name := ctx.String(nameFlag.Name); name != "" {
		opts.ContractName = name
	}
	if opts.ContractName == "" {
		opts.ContractName = contractNameFromPath(src)
	}
	if pragma := ctx.String(pragmaFlag.Name); pragma != "" {
		opts.Pragma = pragma
	}
	return opts, cfg, nil
}

// contractNameFromPath derives a default contract name from the source file
// name: "token_sale.lux" becomes "TokenSale".
func contractNameFromPath(src string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	var sb strings.Builder
	upper := true
	for _, r := range base {
		if r == '_' || r == '-' || r == '.' {
			upper = true
			continue
		}
		if upper {
			sb.WriteString(strings.ToUpper(string(r)))
			upper = false
		} else {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return compiler.DefaultContractName
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// compile
// ---------------------------------------------------------------------------

var compileCommand = cli.Command{
	Action:    compileCmd,
	Name:      "compile",
	Usage:     "Compile a Luxbin source file to Solidity plus an ABI descriptor",
	ArgsUsage: "<source.lux>",
	Flags:     []cli.Flag{nameFlag, outFlag, abiOutFlag, pragmaFlag, configFlag},
}

func compileCmd(ctx *cli.Context) error {
	src, source, err := readSourceArg(ctx)
	if err != nil {
		return err
	}
	opts, cfg, err := loadOptions(ctx, src)
	if err != nil {
		return err
	}

	result := compiler.CompileWithOptions(source, opts)
	for _, w := range result.Warnings {
		color.New(color.FgYellow).Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	if !result.Success {
		return fmt.Errorf("%s: %s", src, result.Error)
	}

	solPath := ctx.String(outFlag.Name)
	abiPath := ctx.String(abiOutFlag.Name)
	base := strings.TrimSuffix(src, filepath.Ext(src))
	if dir := cfg.Compiler.OutputDir; dir != "" {
		base = filepath.Join(dir, filepath.Base(base))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if solPath == "" {
		solPath = base + ".sol"
	}
	if abiPath == "" {
		abiPath = base + ".abi.json"
	}

	if err := os.WriteFile(solPath, []byte(result.Solidity), 0644); err != nil {
		return err
	}
	abiJSON, err := abi.EncodeJSON(result.ABI)
	if err != nil {
		return err
	}
	if err := os.WriteFile(abiPath, abiJSON, 0644); err != nil {
		return err
	}
	fmt.Printf("Compiled %s\n  solidity: %s\n  abi:      %s\n", src, solPath, abiPath)
	return nil
}

func readSourceArg(ctx *cli.Context) (string, string, error) {
	if ctx.NArg() != 1 {
		return "", "", fmt.Errorf("expected exactly one source file argument")
	}
	src := ctx.Args().First()
	data, err := os.ReadFile(src)
	if err != nil {
		return "", "", err
	}
	return src, string(data), nil
}

// ---------------------------------------------------------------------------
// tokens
// ---------------------------------------------------------------------------

var tokensCommand = cli.Command{
	Action:    tokensCmd,
	Name:      "tokens",
	Usage:     "Print the token stream of a Luxbin source file",
	ArgsUsage: "<source.lux>",
}

func tokensCmd(ctx *cli.Context) error {
	src, source, err := readSourceArg(ctx)
	if err != nil {
		return err
	}
	toks, err := lexer.Tokenize(source)
	if err != nil {
		return fmt.Errorf("%s: %v", src, err)
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Line", "Col", "Type", "Literal"})
	table.SetBorder(false)
	for _, tok := range toks {
		table.Append([]string{
			fmt.Sprint(tok.Pos.Line),
			fmt.Sprint(tok.Pos.Column),
			tok.Type.String(),
			tok.Literal,
		})
	}
	table.Render()
	return nil
}

// ---------------------------------------------------------------------------
// abi
// ---------------------------------------------------------------------------

var abiCommand = cli.Command{
	Action:    abiCmd,
	Name:      "abi",
	Usage:     "Print the ABI descriptor of a Luxbin source file",
	ArgsUsage: "<source.lux>",
	Flags:     []cli.Flag{nameFlag, pragmaFlag, configFlag},
}

func abiCmd(ctx *cli.Context) error {
	src, source, err := readSourceArg(ctx)
	if err != nil {
		return err
	}
	opts, _, err := loadOptions(ctx, src)
	if err != nil {
		return err
	}
	result := compiler.CompileWithOptions(source, opts)
	if !result.Success {
		return fmt.Errorf("%s: %s", src, result.Error)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Name", "Signature", "Selector/Topic", "Mutability"})
	table.SetBorder(false)
	for _, e := range result.ABI {
		var id string
		switch e.Kind {
		case abi.KindFunction:
			id = e.SelectorHex()
		case abi.KindEvent:
			id = e.TopicHex()
		}
		table.Append([]string{e.Kind, e.Name, e.Signature(), id, e.StateMutability})
	}
	table.Render()

	abiJSON, err := abi.EncodeJSON(result.ABI)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s\n", abiJSON)
	return nil
}

// ---------------------------------------------------------------------------
// dumpconfig / version
// ---------------------------------------------------------------------------

var dumpConfigCommand = cli.Command{
	Action: dumpConfigCmd,
	Name:   "dumpconfig",
	Usage:  "Show configuration values",
	Flags:  []cli.Flag{nameFlag, pragmaFlag, configFlag},
}

func dumpConfigCmd(ctx *cli.Context) error {
	var cfg luxcfg.Config
	if file := ctx.String(configFlag.Name); file != "" {
		if err := luxcfg.Load(file, &cfg); err != nil {
			return err
		}
	}
	if name := ctx.String(nameFlag.Name); name != "" {
		cfg.Compiler.ContractName = name
	}
	if pragma := ctx.String(pragmaFlag.Name); pragma != "" {
		cfg.Compiler.Pragma = pragma
	}
	out, err := luxcfg.Dump(&cfg)
	if err != nil {
		return err
	}
	os.Stdout.Write(out)
	return nil
}

var versionCommand = cli.Command{
	Action: versionCmd,
	Name:   "version",
	Usage:  "Print version numbers",
}

func versionCmd(ctx *cli.Context) error {
	fmt.Println(clientIdentifier)
	fmt.Println("Version:", versionString())
	fmt.Println("Go Version:", runtime.Version())
	fmt.Println("Operating System:", runtime.GOOS)
	return nil
}
