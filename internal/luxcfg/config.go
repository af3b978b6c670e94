// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

// Package luxcfg loads TOML configuration for the luxc command.
package luxcfg

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
)

// Compiler holds the settings of the [Compiler] section.
type Compiler struct {
	// ContractName overrides the default contract name for sources that
	// do not pass one on the command line.
	ContractName string `toml:",omitempty"`

	// Pragma is the Solidity version constraint written into generated
	// contracts, for example "^0.8.0".
	Pragma string `toml:",omitempty"`

	// OutputDir is where compile writes its artifacts when no explicit
	// output paths are given.
	OutputDir string `toml:",omitempty"`
}

// Config is the root of a luxc TOML file.
type Config struct {
	Compiler Compiler
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Load reads a TOML config file into cfg. Unknown fields are errors so a
// typo in a config file never silently selects the defaults.
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// Dump encodes cfg back to TOML, for the dumpconfig command.
func Dump(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}
