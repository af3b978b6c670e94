// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

// Package abi derives the contract interface descriptor from the shared
// analysis results and encodes it in the standard Solidity ABI JSON shape.
// Selector and topic derivation uses legacy Keccak-256, the hash the EVM
// call convention is defined over.
package abi

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/analysis"
)

// Entry kinds.
const (
	KindFunction    = "function"
	KindEvent       = "event"
	KindConstructor = "constructor"
)

// Mutability classes. Payable and pure are never produced.
const (
	MutabilityView       = "view"
	MutabilityNonpayable = "nonpayable"
)

// Param is one input or output slot of an ABI entry.
type Param struct {
	Name string
	Type string
}

// Entry is a single ABI descriptor entry: a function, an event, or the
// constructor.
type Entry struct {
	Kind            string
	Name            string // empty for the constructor
	Inputs          []Param
	Outputs         []Param // functions only
	StateMutability string  // functions and constructor
}

// Signature returns the canonical signature used for selector and topic
// hashing: name(type1,type2,...).
func (e Entry) Signature() string {
	types := make([]string, len(e.Inputs))
	for i, in := range e.Inputs {
		types[i] = in.Type
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte call selector of a function entry.
func (e Entry) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], keccak(e.Signature())[:4])
	return sel
}

// SelectorHex returns the selector as a 0x-prefixed hex string.
func (e Entry) SelectorHex() string {
	sel := e.Selector()
	return "0x" + hex.EncodeToString(sel[:])
}

// Topic returns the 32-byte log topic of an event entry.
func (e Entry) Topic() [32]byte {
	var topic [32]byte
	copy(topic[:], keccak(e.Signature()))
	return topic
}

// TopicHex returns the topic as a 0x-prefixed hex string.
func (e Entry) TopicHex() string {
	topic := e.Topic()
	return "0x" + hex.EncodeToString(topic[:])
}

func keccak(s string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s))
	return h.Sum(nil)
}

// ---------------------------------------------------------------------------
// JSON encoding
// ---------------------------------------------------------------------------

type jsonParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonEventParam struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed"`
}

// MarshalJSON encodes the entry in the field layout solc emits, so the
// descriptor is interchangeable with a compiler-produced ABI file.
func (e Entry) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindEvent:
		inputs := make([]jsonEventParam, len(e.Inputs))
		for i, in := range e.Inputs {
			inputs[i] = jsonEventParam{Name: in.Name, Type: in.Type}
		}
		return json.Marshal(struct {
			Type      string           `json:"type"`
			Name      string           `json:"name"`
			Inputs    []jsonEventParam `json:"inputs"`
			Anonymous bool             `json:"anonymous"`
		}{KindEvent, e.Name, inputs, false})
	case KindConstructor:
		return json.Marshal(struct {
			Type            string      `json:"type"`
			Inputs          []jsonParam `json:"inputs"`
			StateMutability string      `json:"stateMutability"`
		}{KindConstructor, params(e.Inputs), e.StateMutability})
	default:
		return json.Marshal(struct {
			Type            string      `json:"type"`
			Name            string      `json:"name"`
			Inputs          []jsonParam `json:"inputs"`
			Outputs         []jsonParam `json:"outputs"`
			StateMutability string      `json:"stateMutability"`
		}{KindFunction, e.Name, params(e.Inputs), params(e.Outputs), e.StateMutability})
	}
}

func params(ps []Param) []jsonParam {
	out := make([]jsonParam, len(ps))
	for i, p := range ps {
		out[i] = jsonParam{Name: p.Name, Type: p.Type}
	}
	return out
}

// EncodeJSON renders the full descriptor as an indented JSON array.
func EncodeJSON(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.MarshalIndent(entries, "", "  ")
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

// Generate derives the ABI from the shared analysis results. Entry order is
// fixed: event declarations, the constructor if one is needed, one getter
// per state variable in declaration order, then declared functions in
// declaration order. The result is a pure function of the analysis Info.
func Generate(info *analysis.Info) []Entry {
	var entries []Entry

	if info.Events.String {
		entries = append(entries, eventEntry("LogString", "string"))
	}
	if info.Events.Bool {
		entries = append(entries, eventEntry("LogBool", "bool"))
	}
	if info.Events.Number {
		entries = append(entries, eventEntry("LogNumber", "int256"))
	}

	if info.NeedsConstructor() {
		entries = append(entries, Entry{
			Kind:            KindConstructor,
			Inputs:          []Param{},
			StateMutability: MutabilityNonpayable,
		})
	}

	for _, sv := range info.StateVars {
		entries = append(entries, getterEntry(sv))
	}

	for _, fi := range info.Funcs {
		entries = append(entries, functionEntry(fi))
	}
	return entries
}

func eventEntry(name, typ string) Entry {
	return Entry{
		Kind:   KindEvent,
		Name:   name,
		Inputs: []Param{{Name: "value", Type: typ}},
	}
}

// getterEntry models the public getter Solidity auto-generates for a state
// variable: a plain view accessor for scalars, an indexed accessor taking a
// uint256 position for arrays.
func getterEntry(sv analysis.StateVar) Entry {
	if sv.Type == analysis.IntArray {
		return Entry{
			Kind:            KindFunction,
			Name:            sv.Name,
			Inputs:          []Param{{Name: "", Type: "uint256"}},
			Outputs:         []Param{{Name: "", Type: "int256"}},
			StateMutability: MutabilityView,
		}
	}
	return Entry{
		Kind:            KindFunction,
		Name:            sv.Name,
		Inputs:          []Param{},
		Outputs:         []Param{{Name: "", Type: sv.Type.Target()}},
		StateMutability: MutabilityView,
	}
}

func functionEntry(fi *analysis.FuncInfo) Entry {
	inputs := make([]Param, len(fi.Params))
	for i, p := range fi.Params {
		inputs[i] = Param{Name: p.Name, Type: p.Type.Target()}
	}
	outputs := []Param{}
	if fi.HasReturn {
		outputs = append(outputs, Param{Name: "", Type: fi.ReturnType.Target()})
	}
	mutability := MutabilityNonpayable
	if fi.View {
		mutability = MutabilityView
	}
	return Entry{
		Kind:            KindFunction,
		Name:            fi.Name,
		Inputs:          inputs,
		Outputs:         outputs,
		StateMutability: mutability,
	}
}
