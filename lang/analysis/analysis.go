// Copyright 2025 The Luxbin Authors
// This file is part of the Luxbin EVM compiler.
//
// The Luxbin EVM compiler is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.

// Package analysis is the shared semantic pass between parsing and the two
// generators. It resolves names, maps source types to EVM target types,
// classifies function mutability, records which log event variants the
// program uses, decides whether a constructor is needed, and collects the
// advisory warnings. Both the Solidity generator and the ABI generator
// consume the resulting Info read-only, so they can never disagree about
// mutability or event usage.
package analysis

import (
	"fmt"

	"github.com/Luxbin-labs/luxbin-evm-compiler/lang/ast"
)

// Error is a semantic error (unresolved name, unknown type, misused builtin)
// with the line it was detected on. Like syntax errors it is fatal: no
// output is generated past the first one.
type Error struct {
	Msg  string
	Line int
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Type is the closed set of EVM target types a Luxbin value can map to.
type Type int

const (
	Int      Type = iota // int256
	String               // string
	Bool                 // bool
	IntArray             // int256[]
	Uint                 // uint256, the quantum register placeholder
)

// Target returns the Solidity and ABI spelling of the type.
func (t Type) Target() string {
	switch t {
	case Int:
		return "int256"
	case String:
		return "string"
	case Bool:
		return "bool"
	case IntArray:
		return "int256[]"
	case Uint:
		return "uint256"
	}
	return "int256"
}

// Reference indicates whether the type lives in memory when passed around,
// which decides the data-location keyword in Solidity signatures.
func (t Type) Reference() bool {
	return t == String || t == IntArray
}

// typeTable maps source type names, including the photon aliases, to target
// types. lossy marks the float entries whose values cannot survive the trip.
var typeTable = map[string]struct {
	target Type
	lossy  bool
}{
	"int":          {Int, false},
	"photon_int":   {Int, false},
	"string":       {String, false},
	"photon_str":   {String, false},
	"bool":         {Bool, false},
	"photon_bool":  {Bool, false},
	"float":        {Int, true},
	"photon_float": {Int, true},
	"array":        {IntArray, false},
	"photon_arr":   {IntArray, false},
	"qubit":        {Uint, false},
	"photon_reg":   {Uint, false},
}

// Builtin callables and their arity. range is special-cased: it is only
// meaningful as the iterable of a for loop.
var builtins = map[string]int{
	"log":     1,
	"qubit":   1,
	"measure": 1,
	"range":   2,
}

// EventUsage records which log event variants the program reaches.
type EventUsage struct {
	String bool
	Bool   bool
	Number bool
}

// Any reports whether at least one variant is in use.
func (u EventUsage) Any() bool { return u.String || u.Bool || u.Number }

// StateVar is a top-level let or const declaration, in declaration order.
type StateVar struct {
	Decl *ast.VarDecl
	Name string
	Type Type
}

// Param is a resolved function parameter.
type Param struct {
	Name string
	Type Type
}

// FuncInfo carries everything the generators need to know about one
// declared function.
type FuncInfo struct {
	Decl *ast.FuncDecl
	Name string

	Params []Param

	// HasReturn is true when at least one reachable return carries a value;
	// ReturnType is only meaningful when it is.
	HasReturn  bool
	ReturnType Type

	// View is true when the function has a value return and its body,
	// recursively through every nested block, contains no assignment,
	// indexed assignment, or log call.
	View bool
}

// Info is the analysis result consumed by both generators.
type Info struct {
	StateVars []StateVar
	Funcs     []*FuncInfo

	// CtorStmts holds every top-level statement that is neither a variable
	// nor a function declaration, in source order. Together with array
	// state variables they decide constructor synthesis.
	CtorStmts []ast.Statement

	Events EventUsage

	// Warnings are advisory only: lossy float approximations and
	// quantum-primitive substitutions, in source order.
	Warnings []string

	funcByName map[string]*FuncInfo
	varTypes   map[*ast.VarDecl]Type
}

// NeedsConstructor reports whether the contract needs a constructor: any
// top-level executable statement, or any array state variable that needs
// its initializer run at deployment.
func (in *Info) NeedsConstructor() bool {
	if len(in.CtorStmts) > 0 {
		return true
	}
	for _, sv := range in.StateVars {
		if sv.Type == IntArray {
			return true
		}
	}
	return false
}

// Func looks up a declared function by name.
func (in *Info) Func(name string) (*FuncInfo, bool) {
	f, ok := in.funcByName[name]
	return f, ok
}

// VarType returns the resolved target type of any variable declaration in
// the program, state or local.
func (in *Info) VarType(d *ast.VarDecl) Type {
	if t, ok := in.varTypes[d]; ok {
		return t
	}
	return Int
}

// ---------------------------------------------------------------------------
// Analyzer
// ---------------------------------------------------------------------------

// scope is one lexical scope frame. Values record what a name refers to so
// an identifier can be classified where that matters.
type scope struct {
	parent *scope
	names  map[string]Type
}

func (s *scope) declare(name string, t Type) {
	s.names[name] = t
}

func (s *scope) lookup(name string) (Type, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if t, ok := sc.names[name]; ok {
			return t, true
		}
	}
	return 0, false
}

type analyzer struct {
	prog *ast.Program
	info *Info
	top  *scope
}

// Analyze runs the full semantic pass over a parsed program. It returns the
// first semantic error encountered, walking top-level statements in order
// and function bodies in declaration order.
func Analyze(prog *ast.Program) (*Info, error) {
	a := &analyzer{
		prog: prog,
		info: &Info{
			funcByName: make(map[string]*FuncInfo),
			varTypes:   make(map[*ast.VarDecl]Type),
		},
		top: &scope{names: make(map[string]Type)},
	}
	if err := a.collectTopLevel(); err != nil {
		return nil, err
	}
	if err := a.resolveAll(); err != nil {
		return nil, err
	}
	a.classify()
	return a.info, nil
}

// collectTopLevel registers every top-level name before any body is
// resolved, so functions can refer to state and to each other regardless of
// declaration order.
func (a *analyzer) collectTopLevel() error {
	for _, stmt := range a.prog.Statements {
		switch s := stmt.(type) {
		case *ast.VarDecl:
			if _, exists := a.top.names[s.Name]; exists {
				return &Error{Msg: fmt.Sprintf("duplicate top-level declaration of %q", s.Name), Line: s.Token.Pos.Line}
			}
			if _, exists := a.info.funcByName[s.Name]; exists {
				return &Error{Msg: fmt.Sprintf("duplicate top-level declaration of %q", s.Name), Line: s.Token.Pos.Line}
			}
			t, err := a.declType(s)
			if err != nil {
				return err
			}
			a.top.declare(s.Name, t)
			a.info.varTypes[s] = t
			a.info.StateVars = append(a.info.StateVars, StateVar{Decl: s, Name: s.Name, Type: t})
		case *ast.FuncDecl:
			if _, exists := a.top.names[s.Name]; exists {
				return &Error{Msg: fmt.Sprintf("duplicate top-level declaration of %q", s.Name), Line: s.Token.Pos.Line}
			}
			if _, exists := a.info.funcByName[s.Name]; exists {
				return &Error{Msg: fmt.Sprintf("duplicate top-level declaration of %q", s.Name), Line: s.Token.Pos.Line}
			}
			fi := &FuncInfo{Decl: s, Name: s.Name}
			a.info.funcByName[s.Name] = fi
			a.info.Funcs = append(a.info.Funcs, fi)
		default:
			a.info.CtorStmts = append(a.info.CtorStmts, stmt)
		}
	}
	return nil
}

// declType resolves the target type of a variable declaration from its
// annotation, or failing that from the static shape of its initializer.
func (a *analyzer) declType(d *ast.VarDecl) (Type, error) {
	if d.TypeName != "" {
		entry, ok := typeTable[d.TypeName]
		if !ok {
			return 0, &Error{Msg: fmt.Sprintf("unknown type %q", d.TypeName), Line: d.Token.Pos.Line}
		}
		if entry.lossy {
			a.warnf("line %d: float variable %q is approximated as int256; fractional precision is lost",
				d.Token.Pos.Line, d.Name)
		}
		return entry.target, nil
	}
	if d.Value == nil {
		return Int, nil
	}
	return StaticType(d.Value), nil
}

// StaticType is the static typing rule shared by return-type inference and
// log-variant classification in both generators: literals fix
// their own type, boolean-shaped operators are bool, qubit calls are the
// register placeholder, everything else is the target integer.
func StaticType(e ast.Expression) Type {
	switch x := e.(type) {
	case *ast.StringLiteral:
		return String
	case *ast.BoolLiteral:
		return Bool
	case *ast.ArrayLiteral:
		return IntArray
	case *ast.PrefixExpr:
		if x.Operator == "not" {
			return Bool
		}
		return Int
	case *ast.InfixExpr:
		switch x.Operator {
		case "==", "!=", "<", ">", "<=", ">=", "and", "or":
			return Bool
		}
		return Int
	case *ast.CallExpr:
		if x.Callee == "qubit" {
			return Uint
		}
		return Int
	}
	return Int
}

func (a *analyzer) warnf(format string, args ...interface{}) {
	a.info.Warnings = append(a.info.Warnings, fmt.Sprintf(format, args...))
}

// resolveAll resolves every name reference in the program: top-level
// statements in source order (state-variable initializers included), then
// each function body against a fresh parameter scope.
func (a *analyzer) resolveAll() error {
	for _, stmt := range a.prog.Statements {
		switch s := stmt.(type) {
		case *ast.VarDecl:
			if s.Value != nil {
				if err := a.resolveExpr(s.Value, a.top); err != nil {
					return err
				}
			}
		case *ast.FuncDecl:
			// bodies handled below
		default:
			if err := a.resolveStmt(stmt, a.top); err != nil {
				return err
			}
		}
	}
	for _, fi := range a.info.Funcs {
		fnScope := &scope{parent: a.top, names: make(map[string]Type)}
		for _, p := range fi.Decl.Params {
			t := Int
			if p.TypeName != "" {
				entry, ok := typeTable[p.TypeName]
				if !ok {
					return &Error{Msg: fmt.Sprintf("unknown type %q", p.TypeName), Line: p.Token.Pos.Line}
				}
				if entry.lossy {
					a.warnf("line %d: float parameter %q of %q is approximated as int256; fractional precision is lost",
						p.Token.Pos.Line, p.Name, fi.Name)
				}
				t = entry.target
			}
			if _, dup := fnScope.names[p.Name]; dup {
				return &Error{Msg: fmt.Sprintf("duplicate parameter %q in %q", p.Name, fi.Name), Line: p.Token.Pos.Line}
			}
			fnScope.declare(p.Name, t)
			fi.Params = append(fi.Params, Param{Name: p.Name, Type: t})
		}
		for _, stmt := range fi.Decl.Body {
			if err := a.resolveStmt(stmt, fnScope); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *analyzer) resolveStmt(stmt ast.Statement, sc *scope) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		if s.Value != nil {
			if err := a.resolveExpr(s.Value, sc); err != nil {
				return err
			}
		}
		t, err := a.declType(s)
		if err != nil {
			return err
		}
		sc.declare(s.Name, t)
		a.info.varTypes[s] = t
		return nil
	case *ast.AssignStmt:
		if _, ok := sc.lookup(s.Name); !ok {
			return &Error{Msg: fmt.Sprintf("assignment to undefined variable %q", s.Name), Line: s.Token.Pos.Line}
		}
		return a.resolveExpr(s.Value, sc)
	case *ast.IndexAssignStmt:
		if _, ok := sc.lookup(s.Name); !ok {
			return &Error{Msg: fmt.Sprintf("assignment to undefined variable %q", s.Name), Line: s.Token.Pos.Line}
		}
		if err := a.resolveExpr(s.Index, sc); err != nil {
			return err
		}
		return a.resolveExpr(s.Value, sc)
	case *ast.IfStmt:
		if err := a.resolveExpr(s.Condition, sc); err != nil {
			return err
		}
		if err := a.resolveBlock(s.Then, sc); err != nil {
			return err
		}
		for _, clause := range s.ElseIfs {
			if err := a.resolveExpr(clause.Condition, sc); err != nil {
				return err
			}
			if err := a.resolveBlock(clause.Body, sc); err != nil {
				return err
			}
		}
		return a.resolveBlock(s.Else, sc)
	case *ast.WhileStmt:
		if err := a.resolveExpr(s.Condition, sc); err != nil {
			return err
		}
		return a.resolveBlock(s.Body, sc)
	case *ast.ForStmt:
		if err := a.resolveIterable(s, sc); err != nil {
			return err
		}
		body := &scope{parent: sc, names: make(map[string]Type)}
		body.declare(s.Var, Int)
		for _, st := range s.Body {
			if err := a.resolveStmt(st, body); err != nil {
				return err
			}
		}
		return nil
	case *ast.ReturnStmt:
		if s.Value != nil {
			return a.resolveExpr(s.Value, sc)
		}
		return nil
	case *ast.ExprStmt:
		// Calls in statement position bypass the value-position check,
		// which is what makes a bare log(x) legal.
		if call, ok := s.Expression.(*ast.CallExpr); ok {
			return a.resolveCall(call, sc)
		}
		return a.resolveExpr(s.Expression, sc)
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.FuncDecl:
		return nil
	}
	return nil
}

func (a *analyzer) resolveBlock(stmts []ast.Statement, parent *scope) error {
	sc := &scope{parent: parent, names: make(map[string]Type)}
	for _, stmt := range stmts {
		if err := a.resolveStmt(stmt, sc); err != nil {
			return err
		}
	}
	return nil
}

// resolveIterable checks the for-loop iterable: either range(lo, hi) or an
// array-valued expression.
func (a *analyzer) resolveIterable(s *ast.ForStmt, sc *scope) error {
	if call, ok := s.Iterable.(*ast.CallExpr); ok && call.Callee == "range" {
		if len(call.Arguments) != 2 {
			return &Error{
				Msg:  fmt.Sprintf("range expects 2 arguments, got %d", len(call.Arguments)),
				Line: call.Token.Pos.Line,
			}
		}
		for _, arg := range call.Arguments {
			if err := a.resolveExpr(arg, sc); err != nil {
				return err
			}
		}
		return nil
	}
	if err := a.resolveExpr(s.Iterable, sc); err != nil {
		return err
	}
	if !a.arrayShaped(s.Iterable, sc) {
		return &Error{
			Msg:  "for loop iterable must be range(lo, hi) or an array value",
			Line: s.Token.Pos.Line,
		}
	}
	return nil
}

// arrayShaped reports whether an expression statically looks like an array.
func (a *analyzer) arrayShaped(e ast.Expression, sc *scope) bool {
	switch x := e.(type) {
	case *ast.ArrayLiteral:
		return true
	case *ast.Ident:
		t, ok := sc.lookup(x.Value)
		return ok && t == IntArray
	}
	return false
}

func (a *analyzer) resolveExpr(e ast.Expression, sc *scope) error {
	switch x := e.(type) {
	case *ast.Ident:
		if _, ok := sc.lookup(x.Value); !ok {
			return &Error{Msg: fmt.Sprintf("undefined identifier %q", x.Value), Line: x.Token.Pos.Line}
		}
		return nil
	case *ast.PrefixExpr:
		return a.resolveExpr(x.Right, sc)
	case *ast.InfixExpr:
		if err := a.resolveExpr(x.Left, sc); err != nil {
			return err
		}
		return a.resolveExpr(x.Right, sc)
	case *ast.IndexExpr:
		if err := a.resolveExpr(x.Left, sc); err != nil {
			return err
		}
		return a.resolveExpr(x.Index, sc)
	case *ast.ArrayLiteral:
		for _, el := range x.Elements {
			if err := a.resolveExpr(el, sc); err != nil {
				return err
			}
		}
		return nil
	case *ast.CallExpr:
		if x.Callee == "log" {
			return &Error{Msg: "log produces no value and is only valid as a statement", Line: x.Token.Pos.Line}
		}
		return a.resolveCall(x, sc)
	}
	return nil
}

func (a *analyzer) resolveCall(call *ast.CallExpr, sc *scope) error {
	if arity, ok := builtins[call.Callee]; ok {
		if call.Callee == "range" {
			return &Error{Msg: "range is only valid as a for loop iterable", Line: call.Token.Pos.Line}
		}
		if len(call.Arguments) != arity {
			return &Error{
				Msg:  fmt.Sprintf("%s expects %d argument(s), got %d", call.Callee, arity, len(call.Arguments)),
				Line: call.Token.Pos.Line,
			}
		}
		if call.Callee == "log" {
			a.recordLogVariant(call.Arguments[0])
		}
		if call.Callee == "qubit" || call.Callee == "measure" {
			a.warnf("line %d: %s() compiles to a pseudo-random chain-state expression; the entropy source is not cryptographically secure",
				call.Token.Pos.Line, call.Callee)
		}
		for _, arg := range call.Arguments {
			if err := a.resolveExpr(arg, sc); err != nil {
				return err
			}
		}
		return nil
	}
	fi, ok := a.info.funcByName[call.Callee]
	if !ok {
		return &Error{Msg: fmt.Sprintf("call to undefined function %q", call.Callee), Line: call.Token.Pos.Line}
	}
	if len(call.Arguments) != len(fi.Decl.Params) {
		return &Error{
			Msg: fmt.Sprintf("%s expects %d argument(s), got %d",
				call.Callee, len(fi.Decl.Params), len(call.Arguments)),
			Line: call.Token.Pos.Line,
		}
	}
	for _, arg := range call.Arguments {
		if err := a.resolveExpr(arg, sc); err != nil {
			return err
		}
	}
	return nil
}

// recordLogVariant classifies a log argument by static shape: string
// literals are the string variant, boolean-shaped expressions the bool
// variant, everything else numeric.
func (a *analyzer) recordLogVariant(arg ast.Expression) {
	switch StaticType(arg) {
	case String:
		a.info.Events.String = true
	case Bool:
		a.info.Events.Bool = true
	default:
		a.info.Events.Number = true
	}
}

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// classify computes return typing and view status for every function. It
// runs after resolution so it can assume all names are bound.
func (a *analyzer) classify() {
	for _, fi := range a.info.Funcs {
		ret, found := firstValueReturn(fi.Decl.Body)
		fi.HasReturn = found
		if found {
			if fi.Decl.ReturnType != "" {
				if entry, ok := typeTable[fi.Decl.ReturnType]; ok {
					fi.ReturnType = entry.target
					if entry.lossy {
						a.warnf("line %d: float return type of %q is approximated as int256; fractional precision is lost",
							fi.Decl.Token.Pos.Line, fi.Name)
					}
				}
			} else {
				fi.ReturnType = StaticType(ret)
			}
		}
		fi.View = found && !mutatesState(fi.Decl.Body)
	}
}

// firstValueReturn finds the first reachable return carrying a value,
// scanning nested blocks in declaration order.
func firstValueReturn(stmts []ast.Statement) (ast.Expression, bool) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ReturnStmt:
			if s.Value != nil {
				return s.Value, true
			}
		case *ast.IfStmt:
			if e, ok := firstValueReturn(s.Then); ok {
				return e, true
			}
			for _, clause := range s.ElseIfs {
				if e, ok := firstValueReturn(clause.Body); ok {
					return e, true
				}
			}
			if e, ok := firstValueReturn(s.Else); ok {
				return e, true
			}
		case *ast.WhileStmt:
			if e, ok := firstValueReturn(s.Body); ok {
				return e, true
			}
		case *ast.ForStmt:
			if e, ok := firstValueReturn(s.Body); ok {
				return e, true
			}
		}
	}
	return nil, false
}

// mutatesState reports whether any statement, recursively through every
// nested block, is an assignment, an indexed assignment, or a log call.
// Assignments to locals count too: the classification is deliberately
// conservative and purely syntactic.
func mutatesState(stmts []ast.Statement) bool {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.AssignStmt, *ast.IndexAssignStmt:
			return true
		case *ast.VarDecl:
			if s.Value != nil && exprLogs(s.Value) {
				return true
			}
		case *ast.ExprStmt:
			if exprLogs(s.Expression) {
				return true
			}
		case *ast.ReturnStmt:
			if s.Value != nil && exprLogs(s.Value) {
				return true
			}
		case *ast.IfStmt:
			if exprLogs(s.Condition) || mutatesState(s.Then) || mutatesState(s.Else) {
				return true
			}
			for _, clause := range s.ElseIfs {
				if exprLogs(clause.Condition) || mutatesState(clause.Body) {
					return true
				}
			}
		case *ast.WhileStmt:
			if exprLogs(s.Condition) || mutatesState(s.Body) {
				return true
			}
		case *ast.ForStmt:
			if exprLogs(s.Iterable) || mutatesState(s.Body) {
				return true
			}
		}
	}
	return false
}

// exprLogs reports whether a log call appears anywhere inside an expression.
func exprLogs(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.PrefixExpr:
		return exprLogs(x.Right)
	case *ast.InfixExpr:
		return exprLogs(x.Left) || exprLogs(x.Right)
	case *ast.IndexExpr:
		return exprLogs(x.Left) || exprLogs(x.Index)
	case *ast.ArrayLiteral:
		for _, el := range x.Elements {
			if exprLogs(el) {
				return true
			}
		}
	case *ast.CallExpr:
		if x.Callee == "log" {
			return true
		}
		for _, arg := range x.Arguments {
			if exprLogs(arg) {
				return true
			}
		}
	}
	return false
}
