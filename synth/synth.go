// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package synth rewrites a validated kernel into a standalone, compilable
// benchmark program.
//
// The synthesized tree allocates every array with an aligned allocation,
// parses each symbolic constant from a positional command-line argument,
// initializes all data, and guards every variable with an always-false
// dummy call so the optimizer cannot remove the kernel. In instrumented
// mode the kernel loop additionally runs a command-line-driven number of
// times inside a profiling marker region.
//
// The kernel's own tree is never touched: synthesis works on a deep copy,
// so the same analysis can be re-synthesized under different constant
// bindings.
package synth

import (
	"github.com/kernscope/kernscope/cast"
	"github.com/kernscope/kernscope/kernel"
)

// Mode selects the benchmark flavor.
type Mode int

const (
	// Plain generates the bare benchmark program.
	Plain Mode = iota
	// Likwid additionally brackets the kernel loop with likwid marker
	// calls and repeats it a command-line-driven number of times.
	Likwid
)

const (
	mallocName = "aligned_malloc"
	dummyName  = "dummy"
	guardName  = "var_false"
	repeatName = "repeat"
	regionTag  = "loop"
	initValue  = "0.23"
	alignment  = 32
)

// Includes returns the include lines the generated program needs, in
// order. Bracketed names are system headers.
func Includes(mode Mode) []string {
	inc := []string{`"kernscope.h"`, `<stdlib.h>`}
	if mode == Likwid {
		inc = append(inc, `<likwid.h>`)
	}
	return inc
}

// Generate builds the benchmark translation unit for an analyzed kernel.
// Structural anomalies in the kernel tree are internal errors: the input
// must have passed Analyze.
func Generate(k *kernel.Kernel, mode Mode) (*cast.File, error) {
	body := cast.Clone(k.Source)

	decls := make([]*cast.Decl, 0, len(body.List)-1)
	for _, stmt := range body.List[:len(body.List)-1] {
		decl, ok := stmt.(*cast.Decl)
		if !ok {
			return nil, kernel.Internalf(stmt, "kernel prefix holds a %T, not a declaration", stmt)
		}
		decls = append(decls, decl)
	}
	floop, ok := body.List[len(body.List)-1].(*cast.For)
	if !ok {
		return nil, kernel.Internalf(body, "kernel does not end in a loop")
	}

	counter := freshName(body, "i")

	dims := make(dimTable)
	for _, decl := range decls {
		dims[decl.Name] = flattenDecl(decl)
		declToMalloc(decl)
	}

	var items []cast.Stmt
	if mode == Likwid {
		items = append(items,
			callStmt("likwid_markerInit"),
			callStmt("likwid_markerThreadInit"))
	}

	// One positional argument per symbolic constant, declaration order.
	for i, name := range k.Consts {
		items = append(items, argvIntDecl(name, i+1, true))
	}
	if mode == Likwid {
		items = append(items, argvIntDecl(repeatName, len(k.Consts)+1, false))
	}

	var guards []cast.Stmt
	for _, decl := range decls {
		items = append(items, decl)
		if len(dims[decl.Name]) > 0 {
			items = append(items, initLoop(decl.Name, counter, dims[decl.Name]))
		} else {
			items = append(items, &cast.Assign{
				Op:  cast.AssignEq,
				LHS: &cast.Ident{Name: decl.Name},
				RHS: &cast.FloatLit{Value: initValue},
			})
		}
		items = append(items, dummyGuard(decl.Name, len(dims[decl.Name]) > 0))
		guards = append(guards, dummyGuard(decl.Name, len(dims[decl.Name]) > 0))
	}

	switch mode {
	case Plain:
		items = append(items, floop)
	case Likwid:
		items = append(items, repeatLoop(floop, guards))
		items = append(items, callStmt("likwid_markerClose"))
	}

	main := &cast.Block{List: items}
	if err := flattenRefs(main, dims); err != nil {
		return nil, err
	}

	elem := k.Datatype.String()
	return &cast.File{Decls: []cast.Node{
		// void dummy(double *); defined externally so calls cannot be
		// inlined away.
		&cast.FuncDef{
			Name:   dummyName,
			Result: &cast.BaseType{Name: "void"},
			Params: []*cast.Decl{{Type: &cast.PtrType{Elem: &cast.BaseType{Name: elem}}}},
		},
		// extern int var_false; the toolchain links a runtime-false
		// value the optimizer cannot fold.
		&cast.Decl{
			Name:  guardName,
			Quals: []string{"extern"},
			Type:  &cast.BaseType{Name: "int"},
		},
		&cast.FuncDef{
			Name:   "main",
			Result: &cast.BaseType{Name: "int"},
			Params: []*cast.Decl{
				{Name: "argc", Type: &cast.BaseType{Name: "int"}},
				{Name: "argv", Type: &cast.PtrType{Elem: &cast.PtrType{Elem: &cast.BaseType{Name: "char"}}}},
			},
			Body: main,
		},
	}}, nil
}

// argvIntDecl builds `const int name = atoi(argv[idx]);`. The repeat
// counter drops the const so the countdown loop can decrement it.
func argvIntDecl(name string, idx int, konst bool) *cast.Decl {
	var quals []string
	if konst {
		quals = []string{"const"}
	}
	return &cast.Decl{
		Name:  name,
		Quals: quals,
		Type:  &cast.BaseType{Name: "int"},
		Init: &cast.Call{
			Fun: &cast.Ident{Name: "atoi"},
			Args: &cast.ExprList{List: []cast.Expr{
				&cast.ArrayRef{
					Array: &cast.Ident{Name: "argv"},
					Index: &cast.IntLit{Value: int64(idx)},
				},
			}},
		},
	}
}

// initLoop writes the fill literal to every flat element of an array.
func initLoop(array, counter string, dims []cast.Expr) *cast.For {
	return &cast.For{
		Init: &cast.Decl{
			Name: counter,
			Type: &cast.BaseType{Name: "int"},
			Init: &cast.IntLit{Value: 0},
		},
		Cond: &cast.BinaryOp{
			Op:    cast.OpLt,
			Left:  &cast.Ident{Name: counter},
			Right: product(dims),
		},
		Post: &cast.ExprStmt{X: &cast.UnaryOp{Op: cast.OpInc, X: &cast.Ident{Name: counter}}},
		Body: &cast.Assign{
			Op: cast.AssignEq,
			LHS: &cast.ArrayRef{
				Array: &cast.Ident{Name: array},
				Index: &cast.Ident{Name: counter},
			},
			RHS: &cast.FloatLit{Value: initValue},
		},
	}
}

// dummyGuard references a variable behind an always-false branch. The
// branch never runs but stays a visible code path, so dead-code
// elimination cannot drop the variable or the kernel writing it.
func dummyGuard(name string, isArray bool) *cast.If {
	var arg cast.Expr = &cast.Ident{Name: name}
	if !isArray {
		arg = &cast.UnaryOp{Op: cast.OpAddr, X: arg}
	}
	return &cast.If{
		Cond: &cast.Ident{Name: guardName},
		Then: &cast.Block{List: []cast.Stmt{
			&cast.ExprStmt{X: &cast.Call{
				Fun:  &cast.Ident{Name: dummyName},
				Args: &cast.ExprList{List: []cast.Expr{arg}},
			}},
		}},
	}
}

// repeatLoop wraps the marker region around the kernel loop and re-runs
// the guards each iteration so they cannot be hoisted out.
func repeatLoop(floop *cast.For, guards []cast.Stmt) *cast.For {
	body := []cast.Stmt{
		markerCall("likwid_markerStartRegion"),
		floop,
		markerCall("likwid_markerStopRegion"),
	}
	body = append(body, guards...)
	return &cast.For{
		Cond: &cast.BinaryOp{
			Op:    cast.OpGt,
			Left:  &cast.Ident{Name: repeatName},
			Right: &cast.IntLit{Value: 0},
		},
		Post: &cast.ExprStmt{X: &cast.UnaryOp{Op: cast.OpDec, X: &cast.Ident{Name: repeatName}}},
		Body: &cast.Block{List: body},
	}
}

func callStmt(fun string) *cast.ExprStmt {
	return &cast.ExprStmt{X: &cast.Call{Fun: &cast.Ident{Name: fun}}}
}

func markerCall(fun string) *cast.ExprStmt {
	return &cast.ExprStmt{X: &cast.Call{
		Fun:  &cast.Ident{Name: fun},
		Args: &cast.ExprList{List: []cast.Expr{&cast.StrLit{Value: regionTag}}},
	}}
}
