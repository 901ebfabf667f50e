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

// Package cprint renders cast trees as C source text.
package cprint

import (
	"strconv"
	"strings"

	"github.com/kernscope/kernscope/cast"
)

const indentUnit = "  "

// Program renders a translation unit preceded by include lines. Include
// names keep their own quoting ("header.h" or <header.h>).
func Program(f *cast.File, includes []string) string {
	var b strings.Builder
	for _, inc := range includes {
		b.WriteString("#include ")
		b.WriteString(inc)
		b.WriteString("\n")
	}
	if len(includes) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(Print(f))
	return b.String()
}

// Print renders any node as C source. Statements end in a newline.
func Print(n cast.Node) string {
	p := &printer{}
	p.node(n)
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) line(s string) {
	for i := 0; i < p.indent; i++ {
		p.b.WriteString(indentUnit)
	}
	p.b.WriteString(s)
	p.b.WriteString("\n")
}

func (p *printer) node(n cast.Node) {
	switch nT := n.(type) {
	case cast.Expr:
		p.b.WriteString(exprString(nT))
	case cast.Stmt:
		p.stmt(nT)
	case cast.DataType:
		p.b.WriteString(typeAndName(nT, ""))
	case *cast.FuncDef:
		p.funcDef(nT)
	case *cast.File:
		p.file(nT)
	}
}

func (p *printer) file(f *cast.File) {
	for _, d := range f.Decls {
		switch dT := d.(type) {
		case *cast.Decl:
			p.stmt(dT)
		case *cast.FuncDef:
			p.funcDef(dT)
		}
	}
}

func (p *printer) funcDef(f *cast.FuncDef) {
	params := make([]string, len(f.Params))
	for i, param := range f.Params {
		params[i] = typeAndName(param.Type, param.Name)
	}
	header := typeAndName(f.Result, f.Name) + "(" + strings.Join(params, ", ") + ")"
	if f.Body == nil {
		p.line(header + ";")
		return
	}
	p.line("")
	p.line(header)
	p.stmt(f.Body)
}

func (p *printer) stmt(s cast.Stmt) {
	switch sT := s.(type) {
	case *cast.Decl:
		p.line(declString(sT) + ";")
	case *cast.Assign:
		p.line(assignString(sT) + ";")
	case *cast.ExprStmt:
		p.line(exprString(sT.X) + ";")
	case *cast.Block:
		p.line("{")
		p.indent++
		for _, inner := range sT.List {
			p.stmt(inner)
		}
		p.indent--
		p.line("}")
	case *cast.For:
		init := ";"
		if sT.Init != nil {
			init = forInitString(sT.Init) + ";"
		}
		cond := ""
		if sT.Cond != nil {
			cond = " " + exprString(sT.Cond)
		}
		post := ""
		if sT.Post != nil {
			post = " " + forPostString(sT.Post)
		}
		p.line("for (" + init + cond + ";" + post + ")")
		p.body(sT.Body)
	case *cast.If:
		p.line("if (" + exprString(sT.Cond) + ")")
		p.body(sT.Then)
		if sT.Else != nil {
			p.line("else")
			p.body(sT.Else)
		}
	}
}

func (p *printer) body(s cast.Stmt) {
	if _, ok := s.(*cast.Block); ok {
		p.stmt(s)
		return
	}
	p.indent++
	p.stmt(s)
	p.indent--
}

func forInitString(s cast.Stmt) string {
	switch sT := s.(type) {
	case *cast.Decl:
		return declString(sT)
	case *cast.Assign:
		return assignString(sT)
	case *cast.ExprStmt:
		return exprString(sT.X)
	}
	return ""
}

func forPostString(s cast.Stmt) string {
	switch sT := s.(type) {
	case *cast.Assign:
		return assignString(sT)
	case *cast.ExprStmt:
		return exprString(sT.X)
	}
	return ""
}

func declString(d *cast.Decl) string {
	s := ""
	for _, q := range d.Quals {
		s += q + " "
	}
	s += typeAndName(d.Type, d.Name)
	if d.Init != nil {
		s += " = " + exprString(d.Init)
	}
	return s
}

func assignString(a *cast.Assign) string {
	return exprString(a.LHS) + " " + a.Op + " " + exprString(a.RHS)
}

// typeAndName renders a declarator: pointer stars bind to the name, array
// dimensions follow it.
func typeAndName(t cast.DataType, name string) string {
	stars := ""
	for {
		pt, ok := t.(*cast.PtrType)
		if !ok {
			break
		}
		stars += "*"
		t = pt.Elem
	}
	dims := ""
	for {
		at, ok := t.(*cast.ArrayType)
		if !ok {
			break
		}
		dims += "[" + exprString(at.Len) + "]"
		t = at.Elem
	}
	base := "void"
	if bt, ok := t.(*cast.BaseType); ok {
		base = bt.Name
	}
	declarator := stars + name + dims
	if declarator == "" {
		return base
	}
	return base + " " + declarator
}

func precedence(op string) int {
	switch op {
	case cast.OpMul:
		return 2
	case cast.OpAdd, cast.OpSub:
		return 1
	default:
		return 0
	}
}

func exprString(e cast.Expr) string {
	switch eT := e.(type) {
	case *cast.Ident:
		return eT.Name
	case *cast.IntLit:
		return strconv.FormatInt(eT.Value, 10)
	case *cast.FloatLit:
		return eT.Value
	case *cast.StrLit:
		return `"` + eT.Value + `"`
	case *cast.BinaryOp:
		return operand(eT.Left, precedence(eT.Op), false) +
			" " + eT.Op + " " +
			operand(eT.Right, precedence(eT.Op), true)
	case *cast.UnaryOp:
		switch eT.Op {
		case cast.OpInc, cast.OpDec:
			return exprString(eT.X) + eT.Op
		case cast.OpSizeof:
			return "sizeof(" + exprString(eT.X) + ")"
		default:
			return eT.Op + exprString(eT.X)
		}
	case *cast.ArrayRef:
		return exprString(eT.Array) + "[" + exprString(eT.Index) + "]"
	case *cast.Call:
		args := ""
		if eT.Args != nil {
			args = exprString(eT.Args)
		}
		return exprString(eT.Fun) + "(" + args + ")"
	case *cast.ExprList:
		parts := make([]string, len(eT.List))
		for i, x := range eT.List {
			parts[i] = exprString(x)
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// operand parenthesizes a binary child when its operator binds looser than
// the parent, or equally tight on the right-hand side.
func operand(e cast.Expr, parent int, right bool) string {
	s := exprString(e)
	b, ok := e.(*cast.BinaryOp)
	if !ok {
		return s
	}
	prec := precedence(b.Op)
	if prec < parent || (prec == parent && right) {
		return "(" + s + ")"
	}
	return s
}
