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

package kernel

import (
	"strings"

	"github.com/kernscope/kernscope/cast"
	"github.com/kernscope/kernscope/symexpr"
)

// Analyze validates a kernel body against the grammar and extracts its data
// model. The body is the compound statement of the synthetic function
// wrapping the kernel source: declarations first, one terminal loop last.
//
// Analysis is fail-fast: the first grammar violation aborts with no partial
// result, and the input tree is never mutated.
func Analyze(body *cast.Block) (*Kernel, error) {
	an := &analyzer{
		k: &Kernel{
			Source:    body,
			Flops:     make(map[string]int),
			varByName: make(map[string]*Variable),
		},
		constSeen: make(map[string]bool),
	}
	if err := an.body(body); err != nil {
		return nil, err
	}
	return an.k, nil
}

type analyzer struct {
	k         *Kernel
	constSeen map[string]bool
}

func (an *analyzer) body(body *cast.Block) error {
	if len(body.List) == 0 {
		return violationf(MissingTerminalLoop, body, "kernel is empty")
	}
	for _, stmt := range body.List[:len(body.List)-1] {
		decl, ok := stmt.(*cast.Decl)
		if !ok {
			return violationf(NonDeclarationPrefix, stmt,
				"every statement before the loop must be a declaration, got %T", stmt)
		}
		if err := an.decl(decl); err != nil {
			return err
		}
	}
	floop, ok := body.List[len(body.List)-1].(*cast.For)
	if !ok {
		return violationf(MissingTerminalLoop, body.List[len(body.List)-1],
			"last statement of a kernel must be a for loop, got %T", body.List[len(body.List)-1])
	}
	return an.loop(floop)
}

func (an *analyzer) decl(decl *cast.Decl) error {
	var dimExprs []cast.Expr
	typ := decl.Type
	for {
		arr, ok := typ.(*cast.ArrayType)
		if !ok {
			break
		}
		if arr.Len == nil {
			return violationf(UnsupportedType, arr, "array dimension of %q has no size", decl.Name)
		}
		dimExprs = append(dimExprs, arr.Len)
		typ = arr.Elem
	}
	base, ok := typ.(*cast.BaseType)
	if !ok {
		return violationf(UnsupportedType, decl, "declaration of %q must use a scalar base type, got %T", decl.Name, typ)
	}
	elem, ok := ElemTypeFromName(base.Name)
	if !ok {
		return violationf(UnsupportedType, decl, "only float and double variables are supported, got %s", base.Name)
	}
	if an.k.Datatype == InvalidType {
		an.k.Datatype = elem
	} else if an.k.Datatype != elem {
		return violationf(MixedDatatype, decl,
			"kernel mixes %s and %s; all variables must share one datatype", an.k.Datatype, elem)
	}

	v := &Variable{Name: decl.Name, Type: elem}
	for _, dim := range dimExprs {
		size, err := symexpr.FromAST(dim)
		if err != nil {
			return violationf(UnsupportedType, dim, "invalid array dimension of %q: %s", decl.Name, err)
		}
		an.recordConsts(dim)
		v.Dims = append(v.Dims, size)
	}
	if _, exists := an.k.varByName[decl.Name]; !exists {
		an.k.Vars = append(an.k.Vars, v)
	} else {
		for i, prev := range an.k.Vars {
			if prev.Name == decl.Name {
				an.k.Vars[i] = v
			}
		}
	}
	an.k.varByName[decl.Name] = v
	return nil
}

// recordConsts registers every identifier of an expression as a symbolic
// constant, in order of appearance. Loop counters are excluded.
func (an *analyzer) recordConsts(e cast.Expr) {
	cast.Walk(e, func(n cast.Node) bool {
		id, ok := n.(*cast.Ident)
		if !ok {
			return true
		}
		if an.isCounter(id.Name) || an.constSeen[id.Name] {
			return true
		}
		an.constSeen[id.Name] = true
		an.k.Consts = append(an.k.Consts, id.Name)
		return true
	})
}

func (an *analyzer) isCounter(name string) bool {
	for _, l := range an.k.Loops {
		if l.Counter == name {
			return true
		}
	}
	return false
}

func (an *analyzer) loop(floop *cast.For) error {
	decl, ok := floop.Init.(*cast.Decl)
	if !ok || decl.Init == nil {
		return violationf(MalformedLoopHeader, floop,
			"loop initializer must declare and initialize exactly one counter")
	}
	counter := decl.Name
	if an.isCounter(counter) {
		return violationf(CounterMismatch, decl,
			"counter %q reuses an enclosing loop counter", counter)
	}

	cond, ok := floop.Cond.(*cast.BinaryOp)
	if !ok || cond.Op != cast.OpLt {
		return violationf(UnsupportedCondition, floop, "loop condition must compare with <")
	}
	condCounter, ok := cond.Left.(*cast.Ident)
	if !ok {
		return violationf(UnsupportedCondition, cond, "left of the loop condition must be the counter")
	}
	if condCounter.Name != counter {
		return violationf(CounterMismatch, cond,
			"loop condition tests %q but the initializer declares %q", condCounter.Name, counter)
	}
	iterMax, err := an.loopBound(cond.Right)
	if err != nil {
		return err
	}

	step, err := an.loopStep(floop, counter)
	if err != nil {
		return err
	}

	iterMin, err := symexpr.FromAST(decl.Init)
	if err != nil {
		return violationf(MalformedLoopHeader, decl, "invalid loop start expression: %s", err)
	}
	an.recordConsts(decl.Init)

	an.k.Loops = append(an.k.Loops, LoopEntry{
		Counter: counter,
		Min:     iterMin,
		Max:     iterMax,
		Step:    step,
	})

	return an.loopBody(floop.Body)
}

// loopBound accepts a literal, a bare identifier, or identifier ± literal.
// A bound of the form N - 1 is taken at face value; no check relates it to
// the array extents it indexes into.
func (an *analyzer) loopBound(bound cast.Expr) (symexpr.Expr, error) {
	switch b := bound.(type) {
	case *cast.IntLit:
		return symexpr.Int(b.Value), nil
	case *cast.Ident:
		an.recordConsts(b)
		return symexpr.Sym(b.Name), nil
	case *cast.BinaryOp:
		if b.Op != cast.OpAdd && b.Op != cast.OpSub {
			return symexpr.Expr{}, violationf(UnsupportedCondition, b,
				"loop bound operator must be + or -, got %q", b.Op)
		}
		if _, ok := b.Left.(*cast.Ident); !ok {
			return symexpr.Expr{}, violationf(UnsupportedCondition, b,
				"left of the loop bound operator must be an identifier")
		}
		if _, ok := b.Right.(*cast.IntLit); !ok {
			return symexpr.Expr{}, violationf(UnsupportedCondition, b,
				"right of the loop bound operator must be an integer literal")
		}
		max, err := symexpr.FromAST(b)
		if err != nil {
			return symexpr.Expr{}, violationf(UnsupportedCondition, b, "invalid loop bound: %s", err)
		}
		an.recordConsts(b)
		return max, nil
	default:
		return symexpr.Expr{}, violationf(UnsupportedCondition, bound,
			"loop bound must be a literal, an identifier, or identifier ± literal, got %T", bound)
	}
}

func (an *analyzer) loopStep(floop *cast.For, counter string) (int64, error) {
	switch post := floop.Post.(type) {
	case *cast.ExprStmt:
		inc, ok := post.X.(*cast.UnaryOp)
		if !ok || inc.Op != cast.OpInc {
			return 0, violationf(MalformedLoopHeader, post, "loop increment must be ++ or a += literal")
		}
		id, ok := inc.X.(*cast.Ident)
		if !ok {
			return 0, violationf(MalformedLoopHeader, inc, "loop increment must act on the counter")
		}
		if id.Name != counter {
			return 0, violationf(CounterMismatch, inc,
				"loop increment acts on %q but the initializer declares %q", id.Name, counter)
		}
		return 1, nil
	case *cast.Assign:
		if post.Op != cast.AssignAdd {
			return 0, violationf(MalformedLoopHeader, post,
				"loop increment operator must be ++ or +=, got %q", post.Op)
		}
		id, ok := post.LHS.(*cast.Ident)
		if !ok {
			return 0, violationf(MalformedLoopHeader, post, "loop increment must act on the counter")
		}
		if id.Name != counter {
			return 0, violationf(CounterMismatch, post,
				"loop increment acts on %q but the initializer declares %q", id.Name, counter)
		}
		lit, ok := post.RHS.(*cast.IntLit)
		if !ok {
			return 0, violationf(MalformedLoopHeader, post, "only constant loop increments are allowed")
		}
		return lit.Value, nil
	default:
		return 0, violationf(MalformedLoopHeader, floop, "loop has no increment statement")
	}
}

// loopBody unrolls a directly nested single loop into the next stack entry,
// otherwise requires one assignment or a flat sequence of assignments.
func (an *analyzer) loopBody(body cast.Stmt) error {
	switch b := body.(type) {
	case *cast.For:
		return an.loop(b)
	case *cast.Assign:
		return an.assignment(b)
	case *cast.Block:
		if len(b.List) == 0 {
			return violationf(UnsupportedLoopBody, b, "innermost loop body is empty")
		}
		if len(b.List) == 1 {
			if inner, ok := b.List[0].(*cast.For); ok {
				return an.loop(inner)
			}
		}
		for _, stmt := range b.List {
			assign, ok := stmt.(*cast.Assign)
			if !ok {
				return violationf(UnsupportedLoopBody, stmt,
					"innermost loop body may contain only assignments, got %T", stmt)
			}
			if err := an.assignment(assign); err != nil {
				return err
			}
		}
		return nil
	default:
		return violationf(UnsupportedLoopBody, body,
			"loop body must be an assignment, a compound of assignments, or a nested loop, got %T", body)
	}
}

func (an *analyzer) assignment(assign *cast.Assign) error {
	var name string
	var site AccessSite
	switch lhs := assign.LHS.(type) {
	case *cast.ArrayRef:
		id, ok := cast.BaseName(lhs)
		if !ok {
			return violationf(UnsupportedLvalue, lhs, "array reference base must be a variable")
		}
		offs, err := an.offsets(lhs)
		if err != nil {
			return err
		}
		name, site = id.Name, offs
	case *cast.Ident:
		name, site = lhs.Name, AccessSite{Dir()}
	default:
		return violationf(UnsupportedLvalue, assign.LHS,
			"assignment target must be a variable or an array element, got %T", assign.LHS)
	}

	an.k.Destinations.add(name, site)

	if assign.Op != cast.AssignEq {
		op := strings.TrimSuffix(assign.Op, "=")
		switch op {
		case cast.OpAdd, cast.OpSub, cast.OpMul:
		default:
			return violationf(UnsupportedExpression, assign,
				"compound assignment operator %q not supported", assign.Op)
		}
		an.k.Flops[op]++
		// Compound assignment reads the destination as well.
		an.k.Sources.add(name, site)
	}

	return an.sources(assign.RHS)
}

func (an *analyzer) sources(e cast.Expr) error {
	switch eT := e.(type) {
	case *cast.ArrayRef:
		id, ok := cast.BaseName(eT)
		if !ok {
			return violationf(UnsupportedExpression, eT, "array reference base must be a variable")
		}
		site, err := an.offsets(eT)
		if err != nil {
			return err
		}
		an.k.Sources.add(id.Name, site)
		return nil
	case *cast.Ident:
		an.k.Sources.add(eT.Name, AccessSite{Dir()})
		return nil
	case *cast.IntLit, *cast.FloatLit:
		return nil
	case *cast.BinaryOp:
		switch eT.Op {
		case cast.OpAdd, cast.OpSub, cast.OpMul:
		default:
			return violationf(UnsupportedExpression, eT,
				"operator %q not supported in assignment right-hand sides", eT.Op)
		}
		if err := an.sources(eT.Left); err != nil {
			return err
		}
		if err := an.sources(eT.Right); err != nil {
			return err
		}
		an.k.Flops[eT.Op]++
		return nil
	default:
		return violationf(UnsupportedExpression, e,
			"only array references, variables, literals and binary operations are supported, got %T", e)
	}
}

// offsets decomposes a subscript chain into per-dimension offsets. The
// chain nests innermost subscript outermost, so offsets are collected
// bottom-up and reversed into source order.
func (an *analyzer) offsets(ref *cast.ArrayRef) (AccessSite, error) {
	var site AccessSite
	for cur := ref; ; {
		off, err := an.offset(cur.Index)
		if err != nil {
			return nil, err
		}
		site = append(site, off)
		next, ok := cur.Array.(*cast.ArrayRef)
		if !ok {
			break
		}
		cur = next
	}
	for i, j := 0, len(site)-1; i < j; i, j = i+1, j-1 {
		site[i], site[j] = site[j], site[i]
	}
	return site, nil
}

func (an *analyzer) offset(idx cast.Expr) (Offset, error) {
	switch iT := idx.(type) {
	case *cast.Ident:
		if !an.isCounter(iT.Name) {
			return Offset{}, violationf(UnknownCounter, iT,
				"subscript %q is not an active loop counter", iT.Name)
		}
		return Rel(iT.Name, 0), nil
	case *cast.IntLit:
		return Abs(iT.Value), nil
	case *cast.BinaryOp:
		if iT.Op != cast.OpAdd && iT.Op != cast.OpSub {
			return Offset{}, violationf(InvalidSubscript, iT,
				"subscript operator must be + or -, got %q", iT.Op)
		}
		id, ok := iT.Left.(*cast.Ident)
		if !ok {
			return Offset{}, violationf(InvalidSubscript, iT,
				"subscript must have form counter ± literal")
		}
		lit, ok := iT.Right.(*cast.IntLit)
		if !ok {
			return Offset{}, violationf(InvalidSubscript, iT,
				"subscript must have form counter ± literal")
		}
		if !an.isCounter(id.Name) {
			return Offset{}, violationf(UnknownCounter, id,
				"subscript %q is not an active loop counter", id.Name)
		}
		off := lit.Value
		if iT.Op == cast.OpSub {
			off = -off
		}
		return Rel(id.Name, off), nil
	default:
		return Offset{}, violationf(InvalidSubscript, idx,
			"subscript must be a counter, counter ± literal, or a literal, got %T", idx)
	}
}
