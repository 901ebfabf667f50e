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

package synth

import (
	"github.com/kernscope/kernscope/cast"
	"github.com/kernscope/kernscope/kernel"
)

// dimTable keeps the original per-dimension sizes of flattened arrays,
// outermost first, keyed by variable name.
type dimTable map[string][]cast.Expr

// product multiplies size expressions into one flat size. Operands are
// cloned so the result shares no nodes with the table.
func product(dims []cast.Expr) cast.Expr {
	size := cast.Clone(dims[0])
	for _, d := range dims[1:] {
		size = &cast.BinaryOp{Op: cast.OpMul, Left: size, Right: cast.Clone(d)}
	}
	return size
}

// flattenDecl rewrites an N-dimensional array declaration into a single
// dimension sized by the product of the original sizes, in place. It
// returns the original sizes, or nil for a scalar.
func flattenDecl(decl *cast.Decl) []cast.Expr {
	var dims []cast.Expr
	typ := decl.Type
	for {
		arr, ok := typ.(*cast.ArrayType)
		if !ok {
			break
		}
		dims = append(dims, arr.Len)
		typ = arr.Elem
	}
	if len(dims) == 0 {
		return nil
	}
	decl.Type = &cast.ArrayType{P: decl.P, Elem: typ, Len: product(dims)}
	return dims
}

// declToMalloc turns a flat array declaration into a pointer initialized
// by an aligned allocation, in place. The stack would be too small for
// realistic working sets.
func declToMalloc(decl *cast.Decl) {
	arr, ok := decl.Type.(*cast.ArrayType)
	if !ok {
		return
	}
	elem := arr.Elem.(*cast.BaseType)
	decl.Type = &cast.PtrType{P: decl.P, Elem: arr.Elem}
	decl.Init = &cast.Call{
		Fun: &cast.Ident{Name: mallocName},
		Args: &cast.ExprList{List: []cast.Expr{
			&cast.BinaryOp{
				Op:    cast.OpMul,
				Left:  &cast.UnaryOp{Op: cast.OpSizeof, X: &cast.Ident{Name: elem.Name}},
				Right: arr.Len,
			},
			&cast.IntLit{Value: alignment},
		}},
	}
}

// flattenRefs rewrites every multi-dimensional array reference under root
// into a single flat index, row-major: for subscripts s_0..s_{N-1} and
// dimension sizes d_0..d_{N-1} the flat index is
// s_0*(d_1*...*d_{N-1}) + ... + s_{N-1}. The whole tree is visited since a
// variable may recur in several expressions.
func flattenRefs(root cast.Node, dims dimTable) (rerr error) {
	cast.Walk(root, func(n cast.Node) bool {
		if rerr != nil {
			return false
		}
		ref, ok := n.(*cast.ArrayRef)
		if !ok {
			return true
		}
		if _, nested := ref.Array.(*cast.ArrayRef); !nested {
			return true
		}
		if err := flattenRef(ref, dims); err != nil {
			rerr = err
			return false
		}
		return true
	})
	return rerr
}

func flattenRef(ref *cast.ArrayRef, dims dimTable) error {
	// The chain nests the innermost subscript outermost; collect and
	// reverse into source order.
	var subs []cast.Expr
	cur := ref
	for {
		subs = append(subs, cur.Index)
		next, ok := cur.Array.(*cast.ArrayRef)
		if !ok {
			break
		}
		cur = next
	}
	base, ok := cur.Array.(*cast.Ident)
	if !ok {
		return kernel.Internalf(ref, "array reference base is %T, not an identifier", cur.Array)
	}
	sizes, ok := dims[base.Name]
	if !ok {
		return kernel.Internalf(ref, "no dimensions recorded for array %q", base.Name)
	}
	if len(subs) != len(sizes) {
		return kernel.Internalf(ref, "array %q referenced with %d subscripts but declared with %d dimensions",
			base.Name, len(subs), len(sizes))
	}
	for i, j := 0, len(subs)-1; i < j; i, j = i+1, j-1 {
		subs[i], subs[j] = subs[j], subs[i]
	}

	var flat cast.Expr
	for i, sub := range subs {
		term := sub
		if i < len(sizes)-1 {
			term = &cast.BinaryOp{Op: cast.OpMul, Left: sub, Right: product(sizes[i+1:])}
		}
		if flat == nil {
			flat = term
		} else {
			flat = &cast.BinaryOp{Op: cast.OpAdd, Left: flat, Right: term}
		}
	}

	ref.Array = base
	ref.Index = flat
	return nil
}
