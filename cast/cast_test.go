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

package cast_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kernscope/kernscope/cast"
)

func vectorAddLoop() *cast.For {
	ref := func(name, counter string) *cast.ArrayRef {
		return &cast.ArrayRef{
			Array: &cast.Ident{Name: name},
			Index: &cast.Ident{Name: counter},
		}
	}
	return &cast.For{
		Init: &cast.Decl{
			Name: "i",
			Type: &cast.BaseType{Name: "int"},
			Init: &cast.IntLit{Value: 0},
		},
		Cond: &cast.BinaryOp{
			Op:    cast.OpLt,
			Left:  &cast.Ident{Name: "i"},
			Right: &cast.Ident{Name: "N"},
		},
		Post: &cast.ExprStmt{X: &cast.UnaryOp{Op: cast.OpInc, X: &cast.Ident{Name: "i"}}},
		Body: &cast.Block{List: []cast.Stmt{
			&cast.Assign{
				Op:  cast.AssignEq,
				LHS: ref("c", "i"),
				RHS: &cast.BinaryOp{Op: cast.OpAdd, Left: ref("a", "i"), Right: ref("b", "i")},
			},
		}},
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := vectorAddLoop()
	copied := cast.Clone(orig)
	if diff := cmp.Diff(orig, copied); diff != "" {
		t.Fatalf("clone differs from original:\n%s", diff)
	}

	// Mutating the copy must leave the original untouched.
	copied.Cond.(*cast.BinaryOp).Right = &cast.IntLit{Value: 42}
	copied.Body.(*cast.Block).List = nil
	if got := orig.Cond.(*cast.BinaryOp).Right.(*cast.Ident).Name; got != "N" {
		t.Errorf("original loop bound mutated: got %q, want N", got)
	}
	if len(orig.Body.(*cast.Block).List) != 1 {
		t.Errorf("original loop body mutated")
	}
}

func TestWalkVisitsEveryIdent(t *testing.T) {
	var names []string
	cast.Walk(vectorAddLoop(), func(n cast.Node) bool {
		if id, ok := n.(*cast.Ident); ok {
			names = append(names, id.Name)
		}
		return true
	})
	want := []string{"i", "N", "i", "c", "i", "a", "i", "b", "i"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("unexpected identifier visit order:\n%s", diff)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	count := 0
	cast.Walk(vectorAddLoop(), func(n cast.Node) bool {
		count++
		_, isBlock := n.(*cast.Block)
		return !isBlock
	})
	// The loop, its header nodes, and the block itself; nothing below.
	if count == 0 {
		t.Fatal("walk visited nothing")
	}
	cast.Walk(vectorAddLoop(), func(n cast.Node) bool {
		if _, ok := n.(*cast.Assign); ok {
			t.Error("walk descended into a skipped block")
		}
		_, isBlock := n.(*cast.Block)
		return !isBlock
	})
}

func TestBaseName(t *testing.T) {
	ref := &cast.ArrayRef{
		Array: &cast.ArrayRef{
			Array: &cast.Ident{Name: "c"},
			Index: &cast.Ident{Name: "i"},
		},
		Index: &cast.Ident{Name: "j"},
	}
	id, ok := cast.BaseName(ref)
	if !ok || id.Name != "c" {
		t.Errorf("BaseName = %v, %v; want c, true", id, ok)
	}
}
