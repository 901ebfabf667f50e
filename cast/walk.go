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

package cast

// Walk traverses the tree rooted at n in depth-first preorder. If visit
// returns false for a node, its children are skipped.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	switch nT := n.(type) {
	case *Ident, *IntLit, *FloatLit, *StrLit, *BaseType:
	case *BinaryOp:
		Walk(nT.Left, visit)
		Walk(nT.Right, visit)
	case *UnaryOp:
		Walk(nT.X, visit)
	case *ArrayRef:
		Walk(nT.Array, visit)
		Walk(nT.Index, visit)
	case *Call:
		Walk(nT.Fun, visit)
		if nT.Args != nil {
			Walk(nT.Args, visit)
		}
	case *ExprList:
		for _, e := range nT.List {
			Walk(e, visit)
		}
	case *Decl:
		if nT.Type != nil {
			Walk(nT.Type, visit)
		}
		if nT.Init != nil {
			Walk(nT.Init, visit)
		}
	case *Assign:
		Walk(nT.LHS, visit)
		Walk(nT.RHS, visit)
	case *ExprStmt:
		Walk(nT.X, visit)
	case *For:
		if nT.Init != nil {
			Walk(nT.Init, visit)
		}
		if nT.Cond != nil {
			Walk(nT.Cond, visit)
		}
		if nT.Post != nil {
			Walk(nT.Post, visit)
		}
		Walk(nT.Body, visit)
	case *If:
		Walk(nT.Cond, visit)
		Walk(nT.Then, visit)
		if nT.Else != nil {
			Walk(nT.Else, visit)
		}
	case *Block:
		for _, s := range nT.List {
			Walk(s, visit)
		}
	case *ArrayType:
		Walk(nT.Elem, visit)
		if nT.Len != nil {
			Walk(nT.Len, visit)
		}
	case *PtrType:
		Walk(nT.Elem, visit)
	case *FuncDef:
		if nT.Result != nil {
			Walk(nT.Result, visit)
		}
		for _, p := range nT.Params {
			Walk(p, visit)
		}
		if nT.Body != nil {
			Walk(nT.Body, visit)
		}
	case *File:
		for _, d := range nT.Decls {
			Walk(d, visit)
		}
	}
}
