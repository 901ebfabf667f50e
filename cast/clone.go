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

// Clone returns a deep copy of a node. The copy shares nothing with the
// original, so transforms can rewrite it freely while the analyzed tree
// stays untouched.
func Clone[T Node](n T) T {
	return cloneNode(n).(T)
}

func cloneExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	return cloneNode(e).(Expr)
}

func cloneStmt(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	return cloneNode(s).(Stmt)
}

func cloneType(t DataType) DataType {
	if t == nil {
		return nil
	}
	return cloneNode(t).(DataType)
}

func cloneNode(n Node) Node {
	switch nT := n.(type) {
	case *Ident:
		o := *nT
		return &o
	case *IntLit:
		o := *nT
		return &o
	case *FloatLit:
		o := *nT
		return &o
	case *StrLit:
		o := *nT
		return &o
	case *BinaryOp:
		return &BinaryOp{P: nT.P, Op: nT.Op, Left: cloneExpr(nT.Left), Right: cloneExpr(nT.Right)}
	case *UnaryOp:
		return &UnaryOp{P: nT.P, Op: nT.Op, X: cloneExpr(nT.X)}
	case *ArrayRef:
		return &ArrayRef{P: nT.P, Array: cloneExpr(nT.Array), Index: cloneExpr(nT.Index)}
	case *Call:
		o := &Call{P: nT.P, Fun: cloneExpr(nT.Fun)}
		if nT.Args != nil {
			o.Args = Clone(nT.Args)
		}
		return o
	case *ExprList:
		o := &ExprList{P: nT.P, List: make([]Expr, len(nT.List))}
		for i, e := range nT.List {
			o.List[i] = cloneExpr(e)
		}
		return o
	case *Decl:
		o := &Decl{P: nT.P, Name: nT.Name, Type: cloneType(nT.Type), Init: cloneExpr(nT.Init)}
		o.Quals = append([]string(nil), nT.Quals...)
		return o
	case *Assign:
		return &Assign{P: nT.P, Op: nT.Op, LHS: cloneExpr(nT.LHS), RHS: cloneExpr(nT.RHS)}
	case *ExprStmt:
		return &ExprStmt{P: nT.P, X: cloneExpr(nT.X)}
	case *For:
		return &For{
			P:    nT.P,
			Init: cloneStmt(nT.Init),
			Cond: cloneExpr(nT.Cond),
			Post: cloneStmt(nT.Post),
			Body: cloneStmt(nT.Body),
		}
	case *If:
		return &If{P: nT.P, Cond: cloneExpr(nT.Cond), Then: cloneStmt(nT.Then), Else: cloneStmt(nT.Else)}
	case *Block:
		o := &Block{P: nT.P, List: make([]Stmt, len(nT.List))}
		for i, s := range nT.List {
			o.List[i] = cloneStmt(s)
		}
		return o
	case *BaseType:
		o := *nT
		return &o
	case *ArrayType:
		return &ArrayType{P: nT.P, Elem: cloneType(nT.Elem), Len: cloneExpr(nT.Len)}
	case *PtrType:
		return &PtrType{P: nT.P, Elem: cloneType(nT.Elem)}
	case *FuncDef:
		o := &FuncDef{P: nT.P, Name: nT.Name, Result: cloneType(nT.Result)}
		for _, p := range nT.Params {
			o.Params = append(o.Params, Clone(p))
		}
		if nT.Body != nil {
			o.Body = Clone(nT.Body)
		}
		return o
	case *File:
		o := &File{P: nT.P, Decls: make([]Node, len(nT.Decls))}
		for i, d := range nT.Decls {
			o.Decls[i] = cloneNode(d)
		}
		return o
	default:
		// The node set is closed; reaching this is a bug in the caller.
		panic("cast: cannot clone unknown node")
	}
}
