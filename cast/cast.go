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

// Package cast is the generic C-subset syntax tree shared by the analyzer,
// the transforms, and the code printer.
//
// The node vocabulary is closed: parsers produce it, the analyzer consumes
// it, and the synthesizer builds new trees from it. The structure and
// semantic is modeled after the go/ast package.
package cast

import "fmt"

// Pos is a position in kernel source code. The zero value marks nodes
// synthesized by a transform rather than read from source.
type Pos struct {
	Line int
	Col  int
}

// IsValid returns true if the position comes from source code.
func (p Pos) IsValid() bool { return p.Line > 0 }

// String representation of the position.
func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// ----------------------------------------------------------------------------
// Types of node in the tree.
type (
	// Node in the tree.
	Node interface {
		// node marks a structure as a node structure.
		// It prevents external implementations of the interface.
		node()

		// Pos returns the position of the node in the kernel source.
		Pos() Pos
	}

	// Expr is an expression node.
	Expr interface {
		Node
		exprNode()
	}

	// Stmt is a statement node.
	Stmt interface {
		Node
		stmtNode()
	}

	// DataType is a type node attached to a declaration.
	DataType interface {
		Node
		typeNode()
	}
)

// Operators and assignment operators are kept as their source glyphs so the
// operation tally and the printer share one vocabulary.
const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "*"
	OpLt  = "<"
	OpGt  = ">"

	OpInc    = "++"
	OpDec    = "--"
	OpAddr   = "&"
	OpSizeof = "sizeof"

	AssignEq  = "="
	AssignAdd = "+="
	AssignSub = "-="
	AssignMul = "*="
)

// ----------------------------------------------------------------------------
// Expressions.
type (
	// Ident is an identifier.
	Ident struct {
		P    Pos
		Name string
	}

	// IntLit is an integer literal.
	IntLit struct {
		P     Pos
		Value int64
	}

	// FloatLit is a floating-point literal. The value keeps its source
	// spelling so printing does not reformat it.
	FloatLit struct {
		P     Pos
		Value string
	}

	// StrLit is a string literal. The value is unquoted.
	StrLit struct {
		P     Pos
		Value string
	}

	// BinaryOp is a binary operation.
	BinaryOp struct {
		P     Pos
		Op    string
		Left  Expr
		Right Expr
	}

	// UnaryOp is a unary operation. Increment and decrement print in
	// postfix position.
	UnaryOp struct {
		P  Pos
		Op string
		X  Expr
	}

	// ArrayRef is a subscripted reference. A multi-dimensional reference
	// a[i][j] nests an ArrayRef as the Array of another, with the
	// innermost subscript outermost in the chain.
	ArrayRef struct {
		P     Pos
		Array Expr
		Index Expr
	}

	// Call is a function call.
	Call struct {
		P    Pos
		Fun  Expr
		Args *ExprList
	}

	// ExprList is a comma-separated list of expressions.
	ExprList struct {
		P    Pos
		List []Expr
	}
)

// ----------------------------------------------------------------------------
// Statements.
type (
	// Decl declares a named variable. Decl is both a block statement and
	// a translation-unit level node.
	Decl struct {
		P     Pos
		Name  string
		Quals []string // e.g. "const", "extern"
		Type  DataType
		Init  Expr // may be nil
	}

	// Assign is an assignment statement. Op is "=" or a compound
	// assignment operator.
	Assign struct {
		P   Pos
		Op  string
		LHS Expr
		RHS Expr
	}

	// ExprStmt is an expression used in statement position.
	ExprStmt struct {
		P Pos
		X Expr
	}

	// For is a counted loop. Init and Post may be nil.
	For struct {
		P    Pos
		Init Stmt
		Cond Expr
		Post Stmt
		Body Stmt
	}

	// If is a conditional. Else may be nil.
	If struct {
		P    Pos
		Cond Expr
		Then Stmt
		Else Stmt
	}

	// Block is a compound statement.
	Block struct {
		P    Pos
		List []Stmt
	}
)

// ----------------------------------------------------------------------------
// Declaration types.
type (
	// BaseType is a named scalar type such as double, float, int or char.
	BaseType struct {
		P    Pos
		Name string
	}

	// ArrayType is one array dimension wrapping an element type. For
	// a[N][M] the outer ArrayType holds N.
	ArrayType struct {
		P    Pos
		Elem DataType
		Len  Expr
	}

	// PtrType is a pointer to an element type.
	PtrType struct {
		P    Pos
		Elem DataType
	}
)

// ----------------------------------------------------------------------------
// Top-level nodes.
type (
	// FuncDef is a function definition. A nil Body declares a prototype.
	FuncDef struct {
		P      Pos
		Name   string
		Result DataType
		Params []*Decl
		Body   *Block
	}

	// File is a translation unit. Decls holds *Decl and *FuncDef nodes.
	File struct {
		P     Pos
		Decls []Node
	}
)

func (n *Ident) node()    {}
func (n *IntLit) node()   {}
func (n *FloatLit) node() {}
func (n *StrLit) node()   {}
func (n *BinaryOp) node() {}
func (n *UnaryOp) node()  {}
func (n *ArrayRef) node() {}
func (n *Call) node()     {}
func (n *ExprList) node() {}
func (n *Decl) node()     {}
func (n *Assign) node()   {}
func (n *ExprStmt) node() {}
func (n *For) node()      {}
func (n *If) node()       {}
func (n *Block) node()    {}
func (n *BaseType) node() {}
func (n *ArrayType) node() {}
func (n *PtrType) node()  {}
func (n *FuncDef) node()  {}
func (n *File) node()     {}

func (n *Ident) exprNode()    {}
func (n *IntLit) exprNode()   {}
func (n *FloatLit) exprNode() {}
func (n *StrLit) exprNode()   {}
func (n *BinaryOp) exprNode() {}
func (n *UnaryOp) exprNode()  {}
func (n *ArrayRef) exprNode() {}
func (n *Call) exprNode()     {}
func (n *ExprList) exprNode() {}

func (n *Decl) stmtNode()     {}
func (n *Assign) stmtNode()   {}
func (n *ExprStmt) stmtNode() {}
func (n *For) stmtNode()      {}
func (n *If) stmtNode()       {}
func (n *Block) stmtNode()    {}

func (n *BaseType) typeNode()  {}
func (n *ArrayType) typeNode() {}
func (n *PtrType) typeNode()   {}

func (n *Ident) Pos() Pos    { return n.P }
func (n *IntLit) Pos() Pos   { return n.P }
func (n *FloatLit) Pos() Pos { return n.P }
func (n *StrLit) Pos() Pos   { return n.P }
func (n *BinaryOp) Pos() Pos { return n.P }
func (n *UnaryOp) Pos() Pos  { return n.P }
func (n *ArrayRef) Pos() Pos { return n.P }
func (n *Call) Pos() Pos     { return n.P }
func (n *ExprList) Pos() Pos { return n.P }
func (n *Decl) Pos() Pos     { return n.P }
func (n *Assign) Pos() Pos   { return n.P }
func (n *ExprStmt) Pos() Pos { return n.P }
func (n *For) Pos() Pos      { return n.P }
func (n *If) Pos() Pos       { return n.P }
func (n *Block) Pos() Pos    { return n.P }
func (n *BaseType) Pos() Pos { return n.P }
func (n *ArrayType) Pos() Pos { return n.P }
func (n *PtrType) Pos() Pos  { return n.P }
func (n *FuncDef) Pos() Pos  { return n.P }
func (n *File) Pos() Pos     { return n.P }

var (
	_ Expr = (*Ident)(nil)
	_ Expr = (*IntLit)(nil)
	_ Expr = (*FloatLit)(nil)
	_ Expr = (*StrLit)(nil)
	_ Expr = (*BinaryOp)(nil)
	_ Expr = (*UnaryOp)(nil)
	_ Expr = (*ArrayRef)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*ExprList)(nil)

	_ Stmt = (*Decl)(nil)
	_ Stmt = (*Assign)(nil)
	_ Stmt = (*ExprStmt)(nil)
	_ Stmt = (*For)(nil)
	_ Stmt = (*If)(nil)
	_ Stmt = (*Block)(nil)

	_ DataType = (*BaseType)(nil)
	_ DataType = (*ArrayType)(nil)
	_ DataType = (*PtrType)(nil)

	_ Node = (*FuncDef)(nil)
	_ Node = (*File)(nil)
)

// BaseName returns the identifier at the bottom of a (possibly nested)
// array reference chain, e.g. c for c[i+1][j-2].
func BaseName(ref *ArrayRef) (*Ident, bool) {
	switch array := ref.Array.(type) {
	case *ArrayRef:
		return BaseName(array)
	case *Ident:
		return array, true
	default:
		return nil, false
	}
}
