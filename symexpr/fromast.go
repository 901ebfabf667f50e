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

package symexpr

import (
	"github.com/pkg/errors"

	"github.com/kernscope/kernscope/cast"
)

// FromAST converts an expression tree restricted to identifiers, integer
// literals and binary +, -, * into a symbolic expression. Any other node
// kind is a grammar violation reported to the caller.
func FromAST(e cast.Expr) (Expr, error) {
	switch eT := e.(type) {
	case *cast.Ident:
		return Sym(eT.Name), nil
	case *cast.IntLit:
		return Int(eT.Value), nil
	case *cast.BinaryOp:
		left, err := FromAST(eT.Left)
		if err != nil {
			return Expr{}, err
		}
		right, err := FromAST(eT.Right)
		if err != nil {
			return Expr{}, err
		}
		switch eT.Op {
		case cast.OpAdd:
			return left.Add(right), nil
		case cast.OpSub:
			return left.Sub(right), nil
		case cast.OpMul:
			return left.Mul(right), nil
		default:
			return Expr{}, errors.Errorf("operator %q not supported in symbolic expressions", eT.Op)
		}
	default:
		return Expr{}, errors.Errorf("%T not supported in symbolic expressions", e)
	}
}
