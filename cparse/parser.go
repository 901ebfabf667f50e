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

// Package cparse parses kernel source text into a generic cast tree.
//
// The accepted surface syntax covers the kernel grammar: scalar and array
// declarations, counted for loops, assignments, and expressions over
// identifiers, literals and the +, -, *, < operators. The parser accepts
// any well-formed nesting of those forms; the kernel analyzer decides what
// is actually a valid kernel.
package cparse

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/kernscope/kernscope/cast"
)

var typeNames = map[string]bool{
	"double": true,
	"float":  true,
	"int":    true,
	"char":   true,
	"void":   true,
}

// ParseKernel parses kernel source into the body of a synthetic wrapping
// function, mirroring how the analyzer expects its input.
func ParseKernel(src string) (*cast.Block, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	block := &cast.Block{P: p.cur().pos}
	for p.cur().kind != tokEOF {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.List = append(block.List, stmt)
	}
	return block, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) got(text string) bool {
	if p.cur().kind == tokPunct && p.cur().text == text {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) (token, error) {
	t := p.cur()
	if t.kind != tokPunct || t.text != text {
		return t, errors.Errorf("%s: expected %q, got %q", t.pos, text, t.text)
	}
	p.pos++
	return t, nil
}

func (p *parser) statement() (cast.Stmt, error) {
	t := p.cur()
	switch {
	case t.kind == tokIdent && t.text == "for":
		return p.forLoop()
	case t.kind == tokIdent && typeNames[t.text]:
		decl, err := p.declaration()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		return decl, nil
	case t.kind == tokPunct && t.text == "{":
		return p.block()
	default:
		stmt, err := p.simpleStatement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		return stmt, nil
	}
}

func (p *parser) block() (*cast.Block, error) {
	open, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	block := &cast.Block{P: open.pos}
	for !p.got("}") {
		if p.cur().kind == tokEOF {
			return nil, errors.Errorf("%s: unterminated block", open.pos)
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.List = append(block.List, stmt)
	}
	return block, nil
}

// declaration parses `type name [dim]... (= init)?` without the trailing
// semicolon, so loop initializers can reuse it.
func (p *parser) declaration() (*cast.Decl, error) {
	typTok := p.next()
	name := p.cur()
	if name.kind != tokIdent {
		return nil, errors.Errorf("%s: expected a name after type %s, got %q", name.pos, typTok.text, name.text)
	}
	p.pos++

	var dims []cast.Expr
	for p.got("[") {
		dim, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		dims = append(dims, dim)
	}
	var typ cast.DataType = &cast.BaseType{P: typTok.pos, Name: typTok.text}
	for i := len(dims) - 1; i >= 0; i-- {
		typ = &cast.ArrayType{P: typTok.pos, Elem: typ, Len: dims[i]}
	}

	decl := &cast.Decl{P: typTok.pos, Name: name.text, Type: typ}
	if p.got("=") {
		init, err := p.expression()
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	return decl, nil
}

func (p *parser) forLoop() (*cast.For, error) {
	forTok := p.next()
	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	var init cast.Stmt
	if !p.got(";") {
		var err error
		if p.cur().kind == tokIdent && typeNames[p.cur().text] {
			init, err = p.declaration()
		} else {
			init, err = p.simpleStatement()
		}
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
	}

	var cond cast.Expr
	if !p.got(";") {
		var err error
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
	}

	var post cast.Stmt
	if p.cur().kind != tokPunct || p.cur().text != ")" {
		var err error
		post, err = p.simpleStatement()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &cast.For{P: forTok.pos, Init: init, Cond: cond, Post: post, Body: body}, nil
}

// simpleStatement parses an assignment, an increment, or a bare expression
// without the trailing semicolon.
func (p *parser) simpleStatement() (cast.Stmt, error) {
	start := p.cur()

	// Prefix increment and decrement normalize to the postfix node.
	if start.kind == tokPunct && (start.text == "++" || start.text == "--") {
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &cast.ExprStmt{P: start.pos, X: &cast.UnaryOp{P: start.pos, Op: start.text, X: x}}, nil
	}

	lhs, err := p.expression()
	if err != nil {
		return nil, err
	}
	t := p.cur()
	if t.kind == tokPunct {
		switch t.text {
		case "=", "+=", "-=", "*=":
			p.pos++
			rhs, err := p.expression()
			if err != nil {
				return nil, err
			}
			return &cast.Assign{P: start.pos, Op: t.text, LHS: lhs, RHS: rhs}, nil
		case "++", "--":
			p.pos++
			return &cast.ExprStmt{P: start.pos, X: &cast.UnaryOp{P: t.pos, Op: t.text, X: lhs}}, nil
		}
	}
	return &cast.ExprStmt{P: start.pos, X: lhs}, nil
}

// Expression grammar, loosest binding first: < and >, then + and -, then *.
func (p *parser) expression() (cast.Expr, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		if t.kind != tokPunct || (t.text != "<" && t.text != ">") {
			return left, nil
		}
		p.pos++
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = &cast.BinaryOp{P: t.pos, Op: t.text, Left: left, Right: right}
	}
}

func (p *parser) additive() (cast.Expr, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		if t.kind != tokPunct || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.pos++
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &cast.BinaryOp{P: t.pos, Op: t.text, Left: left, Right: right}
	}
}

func (p *parser) multiplicative() (cast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		if t.kind != tokPunct || t.text != "*" {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &cast.BinaryOp{P: t.pos, Op: t.text, Left: left, Right: right}
	}
}

func (p *parser) unary() (cast.Expr, error) {
	t := p.cur()
	if t.kind == tokPunct && (t.text == "&" || t.text == "-") {
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			// Negative literals fold; anything else keeps the
			// unary node for the analyzer to reject.
			if lit, ok := x.(*cast.IntLit); ok {
				lit.Value = -lit.Value
				return lit, nil
			}
		}
		return &cast.UnaryOp{P: t.pos, Op: t.text, X: x}, nil
	}
	return p.primary()
}

func (p *parser) primary() (cast.Expr, error) {
	t := p.cur()
	switch t.kind {
	case tokInt:
		p.pos++
		v, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: invalid integer literal", t.pos)
		}
		return &cast.IntLit{P: t.pos, Value: v}, nil
	case tokFloat:
		p.pos++
		return &cast.FloatLit{P: t.pos, Value: t.text}, nil
	case tokIdent:
		p.pos++
		var expr cast.Expr = &cast.Ident{P: t.pos, Name: t.text}
		if p.got("(") {
			call := &cast.Call{P: t.pos, Fun: expr}
			if !p.got(")") {
				args := &cast.ExprList{P: p.cur().pos}
				for {
					arg, err := p.expression()
					if err != nil {
						return nil, err
					}
					args.List = append(args.List, arg)
					if !p.got(",") {
						break
					}
				}
				if _, err := p.expect(")"); err != nil {
					return nil, err
				}
				call.Args = args
			}
			return call, nil
		}
		for p.got("[") {
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			expr = &cast.ArrayRef{P: t.pos, Array: expr, Index: idx}
		}
		return expr, nil
	case tokPunct:
		if t.text == "(" {
			p.pos++
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			return expr, nil
		}
	}
	return nil, errors.Errorf("%s: unexpected token %q in expression", t.pos, t.text)
}
