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

// Package kernel validates restricted loop kernels and extracts their
// memory-access and operation signature.
//
// A kernel is a flat sequence of float or double declarations followed by
// one (possibly nested) counted loop whose body is assignments over the
// declared variables. Analyze walks the generic tree once, rejects anything
// outside that grammar, and returns an immutable Kernel describing the loop
// nest, every read and write site, and the floating-point operation tally.
package kernel

import (
	"fmt"

	"github.com/kernscope/kernscope/cast"
	"github.com/kernscope/kernscope/symexpr"
)

// ElemType is the element type shared by every variable of a kernel.
type ElemType int

// Supported element types.
const (
	InvalidType ElemType = iota
	Float
	Double
)

// ElemTypeFromName returns the element type matching a C type name.
func ElemTypeFromName(name string) (ElemType, bool) {
	switch name {
	case "float":
		return Float, true
	case "double":
		return Double, true
	}
	return InvalidType, false
}

// Size returns the size of one element in bytes.
func (t ElemType) Size() int64 {
	switch t {
	case Float:
		return 4
	case Double:
		return 8
	}
	return 0
}

// String representation of the element type.
func (t ElemType) String() string {
	switch t {
	case Float:
		return "float"
	case Double:
		return "double"
	}
	return "invalid"
}

type (
	// Variable is a declared kernel variable. Dims is nil for scalars,
	// otherwise the symbolic size of each dimension, outermost first.
	Variable struct {
		Name string
		Type ElemType
		Dims []symexpr.Expr
	}

	// LoopEntry is one level of the loop nest. Max is the exclusive
	// upper bound.
	LoopEntry struct {
		Counter string
		Min     symexpr.Expr
		Max     symexpr.Expr
		Step    int64
	}

	// OffsetKind tags how one dimension of an access site is indexed.
	OffsetKind int

	// Offset describes one dimension's index expression: an affine
	// function of a loop counter, a constant index, or a direct scalar
	// access.
	Offset struct {
		Kind    OffsetKind
		Counter string // Relative only
		Value   int64  // Relative: offset to the counter; Absolute: index
	}

	// AccessSite is the per-dimension offsets of one occurrence of a
	// variable, outermost dimension first. A scalar access holds a
	// single Direct offset.
	AccessSite []Offset

	// AccessPattern maps base variable names to their access sites in
	// order of occurrence. Names preserves first-appearance order.
	AccessPattern struct {
		Names []string
		Sites map[string][]AccessSite
	}

	// Kernel is the result of a successful analysis. All fields are
	// write-once: nothing mutates a Kernel after Analyze returns.
	Kernel struct {
		// Source is the validated tree. It is never mutated; code
		// generation works on deep copies.
		Source *cast.Block

		Datatype     ElemType
		Vars         []*Variable
		Loops        []LoopEntry
		Sources      AccessPattern
		Destinations AccessPattern

		// Flops counts binary operations on assignment right-hand
		// sides by operator glyph, compound assignments included.
		Flops map[string]int

		// Consts lists the symbolic constants in order of first
		// appearance in dimension and bound expressions.
		Consts []string

		varByName map[string]*Variable
	}
)

// Offset kinds.
const (
	Relative OffsetKind = iota
	Absolute
	Direct
)

// Rel returns a relative offset: counter + off.
func Rel(counter string, off int64) Offset {
	return Offset{Kind: Relative, Counter: counter, Value: off}
}

// Abs returns an absolute index offset.
func Abs(v int64) Offset {
	return Offset{Kind: Absolute, Value: v}
}

// Dir returns the direct offset used for scalar accesses.
func Dir() Offset {
	return Offset{Kind: Direct}
}

// String representation of the offset, e.g. "rel(i, +1)".
func (o Offset) String() string {
	switch o.Kind {
	case Relative:
		return fmt.Sprintf("rel(%s, %+d)", o.Counter, o.Value)
	case Absolute:
		return fmt.Sprintf("abs(%d)", o.Value)
	default:
		return "dir"
	}
}

// String representation of the access site, e.g. "[rel(i, +1), rel(j, -2)]".
func (s AccessSite) String() string {
	out := "["
	for i, o := range s {
		if i > 0 {
			out += ", "
		}
		out += o.String()
	}
	return out + "]"
}

// IsArray returns true if the variable was declared with dimensions.
func (v *Variable) IsArray() bool {
	return len(v.Dims) > 0
}

// FlatSize returns the product of all dimension sizes.
func (v *Variable) FlatSize() symexpr.Expr {
	if !v.IsArray() {
		return symexpr.Int(1)
	}
	size := v.Dims[0]
	for _, d := range v.Dims[1:] {
		size = size.Mul(d)
	}
	return size
}

func (p *AccessPattern) add(name string, site AccessSite) {
	if p.Sites == nil {
		p.Sites = make(map[string][]AccessSite)
	}
	if _, ok := p.Sites[name]; !ok {
		p.Names = append(p.Names, name)
	}
	p.Sites[name] = append(p.Sites[name], site)
}

// Variable returns the declared variable of that name.
func (k *Kernel) Variable(name string) (*Variable, bool) {
	v, ok := k.varByName[name]
	return v, ok
}

// FlopCount returns the total number of counted operations per loop body
// execution.
func (k *Kernel) FlopCount() int {
	total := 0
	for _, n := range k.Flops {
		total += n
	}
	return total
}

// SubsConsts substitutes bound constants into a symbolic expression. The
// kernel itself is left untouched, so bindings can change between calls
// without re-analysis.
func (k *Kernel) SubsConsts(e symexpr.Expr, b Bindings) symexpr.Expr {
	return e.Subst(b)
}
