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
	"fmt"

	"github.com/pkg/errors"

	"github.com/kernscope/kernscope/cast"
)

// ViolationKind identifies which grammar rule a kernel broke.
type ViolationKind int

// Grammar violation kinds. Analysis stops at the first one.
const (
	UnknownViolation ViolationKind = iota
	NonDeclarationPrefix
	MissingTerminalLoop
	UnsupportedType
	MixedDatatype
	MalformedLoopHeader
	CounterMismatch
	UnsupportedCondition
	UnsupportedLoopBody
	UnsupportedLvalue
	InvalidSubscript
	UnknownCounter
	UnsupportedExpression
)

var violationNames = map[ViolationKind]string{
	NonDeclarationPrefix:  "non-declaration before the loop",
	MissingTerminalLoop:   "missing terminal loop",
	UnsupportedType:       "unsupported type",
	MixedDatatype:         "mixed datatype",
	MalformedLoopHeader:   "malformed loop header",
	CounterMismatch:       "counter mismatch",
	UnsupportedCondition:  "unsupported condition",
	UnsupportedLoopBody:   "unsupported loop body",
	UnsupportedLvalue:     "unsupported lvalue",
	InvalidSubscript:      "invalid subscript",
	UnknownCounter:        "unknown counter",
	UnsupportedExpression: "unsupported expression",
}

// String representation of the violation kind.
func (k ViolationKind) String() string {
	s, ok := violationNames[k]
	if !ok {
		return "unknown violation"
	}
	return s
}

// Violation is a grammar violation attached to a position in kernel source.
type Violation struct {
	Kind ViolationKind
	Pos  cast.Pos
	err  error
}

func violationf(kind ViolationKind, node cast.Node, format string, a ...any) error {
	return &Violation{Kind: kind, Pos: node.Pos(), err: errors.Errorf(format, a...)}
}

// Error returns a string description of the violation.
func (v *Violation) Error() string {
	if !v.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", v.Kind, v.err)
	}
	return fmt.Sprintf("%s: %s: %s", v.Pos, v.Kind, v.err)
}

// Unwrap the underlying error.
func (v *Violation) Unwrap() error {
	return v.err
}

// KindOf returns the violation kind of an error, or UnknownViolation if the
// error is not a grammar violation.
func KindOf(err error) ViolationKind {
	var v *Violation
	if errors.As(err, &v) {
		return v.Kind
	}
	return UnknownViolation
}

// Internal marks an error as an internal invariant violation: a transform
// met a tree shape the validator can not have let through. This is a bug in
// the caller, not in the kernel under analysis.
func Internal(err error) error {
	return errors.Wrap(err, "internal error on a validated kernel")
}

// Internalf returns a formatted internal invariant violation.
func Internalf(node cast.Node, format string, a ...any) error {
	err := errors.Errorf(format, a...)
	if node != nil && node.Pos().IsValid() {
		err = errors.Wrap(err, node.Pos().String())
	}
	return Internal(err)
}
