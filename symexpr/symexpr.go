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

// Package symexpr implements integer symbolic expressions for loop bounds
// and array dimensions.
//
// An expression is a normalized sum of terms, each an integer coefficient
// times a product of named symbols. That is enough for everything the
// kernel grammar can produce (identifiers, integer literals and +, -, *),
// and keeps substitution lazy: binding a constant resolves the symbols it
// names and leaves every other symbol in place.
package symexpr

import (
	"sort"
	"strconv"
	"strings"
)

type (
	// Term is one summand: Coef * Syms[0] * Syms[1] * ...
	// An empty Syms slice makes the term a plain integer.
	Term struct {
		Coef int64
		Syms []string
	}

	// Expr is a normalized sum of terms. The zero value is the integer 0.
	Expr struct {
		Terms []Term
	}
)

// Int returns a constant expression.
func Int(v int64) Expr {
	if v == 0 {
		return Expr{}
	}
	return Expr{Terms: []Term{{Coef: v}}}
}

// Sym returns an expression holding a single named symbol.
func Sym(name string) Expr {
	return Expr{Terms: []Term{{Coef: 1, Syms: []string{name}}}}
}

// Add returns e + o.
func (e Expr) Add(o Expr) Expr {
	return normalize(append(append([]Term(nil), e.Terms...), o.Terms...))
}

// Sub returns e - o.
func (e Expr) Sub(o Expr) Expr {
	terms := append([]Term(nil), e.Terms...)
	for _, t := range o.Terms {
		terms = append(terms, Term{Coef: -t.Coef, Syms: t.Syms})
	}
	return normalize(terms)
}

// Mul returns e * o, multiplied out term by term.
func (e Expr) Mul(o Expr) Expr {
	var terms []Term
	for _, a := range e.Terms {
		for _, b := range o.Terms {
			syms := append(append([]string(nil), a.Syms...), b.Syms...)
			terms = append(terms, Term{Coef: a.Coef * b.Coef, Syms: syms})
		}
	}
	return normalize(terms)
}

// Subst substitutes bound symbols with their integer values. Unbound
// symbols stay symbolic, so the same expression can be re-bound later.
func (e Expr) Subst(bind map[string]int64) Expr {
	var terms []Term
	for _, t := range e.Terms {
		coef := t.Coef
		var left []string
		for _, s := range t.Syms {
			if v, ok := bind[s]; ok {
				coef *= v
			} else {
				left = append(left, s)
			}
		}
		terms = append(terms, Term{Coef: coef, Syms: left})
	}
	return normalize(terms)
}

// Val returns the integer value of the expression if no symbol is left.
func (e Expr) Val() (int64, bool) {
	switch len(e.Terms) {
	case 0:
		return 0, true
	case 1:
		if len(e.Terms[0].Syms) == 0 {
			return e.Terms[0].Coef, true
		}
	}
	return 0, false
}

// Symbols returns the distinct symbol names in the expression, in term
// order.
func (e Expr) Symbols() []string {
	var names []string
	seen := make(map[string]bool)
	for _, t := range e.Terms {
		for _, s := range t.Syms {
			if !seen[s] {
				seen[s] = true
				names = append(names, s)
			}
		}
	}
	return names
}

// Equal returns true if both expressions have the same normal form.
func (e Expr) Equal(o Expr) bool {
	if len(e.Terms) != len(o.Terms) {
		return false
	}
	for i, t := range e.Terms {
		u := o.Terms[i]
		if t.Coef != u.Coef || len(t.Syms) != len(u.Syms) {
			return false
		}
		for j, s := range t.Syms {
			if s != u.Syms[j] {
				return false
			}
		}
	}
	return true
}

// String representation of the expression, e.g. "N - 1" or "2*N*M + 3".
func (e Expr) String() string {
	if len(e.Terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range e.Terms {
		coef := t.Coef
		if i == 0 {
			if coef < 0 {
				b.WriteString("-")
				coef = -coef
			}
		} else {
			if coef < 0 {
				b.WriteString(" - ")
				coef = -coef
			} else {
				b.WriteString(" + ")
			}
		}
		switch {
		case len(t.Syms) == 0:
			b.WriteString(strconv.FormatInt(coef, 10))
		case coef == 1:
			b.WriteString(strings.Join(t.Syms, "*"))
		default:
			b.WriteString(strconv.FormatInt(coef, 10))
			b.WriteString("*")
			b.WriteString(strings.Join(t.Syms, "*"))
		}
	}
	return b.String()
}

func termKey(syms []string) string { return strings.Join(syms, "*") }

func normalize(terms []Term) Expr {
	merged := make(map[string]*Term)
	var order []string
	for _, t := range terms {
		syms := append([]string(nil), t.Syms...)
		sort.Strings(syms)
		key := termKey(syms)
		if m, ok := merged[key]; ok {
			m.Coef += t.Coef
			continue
		}
		merged[key] = &Term{Coef: t.Coef, Syms: syms}
		order = append(order, key)
	}
	// Highest degree first, constants last, ties broken lexicographically.
	sort.SliceStable(order, func(i, j int) bool {
		a, b := merged[order[i]], merged[order[j]]
		if len(a.Syms) != len(b.Syms) {
			return len(a.Syms) > len(b.Syms)
		}
		return order[i] < order[j]
	})
	var out []Term
	for _, key := range order {
		t := merged[key]
		if t.Coef == 0 {
			continue
		}
		out = append(out, *t)
	}
	return Expr{Terms: out}
}
