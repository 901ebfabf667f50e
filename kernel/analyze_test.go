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

package kernel_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kernscope/kernscope/cparse"
	"github.com/kernscope/kernscope/kernel"
	"github.com/kernscope/kernscope/symexpr"
)

func analyze(t *testing.T, src string) *kernel.Kernel {
	t.Helper()
	body, err := cparse.ParseKernel(src)
	if err != nil {
		t.Fatalf("cannot parse kernel: %v", err)
	}
	k, err := kernel.Analyze(body)
	if err != nil {
		t.Fatalf("cannot analyze kernel: %v", err)
	}
	return k
}

func diff(t *testing.T, name string, want, got any) {
	t.Helper()
	if d := cmp.Diff(want, got, cmpopts.EquateEmpty()); d != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", name, d)
	}
}

func TestAnalyzeVectorAdd(t *testing.T) {
	k := analyze(t, `
double a[N];
double b[N];
double c[N];
for (int i = 0; i < N; i++) {
	c[i] = a[i] + b[i];
}
`)
	diff(t, "variables", []*kernel.Variable{
		{Name: "a", Type: kernel.Double, Dims: []symexpr.Expr{symexpr.Sym("N")}},
		{Name: "b", Type: kernel.Double, Dims: []symexpr.Expr{symexpr.Sym("N")}},
		{Name: "c", Type: kernel.Double, Dims: []symexpr.Expr{symexpr.Sym("N")}},
	}, k.Vars)
	diff(t, "loops", []kernel.LoopEntry{
		{Counter: "i", Min: symexpr.Int(0), Max: symexpr.Sym("N"), Step: 1},
	}, k.Loops)
	diff(t, "sources", kernel.AccessPattern{
		Names: []string{"a", "b"},
		Sites: map[string][]kernel.AccessSite{
			"a": {{kernel.Rel("i", 0)}},
			"b": {{kernel.Rel("i", 0)}},
		},
	}, k.Sources)
	diff(t, "destinations", kernel.AccessPattern{
		Names: []string{"c"},
		Sites: map[string][]kernel.AccessSite{
			"c": {{kernel.Rel("i", 0)}},
		},
	}, k.Destinations)
	diff(t, "flops", map[string]int{"+": 1}, k.Flops)
	diff(t, "constants", []string{"N"}, k.Consts)
	if k.Datatype != kernel.Double {
		t.Errorf("datatype = %s, want double", k.Datatype)
	}
}

func TestAnalyzeLoopNest(t *testing.T) {
	k := analyze(t, `
float a[N][M][8];
for (int i = 0; i < N; i++) {
	for (int j = 1; j < M - 1; j++) {
		for (int l = 0; l < 8; l += 2) {
			a[i][j][l] = 1.5;
		}
	}
}
`)
	diff(t, "loops", []kernel.LoopEntry{
		{Counter: "i", Min: symexpr.Int(0), Max: symexpr.Sym("N"), Step: 1},
		{Counter: "j", Min: symexpr.Int(1), Max: symexpr.Sym("M").Sub(symexpr.Int(1)), Step: 1},
		{Counter: "l", Min: symexpr.Int(0), Max: symexpr.Int(8), Step: 2},
	}, k.Loops)
	diff(t, "constants", []string{"N", "M"}, k.Consts)
	if k.Datatype != kernel.Float {
		t.Errorf("datatype = %s, want float", k.Datatype)
	}
}

// Offsets follow the subscript order of the source, outermost dimension
// first, regardless of how deep the reference chain nests.
func TestAnalyzeStencilOffsets(t *testing.T) {
	k := analyze(t, `
double a[M][N];
double b[M][N];
for (int i = 1; i < M - 1; i++) {
	for (int j = 2; j < N; j++) {
		b[i + 1][j - 2] = a[i][j];
	}
}
`)
	diff(t, "destinations", kernel.AccessPattern{
		Names: []string{"b"},
		Sites: map[string][]kernel.AccessSite{
			"b": {{kernel.Rel("i", 1), kernel.Rel("j", -2)}},
		},
	}, k.Destinations)
	diff(t, "sources", kernel.AccessPattern{
		Names: []string{"a"},
		Sites: map[string][]kernel.AccessSite{
			"a": {{kernel.Rel("i", 0), kernel.Rel("j", 0)}},
		},
	}, k.Sources)
	if len(k.Flops) != 0 {
		t.Errorf("flops = %v, want none", k.Flops)
	}
}

// A compound assignment reads its destination as well as writing it, and
// its operator counts toward the operation tally.
func TestAnalyzeCompoundAssignment(t *testing.T) {
	k := analyze(t, `
double a[N];
double b[N];
for (int i = 0; i < N; i++)
	a[i] += b[i];
`)
	diff(t, "sources", kernel.AccessPattern{
		Names: []string{"a", "b"},
		Sites: map[string][]kernel.AccessSite{
			"a": {{kernel.Rel("i", 0)}},
			"b": {{kernel.Rel("i", 0)}},
		},
	}, k.Sources)
	diff(t, "destinations", kernel.AccessPattern{
		Names: []string{"a"},
		Sites: map[string][]kernel.AccessSite{
			"a": {{kernel.Rel("i", 0)}},
		},
	}, k.Destinations)
	diff(t, "flops", map[string]int{"+": 1}, k.Flops)
}

func TestAnalyzeScalarReduction(t *testing.T) {
	k := analyze(t, `
double s;
double a[N];
for (int i = 0; i < N; i++)
	s += a[i] * a[i];
`)
	diff(t, "destinations", kernel.AccessPattern{
		Names: []string{"s"},
		Sites: map[string][]kernel.AccessSite{
			"s": {{kernel.Dir()}},
		},
	}, k.Destinations)
	diff(t, "sources", kernel.AccessPattern{
		Names: []string{"s", "a"},
		Sites: map[string][]kernel.AccessSite{
			"s": {{kernel.Dir()}},
			"a": {{kernel.Rel("i", 0)}, {kernel.Rel("i", 0)}},
		},
	}, k.Sources)
	diff(t, "flops", map[string]int{"+": 1, "*": 1}, k.Flops)
	if got := k.FlopCount(); got != 2 {
		t.Errorf("FlopCount() = %d, want 2", got)
	}
}

func TestAnalyzeAbsoluteSubscript(t *testing.T) {
	k := analyze(t, `
double a[N];
double c[N];
for (int i = 0; i < N; i++)
	c[i] = a[3];
`)
	diff(t, "sources", kernel.AccessPattern{
		Names: []string{"a"},
		Sites: map[string][]kernel.AccessSite{
			"a": {{kernel.Abs(3)}},
		},
	}, k.Sources)
}

// An inner bound naming an enclosing counter stays symbolic and is not a
// kernel constant.
func TestAnalyzeTriangularBound(t *testing.T) {
	k := analyze(t, `
double a[N][N];
double s;
for (int i = 0; i < N; i++) {
	for (int j = 0; j < i; j++) {
		s += a[i][j];
	}
}
`)
	diff(t, "constants", []string{"N"}, k.Consts)
	if got, want := k.Loops[1].Max.String(), "i"; got != want {
		t.Errorf("inner bound = %q, want %q", got, want)
	}
}

// Constants appear in order of first appearance across dimension and bound
// expressions.
func TestAnalyzeConstOrder(t *testing.T) {
	k := analyze(t, `
double a[M][K];
double s;
for (int i = 0; i < M; i++) {
	for (int j = 0; j < K - 1; j++) {
		s += a[i][j];
	}
}
`)
	diff(t, "constants", []string{"M", "K"}, k.Consts)
}

func TestAnalyzeViolations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want kernel.ViolationKind
	}{
		{
			name: "empty kernel",
			src:  ``,
			want: kernel.MissingTerminalLoop,
		},
		{
			name: "no terminal loop",
			src:  `double a[N];`,
			want: kernel.MissingTerminalLoop,
		},
		{
			name: "assignment as last statement",
			src: `double a[N];
a = 1.5;`,
			want: kernel.MissingTerminalLoop,
		},
		{
			name: "statement before the loop",
			src: `double a[N];
a = 1.5;
for (int i = 0; i < N; i++) a[i] = 1.5;`,
			want: kernel.NonDeclarationPrefix,
		},
		{
			name: "integer variable",
			src: `int a[N];
for (int i = 0; i < N; i++) a[i] = 1;`,
			want: kernel.UnsupportedType,
		},
		{
			name: "mixed datatypes",
			src: `float a[N];
double b[N];
for (int i = 0; i < N; i++) a[i] = b[i];`,
			want: kernel.MixedDatatype,
		},
		{
			name: "loop without counter declaration",
			src: `double a[N];
for (i = 0; i < N; i++) a[i] = 1.5;`,
			want: kernel.MalformedLoopHeader,
		},
		{
			name: "counter without start value",
			src: `double a[N];
for (int i; i < N; i++) a[i] = 1.5;`,
			want: kernel.MalformedLoopHeader,
		},
		{
			name: "descending condition",
			src: `double a[N];
for (int i = N; i > 0; i++) a[i] = 1.5;`,
			want: kernel.UnsupportedCondition,
		},
		{
			name: "condition on another variable",
			src: `double a[N];
for (int i = 0; j < N; i++) a[i] = 1.5;`,
			want: kernel.CounterMismatch,
		},
		{
			name: "counter reused by inner loop",
			src: `double a[N];
for (int i = 0; i < N; i++) {
	for (int i = 0; i < N; i++) {
		a[i] = 1.5;
	}
}`,
			want: kernel.CounterMismatch,
		},
		{
			name: "multiplicative bound",
			src: `double a[N];
for (int i = 0; i < N * 2; i++) a[i] = 1.5;`,
			want: kernel.UnsupportedCondition,
		},
		{
			name: "decrementing step",
			src: `double a[N];
for (int i = 0; i < N; i -= 1) a[i] = 1.5;`,
			want: kernel.MalformedLoopHeader,
		},
		{
			name: "declaration inside the loop body",
			src: `double a[N];
for (int i = 0; i < N; i++) {
	double x;
	a[i] = 1.5;
}`,
			want: kernel.UnsupportedLoopBody,
		},
		{
			name: "bare expression body",
			src: `double a[N];
for (int i = 0; i < N; i++) a[i];`,
			want: kernel.UnsupportedLoopBody,
		},
		{
			name: "literal assignment target",
			src: `double a[N];
for (int i = 0; i < N; i++) 3 = a[i];`,
			want: kernel.UnsupportedLvalue,
		},
		{
			name: "scaled subscript",
			src: `double a[N];
for (int i = 0; i < N; i++) a[2 * i] = 1.5;`,
			want: kernel.InvalidSubscript,
		},
		{
			name: "literal-first subscript",
			src: `double a[N];
for (int i = 0; i < N; i++) a[1 + i] = 1.5;`,
			want: kernel.InvalidSubscript,
		},
		{
			name: "subscript on a non-counter",
			src: `double a[N];
for (int i = 0; i < N; i++) a[k] = 1.5;`,
			want: kernel.UnknownCounter,
		},
		{
			name: "call on the right-hand side",
			src: `double a[N];
double b[N];
for (int i = 0; i < N; i++) a[i] = f(b);`,
			want: kernel.UnsupportedExpression,
		},
		{
			name: "comparison on the right-hand side",
			src: `double a[N];
double b[N];
for (int i = 0; i < N; i++) a[i] = b[i] < a[i];`,
			want: kernel.UnsupportedExpression,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			body, err := cparse.ParseKernel(test.src)
			if err != nil {
				t.Fatalf("cannot parse kernel: %v", err)
			}
			_, err = kernel.Analyze(body)
			if err == nil {
				t.Fatal("Analyze should fail")
			}
			if got := kernel.KindOf(err); got != test.want {
				t.Errorf("violation = %s (%v), want %s", got, err, test.want)
			}
		})
	}
}
