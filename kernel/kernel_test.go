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
	"strings"
	"testing"

	"github.com/kernscope/kernscope/kernel"
)

const matrixSum = `
double a[N][M];
double s;
for (int i = 0; i < N; i++) {
	for (int j = 0; j < M; j++) {
		s += a[i][j];
	}
}
`

func TestFlatSize(t *testing.T) {
	k := analyze(t, matrixSum)
	a, ok := k.Variable("a")
	if !ok {
		t.Fatal("variable a not found")
	}
	if !a.IsArray() {
		t.Fatal("a should be an array")
	}
	if got, want := a.FlatSize().String(), "M*N"; got != want {
		t.Errorf("FlatSize() = %q, want %q", got, want)
	}

	s, ok := k.Variable("s")
	if !ok {
		t.Fatal("variable s not found")
	}
	if s.IsArray() {
		t.Error("s should be a scalar")
	}
	if v, ok := s.FlatSize().Val(); !ok || v != 1 {
		t.Errorf("scalar FlatSize() = %d, %v; want 1, true", v, ok)
	}
}

// Binding constants resolves sizes without touching the kernel, so the same
// analysis serves any number of bindings.
func TestSubsConsts(t *testing.T) {
	k := analyze(t, matrixSum)
	a, _ := k.Variable("a")
	size := a.FlatSize()

	bound := k.SubsConsts(size, kernel.Bindings{"N": 100, "M": 10})
	elems, ok := bound.Val()
	if !ok || elems != 1000 {
		t.Fatalf("bound size = %d, %v; want 1000, true", elems, ok)
	}
	if got := elems * k.Datatype.Size(); got != 8000 {
		t.Errorf("working set = %d bytes, want 8000", got)
	}

	// Re-bind with different values; the symbolic size is unchanged.
	elems, ok = k.SubsConsts(size, kernel.Bindings{"N": 2, "M": 3}).Val()
	if !ok || elems != 6 {
		t.Errorf("re-bound size = %d, %v; want 6, true", elems, ok)
	}
	if got, want := size.String(), "M*N"; got != want {
		t.Errorf("size mutated by substitution: %q, want %q", got, want)
	}
}

func TestCheckBindings(t *testing.T) {
	k := analyze(t, matrixSum)
	if err := k.CheckBindings(kernel.Bindings{"N": 100, "M": 10}); err != nil {
		t.Errorf("complete bindings rejected: %v", err)
	}
	err := k.CheckBindings(kernel.Bindings{"N": 100})
	if err == nil {
		t.Fatal("missing binding should be reported")
	}
	if !strings.Contains(err.Error(), "M") {
		t.Errorf("error %q does not name the missing constant M", err)
	}
	err = k.CheckBindings(kernel.Bindings{})
	if err == nil {
		t.Fatal("empty bindings should be reported")
	}
	for _, name := range []string{"N", "M"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name the missing constant %s", err, name)
		}
	}
}

func TestBindingsClone(t *testing.T) {
	b := kernel.Bindings{"N": 1}
	c := b.Clone()
	c.Set("N", 2)
	c.Set("M", 3)
	if b["N"] != 1 {
		t.Errorf("clone mutation leaked: N = %d, want 1", b["N"])
	}
	if _, ok := b["M"]; ok {
		t.Error("clone mutation leaked: M set on the original")
	}
}

func TestOffsetString(t *testing.T) {
	tests := []struct {
		off  kernel.Offset
		want string
	}{
		{kernel.Rel("i", 1), "rel(i, +1)"},
		{kernel.Rel("j", -2), "rel(j, -2)"},
		{kernel.Rel("i", 0), "rel(i, +0)"},
		{kernel.Abs(3), "abs(3)"},
		{kernel.Dir(), "dir"},
	}
	for _, test := range tests {
		if got := test.off.String(); got != test.want {
			t.Errorf("String() = %q, want %q", got, test.want)
		}
	}
	site := kernel.AccessSite{kernel.Rel("i", 1), kernel.Rel("j", -2)}
	if got, want := site.String(), "[rel(i, +1), rel(j, -2)]"; got != want {
		t.Errorf("site String() = %q, want %q", got, want)
	}
}
