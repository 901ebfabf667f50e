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

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const triad = `
double a[N];
double b[N];
double c[N];
double d[N];
for (int i = 0; i < N; i++) {
	a[i] = b[i] + c[i] * d[i];
}
`

func writeKernel(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernel.c")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReport(t *testing.T) {
	out, err := run(t, writeKernel(t, triad))
	if err != nil {
		t.Fatal(err)
	}
	for _, section := range []string{"variables:", "loop stack:", "data sources:", "data destinations:", "FLOPs:"} {
		if !strings.Contains(out, section) {
			t.Errorf("report is missing section %q:\n%s", section, out)
		}
	}
	if strings.Contains(out, "constants:") {
		t.Error("constants section printed without bindings")
	}
}

func TestReportWithBindings(t *testing.T) {
	out, err := run(t, "-D", "N=100", writeKernel(t, triad))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "constants:") || !strings.Contains(out, "100") {
		t.Errorf("bound constants not reported:\n%s", out)
	}
}

func TestBenchmarkOutput(t *testing.T) {
	out, err := run(t, "-q", "--benchmark", writeKernel(t, triad))
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		`#include "kernscope.h"`,
		"const int N = atoi(argv[1]);",
		"aligned_malloc(sizeof(double) * N, 32)",
		"int main(int argc, char **argv)",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("benchmark is missing %q:\n%s", line, out)
		}
	}
	if strings.Contains(out, "likwid") {
		t.Error("plain benchmark contains likwid instrumentation")
	}
}

func TestBenchmarkLikwidToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "bench.c")
	out, err := run(t, "-q", "--benchmark", "--mode", "likwid", "-o", dest, writeKernel(t, triad))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "#include") {
		t.Errorf("benchmark printed despite -o:\n%s", out)
	}
	code, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{"#include <likwid.h>", "likwid_markerStartRegion(\"loop\");", "int repeat = atoi(argv[2]);"} {
		if !strings.Contains(string(code), line) {
			t.Errorf("benchmark file is missing %q", line)
		}
	}
}

func TestBadArguments(t *testing.T) {
	path := writeKernel(t, triad)
	if _, err := run(t, "-D", "N", path); err == nil {
		t.Error("malformed -D should fail")
	}
	if _, err := run(t, "-D", "N=ten", path); err == nil {
		t.Error("non-integer -D should fail")
	}
	if _, err := run(t, "-D", "M=1", path); err == nil {
		t.Error("binding that misses a kernel constant should fail")
	}
	if _, err := run(t, "--benchmark", "--mode", "fast", path); err == nil {
		t.Error("unknown mode should fail")
	}
	if _, err := run(t, writeKernel(t, "double a[N];")); err == nil {
		t.Error("invalid kernel should fail")
	}
}
