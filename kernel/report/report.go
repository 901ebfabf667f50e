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

// Package report renders the extracted kernel facts as fixed-width tables.
// It is a read-only consumer of the kernel data model.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/kernscope/kernscope/kernel"
)

// Print writes every section of the kernel report.
func Print(w io.Writer, k *kernel.Kernel) {
	Variables(w, k)
	LoopStack(w, k)
	Sources(w, k)
	Destinations(w, k)
	Flops(w, k)
}

// LoopStack writes the loop nest, outermost first.
func LoopStack(w io.Writer, k *kernel.Kernel) {
	fmt.Fprintln(w, "loop stack:")
	fmt.Fprintln(w, "     idx |        min        max       step")
	fmt.Fprintln(w, "---------+---------------------------------")
	for _, l := range k.Loops {
		fmt.Fprintf(w, "%8s | %10s %10s %+10d\n", l.Counter, l.Min, l.Max, l.Step)
	}
	fmt.Fprintln(w)
}

// Sources writes the per-variable read sites.
func Sources(w io.Writer, k *kernel.Kernel) {
	fmt.Fprintln(w, "data sources:")
	accesses(w, k.Sources)
}

// Destinations writes the per-variable write sites.
func Destinations(w io.Writer, k *kernel.Kernel) {
	fmt.Fprintln(w, "data destinations:")
	accesses(w, k.Destinations)
}

func accesses(w io.Writer, p kernel.AccessPattern) {
	fmt.Fprintln(w, "    name |  offsets   ...")
	fmt.Fprintln(w, "---------+------------...")
	for _, name := range p.Names {
		for i, site := range p.Sites[name] {
			if i == 0 {
				fmt.Fprintf(w, "%8s | %s\n", name, site)
			} else {
				fmt.Fprintf(w, "%8s | %s\n", "", site)
			}
		}
	}
	fmt.Fprintln(w)
}

// Flops writes the operation tally and its total.
func Flops(w io.Writer, k *kernel.Kernel) {
	fmt.Fprintln(w, "FLOPs:")
	fmt.Fprintln(w, " op | count")
	fmt.Fprintln(w, "----+-------")
	ops := maps.Keys(k.Flops)
	sort.Strings(ops)
	for _, op := range ops {
		fmt.Fprintf(w, "%3s | %5d\n", op, k.Flops[op])
	}
	fmt.Fprintln(w, "    =======")
	fmt.Fprintf(w, "    %7d\n", k.FlopCount())
	fmt.Fprintln(w)
}

// Variables writes the declared variables with their type and shape.
func Variables(w io.Writer, k *kernel.Kernel) {
	fmt.Fprintln(w, "variables:")
	fmt.Fprintln(w, "    name |   type size")
	fmt.Fprintln(w, "---------+-------------------------")
	for _, v := range k.Vars {
		fmt.Fprintf(w, "%8s | %6s %s\n", v.Name, v.Type, shape(v))
	}
	fmt.Fprintln(w)
}

// Constants writes the current constant bindings.
func Constants(w io.Writer, b kernel.Bindings) {
	fmt.Fprintln(w, "constants:")
	fmt.Fprintln(w, "    name | value")
	fmt.Fprintln(w, "---------+-----------")
	names := maps.Keys(b)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%8s | %d\n", name, b[name])
	}
	fmt.Fprintln(w)
}

func shape(v *kernel.Variable) string {
	if !v.IsArray() {
		return "scalar"
	}
	dims := make([]string, len(v.Dims))
	for i, d := range v.Dims {
		dims[i] = d.String()
	}
	return "(" + strings.Join(dims, ", ") + ")"
}
