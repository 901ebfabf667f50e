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

// Command kernscope analyzes a loop kernel and generates instrumented
// benchmark source from it.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kernscope/kernscope/cparse"
	"github.com/kernscope/kernscope/cprint"
	"github.com/kernscope/kernscope/kernel"
	"github.com/kernscope/kernscope/kernel/report"
	"github.com/kernscope/kernscope/synth"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		defines    []string
		benchmark  bool
		mode       string
		outputPath string
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:           "kernscope <kernel.c>",
		Short:         "Analyze loop kernels and synthesize benchmark code",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			body, err := cparse.ParseKernel(string(src))
			if err != nil {
				return err
			}
			k, err := kernel.Analyze(body)
			if err != nil {
				return err
			}

			bind := kernel.Bindings{}
			for _, def := range defines {
				name, value, ok := strings.Cut(def, "=")
				if !ok {
					return errors.Errorf("invalid constant %q, expected name=value", def)
				}
				v, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return errors.Wrapf(err, "invalid value for constant %s", name)
				}
				bind.Set(name, v)
			}
			if len(bind) > 0 {
				if err := k.CheckBindings(bind); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if !quiet {
				report.Print(out, k)
				if len(bind) > 0 {
					report.Constants(out, bind)
				}
			}

			if !benchmark {
				return nil
			}
			var m synth.Mode
			switch mode {
			case "plain":
				m = synth.Plain
			case "likwid":
				m = synth.Likwid
			default:
				return errors.Errorf("unknown mode %q, expected plain or likwid", mode)
			}
			file, err := synth.Generate(k, m)
			if err != nil {
				return err
			}
			code := cprint.Program(file, synth.Includes(m))
			if outputPath == "" {
				_, err = fmt.Fprint(out, code)
				return err
			}
			return os.WriteFile(outputPath, []byte(code), 0o644)
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "bind a symbolic constant, e.g. -D N=100")
	cmd.Flags().BoolVar(&benchmark, "benchmark", false, "generate benchmark source")
	cmd.Flags().StringVar(&mode, "mode", "plain", "benchmark mode: plain or likwid")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write benchmark source to file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the analysis report")
	_ = cmd.MarkFlagFilename("output", "c")

	return cmd
}
