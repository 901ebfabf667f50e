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

package synth

import "github.com/kernscope/kernscope/cast"

// freshName returns an identifier starting from base that collides with no
// identifier anywhere under root, appending underscores until unused.
func freshName(root cast.Node, base string) string {
	used := make(map[string]bool)
	cast.Walk(root, func(n cast.Node) bool {
		switch nT := n.(type) {
		case *cast.Ident:
			used[nT.Name] = true
		case *cast.Decl:
			used[nT.Name] = true
		case *cast.FuncDef:
			used[nT.Name] = true
		}
		return true
	})
	name := base
	for used[name] {
		name += "_"
	}
	return name
}
