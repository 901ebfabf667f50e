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
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
)

// Bindings maps symbolic constants to concrete integer values. Bindings
// live outside the Kernel: they can be replaced or extended between uses of
// the same analyzed kernel without re-running validation.
type Bindings map[string]int64

// Set binds a constant to a value.
func (b Bindings) Set(name string, value int64) {
	b[name] = value
}

// Clone returns an independent copy of the bindings.
func (b Bindings) Clone() Bindings {
	return maps.Clone(b)
}

// CheckBindings reports every symbolic constant of the kernel missing from
// the bindings. A fully bound kernel yields concrete loop trip counts and
// allocation sizes.
func (k *Kernel) CheckBindings(b Bindings) error {
	var err error
	for _, name := range k.Consts {
		if _, ok := b[name]; !ok {
			err = multierr.Append(err, errors.Errorf("constant %s is not bound", name))
		}
	}
	return err
}
