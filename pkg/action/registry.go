// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package action

import (
	"github.com/matrixorigin/refmap/pkg/common/moerr"
	"github.com/matrixorigin/refmap/pkg/config"
	"github.com/matrixorigin/refmap/pkg/container/refmap"
	"github.com/matrixorigin/refmap/pkg/logutil"
)

// Registry maps action identifiers to actions. The table holds one
// reference per stored action and drops it when the entry is replaced or
// the registry is released.
type Registry struct {
	m *refmap.Map[string, *Action]
}

// NewRegistry creates a registry sized from params; nil params uses the
// defaults.
func NewRegistry(params *config.Parameters) (*Registry, error) {
	if params == nil {
		params = &config.Parameters{}
		params.SetDefaultValues()
	}
	m, err := refmap.NewWithBuckets[string, *Action](
		refmap.StrHash,
		refmap.StrEquals,
		nil,
		func(a *Action) { a.Unref() },
		int(params.DefaultBucketCount),
	)
	if err != nil {
		return nil, err
	}
	return &Registry{m: m}, nil
}

// Register stores the action under its identifier, taking one reference.
// Registering an identifier again replaces the previous action and drops
// the registry's reference on it.
func (r *Registry) Register(a *Action) error {
	id, ok := a.ID()
	if !ok {
		return moerr.NewInvalidInput("action has no id")
	}
	a.Ref()
	if err := r.m.Insert(id, a); err != nil {
		a.Unref()
		return err
	}
	logutil.Debugf("registered action %s", id)
	return nil
}

// Find returns the action registered under id, still owned by the
// registry, and whether it was found.
func (r *Registry) Find(id string) (*Action, bool) {
	return r.m.Find(id)
}

// Cardinality returns the number of registered actions.
func (r *Registry) Cardinality() uint64 {
	return r.m.Cardinality()
}

// Ref increases the registry's reference count and returns it.
func (r *Registry) Ref() *Registry {
	r.m.Ref()
	return r
}

// Unref decreases the registry's reference count. At zero every stored
// action loses the registry's reference.
func (r *Registry) Unref() {
	r.m.Unref()
}
