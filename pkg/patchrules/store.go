// Copyright 2025 venslabs
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

package patchrules

import (
	"context"
	"sync/atomic"

	"github.com/venslabs/licensepatch/pkg/fetch"
)

// Store publishes the current rule set. A reload builds and validates a new
// RuleSet before swapping it in, so readers see either the old tables or the
// new ones, never a mix.
type Store struct {
	current atomic.Pointer[RuleSet]
	fetcher fetch.Fetcher
	auth    Authority
}

// NewStore returns a store holding rs, which may be nil until the first Load.
func NewStore(f fetch.Fetcher, auth Authority, rs *RuleSet) *Store {
	s := &Store{fetcher: f, auth: auth}
	if rs != nil {
		s.current.Store(rs)
	}
	return s
}

// Current returns the rule set in effect.
func (s *Store) Current() *RuleSet {
	return s.current.Load()
}

// Load replaces the rule set with the one read from source (the bundled
// rules when source is empty). On error the previous rule set stays in place.
func (s *Store) Load(ctx context.Context, source string) (*RuleSet, error) {
	rs, err := Load(ctx, s.fetcher, source)
	if err != nil {
		return nil, err
	}
	if s.auth != nil {
		if err := rs.Validate(s.auth); err != nil {
			return nil, err
		}
	}
	s.current.Store(rs)
	return rs, nil
}
