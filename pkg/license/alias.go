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

package license

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/venslabs/licensepatch/pkg/fetch"
	"github.com/venslabs/licensepatch/pkg/relaxed"
)

// Alias maps a license name found in the wild to the name used in the catalog.
type Alias struct {
	Alias         string `json:"alias" yaml:"alias"`
	CanonicalName string `json:"canonicalName" yaml:"canonicalName"`
}

// AliasMap is the immutable alias table.
type AliasMap struct {
	m map[string]string
}

// NewAliasMap builds the table; the first mapping of an alias wins.
func NewAliasMap(aliases []Alias) (*AliasMap, error) {
	a := &AliasMap{m: make(map[string]string, len(aliases))}
	for i, e := range aliases {
		if e.Alias == "" || e.CanonicalName == "" {
			return nil, errors.Mark(errors.Newf("alias entry %d needs both alias and canonicalName", i), relaxed.ErrMalformed)
		}
		if prev, ok := a.m[e.Alias]; ok {
			log.Warn().Str("alias", e.Alias).Str("kept", prev).Str("ignored", e.CanonicalName).Msg("duplicate license alias")
			continue
		}
		a.m[e.Alias] = e.CanonicalName
	}
	return a, nil
}

// LoadAliasMap reads an alias mapping document. An empty source yields an empty table.
func LoadAliasMap(ctx context.Context, f fetch.Fetcher, source string) (*AliasMap, error) {
	if source == "" {
		return NewAliasMap(nil)
	}
	b, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, errors.Wrap(err, "load license aliases")
	}
	var aliases []Alias
	if err := relaxed.Decode(source, b, &aliases); err != nil {
		return nil, errors.Wrap(err, "load license aliases")
	}
	return NewAliasMap(aliases)
}

// Canonical returns the canonical name registered for alias.
func (a *AliasMap) Canonical(alias string) (string, bool) {
	if a == nil {
		return "", false
	}
	c, ok := a.m[alias]
	return c, ok
}

func (a *AliasMap) Len() int {
	if a == nil {
		return 0
	}
	return len(a.m)
}
