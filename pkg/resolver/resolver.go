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

// Package resolver turns raw BOM components into resolved component data by
// applying metadata overrides and license name canonicalization.
package resolver

import (
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/venslabs/licensepatch/pkg/api/types"
	"github.com/venslabs/licensepatch/pkg/bom"
	"github.com/venslabs/licensepatch/pkg/license"
	"github.com/venslabs/licensepatch/pkg/metadata"
	"github.com/venslabs/licensepatch/pkg/patchrules"
	"github.com/venslabs/licensepatch/pkg/spdx"
)

// Mode selects how strictly licenses are validated.
type Mode int

const (
	// ModeList keeps every license, recognized or not.
	ModeList Mode = iota
	// ModePatch keeps only licenses whose final name is an SPDX identifier.
	ModePatch
)

func (m Mode) String() string {
	if m == ModePatch {
		return "patch"
	}
	return "list"
}

// Tables are the loaded, read-only inputs of a resolution.
type Tables struct {
	Metadata   *metadata.RuleSet
	Catalog    *license.Catalog
	Aliases    *license.AliasMap
	PatchRules *patchrules.RuleSet
	Authority  *spdx.Authority
}

// Resolver is safe for concurrent use; it never mutates its tables.
type Resolver struct {
	t Tables
}

func New(t Tables) *Resolver {
	return &Resolver{t: t}
}

// Resolve returns the resolved data for c, or false when a metadata rule
// ignores the component.
func (r *Resolver) Resolve(c bom.Component, mode Mode) (types.ComponentData, bool) {
	// One lookup serves ignore, license override and naming so that fields of
	// two different rules are never mixed.
	rule, matched := r.t.Metadata.FindMatch(c.Group, c.Name, c.PURL)
	if matched && rule.Ignore {
		log.Debug().Str("component", bom.FullName(c.Group, c.Name)).Msg("component ignored by metadata rule")
		return types.ComponentData{}, false
	}

	candidates := c.Licenses
	if matched && len(rule.Licenses) > 0 {
		candidates = make([]license.License, 0, len(rule.Licenses))
		for _, name := range rule.Licenses {
			candidates = append(candidates, license.Dynamic(name, ""))
		}
	}
	if len(candidates) == 0 && c.PURL != "" && r.t.PatchRules != nil {
		if id, ok := r.t.PatchRules.MapIDByPURL(c.PURL); ok {
			candidates = []license.License{license.Dynamic(id, "")}
		}
	}

	var set license.Set
	for _, l := range candidates {
		resolved := r.canonicalize(l)
		if ref := r.t.Authority.Ref(resolved.Name); mode == ModePatch && !ref.IsSPDX() {
			log.Warn().
				Str("component", bom.FullName(c.Group, c.Name)).
				Str("purl", c.PURL).
				Str("license", ref.Name).
				Stringer("kind", ref.Kind).
				Msg("license is not a recognized SPDX id, dropped from patch")
			continue
		}
		set.Add(resolved)
	}

	d := types.ComponentData{
		Name:               bom.FullName(c.Group, c.Name),
		Version:            c.Version,
		URL:                c.URL,
		PURL:               c.PURL,
		Licenses:           set.Items(),
		AttributionNotices: []string{},
	}
	if matched {
		if rule.MappedName != "" {
			d.Name = rule.MappedName
		}
		if rule.URL != "" {
			d.URL = rule.URL
		}
		d.AttributionNotices = sortedUnique(rule.AttributionNotices)
	}
	return d, true
}

// ResolveAll resolves components in order, skipping ignored ones.
func (r *Resolver) ResolveAll(components []bom.Component, mode Mode) []types.ComponentData {
	out := make([]types.ComponentData, 0, len(components))
	for _, c := range components {
		if d, ok := r.Resolve(c, mode); ok {
			out = append(out, d)
		}
	}
	return out
}

// canonicalize maps a declared license onto its normalized name and, when
// the catalog knows that name, onto the configured license.
func (r *Resolver) canonicalize(l license.License) license.License {
	name := l.Name
	if rs := r.t.PatchRules; rs != nil {
		if v, ok := rs.PatchID(name); ok {
			name = v
		} else if v, ok := rs.PatchName(name); ok {
			name = v
		}
	}
	if v, ok := r.t.Aliases.Canonical(name); ok {
		name = v
	}
	if r.t.Authority != nil && !r.t.Authority.Ref(name).IsSPDX() {
		if id, ok := r.t.Authority.IDForName(name); ok {
			name = id
		} else if l.URL != "" && r.t.PatchRules != nil {
			if id, ok := r.t.PatchRules.MapIDByURL(l.URL); ok {
				name = id
			}
		}
	}
	if configured, ok := r.t.Catalog.Lookup(name); ok {
		return configured
	}
	return l.WithName(name)
}

func sortedUnique(in []string) []string {
	out := slices.Clone(in)
	if out == nil {
		return []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
