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

// Package patchrules normalizes legacy or noisy license labels into SPDX
// identifiers using four independent, ordered rule tables.
package patchrules

import (
	"context"
	_ "embed"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/venslabs/licensepatch/pkg/fetch"
	"github.com/venslabs/licensepatch/pkg/relaxed"
)

var (
	// ErrUnsupportedSpdxID marks a rule resolving to an identifier the SPDX list does not know.
	ErrUnsupportedSpdxID = errors.New("unsupported SPDX license id")
	// ErrUnsupportedSpdxName marks a rule resolving to a name the SPDX list does not know.
	ErrUnsupportedSpdxName = errors.New("unsupported SPDX license name")
)

//go:embed default_rules.json
var defaultRules []byte

// Document is the on-disk shape of a rule set.
//
// Example JSON5:
//
//	{
//	  idPatchRules: [{match: "GPL-2.0", resolved: "GPL-2.0-only"}],
//	  namePatchRules: [{match: "The MIT License", resolved: "MIT License"}],
//	  urlMappingRules: [{match: "https://opensource.org/licenses/MIT", id: "MIT"}],
//	  purlMappingRules: [{match: "pkg:npm/%40types/", id: "MIT", regex: true}],
//	}
type Document struct {
	IDPatchRules     []Rule        `json:"idPatchRules" yaml:"idPatchRules"`
	NamePatchRules   []Rule        `json:"namePatchRules" yaml:"namePatchRules"`
	URLMappingRules  []Mapping     `json:"urlMappingRules" yaml:"urlMappingRules"`
	PURLMappingRules []PURLMapping `json:"purlMappingRules" yaml:"purlMappingRules"`
}

// Rule rewrites Match into Resolved.
type Rule struct {
	Match    string `json:"match" yaml:"match"`
	Resolved string `json:"resolved" yaml:"resolved"`
}

// Mapping maps a license URL to an SPDX id.
type Mapping struct {
	Match string `json:"match" yaml:"match"`
	ID    string `json:"id" yaml:"id"`
}

// PURLMapping maps a package URL to an SPDX id. With Regex set, Match is a
// pattern searched anywhere in the purl; otherwise the purl must equal Match.
type PURLMapping struct {
	Match string `json:"match" yaml:"match"`
	ID    string `json:"id" yaml:"id"`
	Regex bool   `json:"regex" yaml:"regex"`
}

type purlPattern struct {
	re *regexp.Regexp
	id string
}

// RuleSet is an immutable, indexed rule document.
type RuleSet struct {
	doc Document

	ids      map[string]string
	names    map[string]string
	urls     map[string]string
	literals map[string]string
	patterns []purlPattern
}

// Authority answers SPDX membership queries.
type Authority interface {
	ContainsID(id string) bool
	ContainsName(name string) bool
}

// Default returns the bundled rule set.
func Default() (*RuleSet, error) {
	rs, err := Parse(defaultRules)
	if err != nil {
		return nil, errors.Wrap(err, "default patch rules")
	}
	return rs, nil
}

// Parse builds a rule set from a JSON or JSON5 document.
func Parse(data []byte) (*RuleSet, error) {
	var doc Document
	if err := relaxed.Decode("rules.json", data, &doc); err != nil {
		return nil, err
	}
	return New(doc)
}

// Load reads a rule document from a local path or a URL. An empty source
// yields the bundled rules.
func Load(ctx context.Context, f fetch.Fetcher, source string) (*RuleSet, error) {
	if source == "" {
		return Default()
	}
	b, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, errors.Wrap(err, "load patch rules")
	}
	var doc Document
	if err := relaxed.Decode(source, b, &doc); err != nil {
		return nil, errors.Wrap(err, "load patch rules")
	}
	rs, err := New(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "load patch rules from %s", source)
	}
	log.Debug().Str("source", source).
		Int("idPatchRules", len(rs.doc.IDPatchRules)).
		Int("namePatchRules", len(rs.doc.NamePatchRules)).
		Int("urlMappingRules", len(rs.doc.URLMappingRules)).
		Int("purlMappingRules", len(rs.doc.PURLMappingRules)).
		Msg("loaded patch rules")
	return rs, nil
}

// New indexes doc. Within a table the first entry for a given match wins.
// Regex purl rules are compiled here, so a bad pattern fails the whole load.
func New(doc Document) (*RuleSet, error) {
	rs := &RuleSet{
		doc:      doc,
		ids:      make(map[string]string, len(doc.IDPatchRules)),
		names:    make(map[string]string, len(doc.NamePatchRules)),
		urls:     make(map[string]string, len(doc.URLMappingRules)),
		literals: map[string]string{},
	}
	for _, r := range doc.IDPatchRules {
		put(rs.ids, "idPatchRules", r.Match, r.Resolved)
	}
	for _, r := range doc.NamePatchRules {
		put(rs.names, "namePatchRules", r.Match, r.Resolved)
	}
	for _, m := range doc.URLMappingRules {
		put(rs.urls, "urlMappingRules", m.Match, m.ID)
	}
	seen := map[string]bool{}
	for i, m := range doc.PURLMappingRules {
		if !m.Regex {
			put(rs.literals, "purlMappingRules", m.Match, m.ID)
			continue
		}
		if seen[m.Match] {
			log.Warn().Str("table", "purlMappingRules").Str("match", m.Match).Msg("duplicate rule ignored")
			continue
		}
		seen[m.Match] = true
		re, err := regexp.Compile(m.Match)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "purlMappingRules[%d]: invalid pattern %q", i, m.Match), relaxed.ErrMalformed)
		}
		rs.patterns = append(rs.patterns, purlPattern{re: re, id: m.ID})
	}
	return rs, nil
}

func put(m map[string]string, table, match, value string) {
	if _, ok := m[match]; ok {
		log.Warn().Str("table", table).Str("match", match).Msg("duplicate rule ignored")
		return
	}
	m[match] = value
}

// Validate checks the resolved side of every rule against the authority and
// reports all offending entries at once.
func (rs *RuleSet) Validate(a Authority) error {
	var errs []error
	for _, r := range rs.doc.IDPatchRules {
		if !a.ContainsID(r.Resolved) {
			errs = append(errs, errors.Mark(errors.Newf("idPatchRules: %q resolves to %q", r.Match, r.Resolved), ErrUnsupportedSpdxID))
		}
	}
	for _, r := range rs.doc.NamePatchRules {
		if !a.ContainsName(r.Resolved) {
			errs = append(errs, errors.Mark(errors.Newf("namePatchRules: %q resolves to %q", r.Match, r.Resolved), ErrUnsupportedSpdxName))
		}
	}
	for _, m := range rs.doc.URLMappingRules {
		if !a.ContainsID(m.ID) {
			errs = append(errs, errors.Mark(errors.Newf("urlMappingRules: %q maps to %q", m.Match, m.ID), ErrUnsupportedSpdxID))
		}
	}
	for _, m := range rs.doc.PURLMappingRules {
		if !a.ContainsID(m.ID) {
			errs = append(errs, errors.Mark(errors.Newf("purlMappingRules: %q maps to %q", m.Match, m.ID), ErrUnsupportedSpdxID))
		}
	}
	return errors.Join(errs...)
}

func (rs *RuleSet) PatchID(id string) (string, bool) {
	v, ok := rs.ids[id]
	return v, ok
}

func (rs *RuleSet) PatchName(name string) (string, bool) {
	v, ok := rs.names[name]
	return v, ok
}

func (rs *RuleSet) MapIDByURL(url string) (string, bool) {
	v, ok := rs.urls[url]
	return v, ok
}

// MapIDByPURL checks literal entries first, then regex entries in load order.
// A regex entry matches when its pattern is found anywhere in purl.
func (rs *RuleSet) MapIDByPURL(purl string) (string, bool) {
	if purl == "" {
		return "", false
	}
	if v, ok := rs.literals[purl]; ok {
		return v, true
	}
	for _, p := range rs.patterns {
		if p.re.FindStringIndex(purl) != nil {
			return p.id, true
		}
	}
	return "", false
}

// Document returns the rule document the set was built from.
func (rs *RuleSet) Document() Document { return rs.doc }
