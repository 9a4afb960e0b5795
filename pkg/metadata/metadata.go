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

// Package metadata matches BOM components against operator rules that
// ignore them or override their reported name, URL, licenses and
// attribution notices.
package metadata

import (
	"context"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/venslabs/licensepatch/pkg/fetch"
	"github.com/venslabs/licensepatch/pkg/relaxed"
)

// Rule selects components and overrides what is reported for them.
//
// Example JSON5:
//
//	[
//	  // drop our own modules from the manifest
//	  {groupMatch: "com\\.acme(\\..*)?", ignore: true},
//	  {nameMatch: "netty-.*", mappedName: "Netty", url: "https://netty.io",
//	   licenses: ["Apache-2.0"], attributionNotices: ["Copyright The Netty Project"]},
//	]
//
// Empty patterns match anything. Patterns must match the whole value.
type Rule struct {
	GroupMatch         string   `json:"groupMatch" yaml:"groupMatch"`
	NameMatch          string   `json:"nameMatch" yaml:"nameMatch"`
	PURLMatch          string   `json:"purlMatch" yaml:"purlMatch"`
	Ignore             bool     `json:"ignore" yaml:"ignore"`
	MappedName         string   `json:"mappedName" yaml:"mappedName"`
	URL                string   `json:"url" yaml:"url"`
	Comment            string   `json:"comment" yaml:"comment"`
	Licenses           []string `json:"licenses" yaml:"licenses"`
	AttributionNotices []string `json:"attributionNotices" yaml:"attributionNotices"`

	group *regexp.Regexp
	name  *regexp.Regexp
	purl  *regexp.Regexp
}

func (r *Rule) compile() error {
	var err error
	if r.group, err = anchored(r.GroupMatch); err != nil {
		return errors.Wrap(err, "groupMatch")
	}
	if r.name, err = anchored(r.NameMatch); err != nil {
		return errors.Wrap(err, "nameMatch")
	}
	if r.purl, err = anchored(r.PURLMatch); err != nil {
		return errors.Wrap(err, "purlMatch")
	}
	return nil
}

func anchored(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

// Matches reports whether every configured predicate holds. A rule with a
// purl pattern never matches a component that has no purl.
func (r *Rule) Matches(group, name, purl string) bool {
	if r.group != nil && !r.group.MatchString(group) {
		return false
	}
	if r.name != nil && !r.name.MatchString(name) {
		return false
	}
	if r.purl != nil && (purl == "" || !r.purl.MatchString(purl)) {
		return false
	}
	return true
}

// RuleSet is an ordered, immutable list of rules.
type RuleSet struct {
	rules []Rule
}

// New compiles rules, keeping their order.
func New(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{rules: make([]Rule, len(rules))}
	copy(rs.rules, rules)
	for i := range rs.rules {
		if err := rs.rules[i].compile(); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "metadata rule %d", i), relaxed.ErrMalformed)
		}
	}
	return rs, nil
}

// Parse builds a rule set from a JSON or JSON5 document.
func Parse(data []byte) (*RuleSet, error) {
	var rules []Rule
	if err := relaxed.Decode("metadata.json", data, &rules); err != nil {
		return nil, err
	}
	return New(rules)
}

// Load reads the metadata document at source. An empty source yields an
// empty rule set.
func Load(ctx context.Context, f fetch.Fetcher, source string) (*RuleSet, error) {
	if source == "" {
		return New(nil)
	}
	b, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, errors.Wrap(err, "load component metadata")
	}
	var rules []Rule
	if err := relaxed.Decode(source, b, &rules); err != nil {
		return nil, errors.Wrap(err, "load component metadata")
	}
	rs, err := New(rules)
	if err != nil {
		return nil, errors.Wrapf(err, "load component metadata from %s", source)
	}
	log.Debug().Str("source", source).Int("rules", rs.Len()).Msg("loaded component metadata")
	return rs, nil
}

// FindMatch returns the first rule, in load order, matching the component.
func (rs *RuleSet) FindMatch(group, name, purl string) (*Rule, bool) {
	if rs == nil {
		return nil, false
	}
	for i := range rs.rules {
		if rs.rules[i].Matches(group, name, purl) {
			return &rs.rules[i], true
		}
	}
	return nil, false
}

func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}
