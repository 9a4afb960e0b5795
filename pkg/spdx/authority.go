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

// Package spdx loads the SPDX license list and answers membership queries
// against it.
package spdx

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/venslabs/licensepatch/pkg/fetch"
	"github.com/venslabs/licensepatch/pkg/license"
)

// DefaultSource is the public SPDX license list.
const DefaultSource = "https://spdx.org/licenses/licenses.json"

// ErrAuthorityUnavailable marks a license list that could not be loaded.
// Without it no license can be validated, so callers abort.
var ErrAuthorityUnavailable = errors.New("spdx license list unavailable")

//go:embed licenses.json
var embeddedSnapshot []byte

// Document is the SPDX license list document.
type Document struct {
	LicenseListVersion string         `json:"licenseListVersion"`
	Licenses           []LicenseEntry `json:"licenses"`
}

type LicenseEntry struct {
	LicenseID             string   `json:"licenseId"`
	Name                  string   `json:"name"`
	IsDeprecatedLicenseID bool     `json:"isDeprecatedLicenseId"`
	DetailsURL            string   `json:"detailsUrl"`
	ReferenceNumber       int      `json:"referenceNumber"`
	SeeAlso               []string `json:"seeAlso"`
}

// Authority is an immutable snapshot of the license list.
type Authority struct {
	version  string
	ids      map[string]struct{}
	names    map[string]struct{}
	idByName map[string]string
}

// Load returns the embedded snapshot when source is empty, otherwise the
// document fetched from source (a URL or a local path).
func Load(ctx context.Context, f fetch.Fetcher, source string) (*Authority, error) {
	if source == "" {
		a, err := Parse(embeddedSnapshot)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("version", a.Version()).Msg("using embedded SPDX license list")
		return a, nil
	}
	b, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "load SPDX license list"), ErrAuthorityUnavailable)
	}
	a, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "load SPDX license list from %s", source)
	}
	log.Debug().Str("version", a.Version()).Str("source", source).Msg("loaded SPDX license list")
	return a, nil
}

// Embedded returns the bundled snapshot.
func Embedded() (*Authority, error) {
	return Parse(embeddedSnapshot)
}

// Parse builds an authority from a license list document.
func Parse(data []byte) (*Authority, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode SPDX license list"), ErrAuthorityUnavailable)
	}
	if len(doc.Licenses) == 0 {
		return nil, errors.Mark(errors.New("SPDX license list has no licenses"), ErrAuthorityUnavailable)
	}
	return New(doc), nil
}

// New indexes doc. Deprecated identifiers are members but never the answer of
// IDForName when a current identifier shares the display name.
func New(doc Document) *Authority {
	a := &Authority{
		version:  doc.LicenseListVersion,
		ids:      make(map[string]struct{}, len(doc.Licenses)),
		names:    make(map[string]struct{}, len(doc.Licenses)),
		idByName: make(map[string]string, len(doc.Licenses)),
	}
	deprecated := map[string]bool{}
	for _, l := range doc.Licenses {
		if l.LicenseID != "" {
			a.ids[l.LicenseID] = struct{}{}
		}
		if l.Name == "" {
			continue
		}
		a.names[l.Name] = struct{}{}
		prev, seen := a.idByName[l.Name]
		if !seen || (deprecated[prev] && !l.IsDeprecatedLicenseID) {
			a.idByName[l.Name] = l.LicenseID
		}
		deprecated[l.LicenseID] = l.IsDeprecatedLicenseID
	}
	return a
}

// Version is the licenseListVersion of the snapshot.
func (a *Authority) Version() string { return a.version }

func (a *Authority) ContainsID(id string) bool {
	_, ok := a.ids[id]
	return ok
}

func (a *Authority) ContainsName(name string) bool {
	_, ok := a.names[name]
	return ok
}

// IDForName returns the identifier whose display name is exactly name.
func (a *Authority) IDForName(name string) (string, bool) {
	id, ok := a.idByName[name]
	return id, ok
}

// Kind tells whether name is a known identifier or free text.
func (a *Authority) Kind(name string) license.Kind {
	if a.ContainsID(name) {
		return license.KindSPDXID
	}
	return license.KindFreeText
}

func (a *Authority) Ref(name string) license.Ref {
	return license.Ref{Name: name, Kind: a.Kind(name)}
}

// Len is the number of known identifiers.
func (a *Authority) Len() int { return len(a.ids) }
