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

// Package patcher rewrites the license choices of a parsed BOM from resolved
// component data and detects when the rewrite changes nothing.
package patcher

import (
	"bytes"
	"io"
	"reflect"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/cockroachdb/errors"
	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/rs/zerolog/log"
	"github.com/venslabs/licensepatch/pkg/api/types"
	"github.com/venslabs/licensepatch/pkg/bom"
)

// Result of a patch run.
type Result struct {
	// Changed is false when the patched BOM serializes exactly like the input.
	Changed bool
	// Data is the serialized patched BOM.
	Data []byte
	// Patched counts the components whose licenses were rewritten.
	Patched int

	original []byte
}

// WriteTo writes the patched BOM, or the original bytes when nothing changed.
func (r Result) WriteTo(w io.Writer) (int64, error) {
	b := r.Data
	if !r.Changed && r.original != nil {
		b = r.original
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Patch replaces the licenses of every BOM component whose purl has resolved
// data. The new list holds the resolved licenses only, so a component left
// without any valid license loses its license field. Components without a
// purl, or without resolved data, keep their license field as is. doc is not
// modified.
func Patch(doc *bom.Document, resolved []types.ComponentData) (Result, error) {
	h := doc.Header

	baseline, err := encode(doc.BOM, h)
	if err != nil {
		return Result{}, errors.Wrap(err, "encode original BOM")
	}
	patched, err := bom.Decode(baseline, h)
	if err != nil {
		return Result{}, errors.Wrap(err, "copy BOM")
	}

	byPURL := make(map[string]types.ComponentData, len(resolved))
	for _, d := range resolved {
		if d.PURL == "" {
			continue
		}
		if _, ok := byPURL[d.PURL]; !ok {
			byPURL[d.PURL] = d
		}
	}

	count := 0
	for _, c := range bom.Flatten(patched) {
		if c.PackageURL == "" {
			continue
		}
		d, ok := byPURL[c.PackageURL]
		if !ok {
			continue
		}
		choices := licenseChoices(d)
		if sameLicenses(c.Licenses, choices) {
			continue
		}
		c.Licenses = choices
		count++
		if choices == nil {
			log.Warn().Str("purl", c.PackageURL).Msg("no valid SPDX license, licenses removed")
			continue
		}
		log.Debug().Str("purl", c.PackageURL).Int("licenses", len(*choices)).Msg("patched component licenses")
	}

	out, err := encode(patched, h)
	if err != nil {
		return Result{}, errors.Wrap(err, "encode patched BOM")
	}
	same, err := equal(baseline, out, h.FileFormat)
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: !same, Data: out, Patched: count, original: doc.Raw}, nil
}

// licenseChoices is nil when d carries no license.
func licenseChoices(d types.ComponentData) *cdx.Licenses {
	if len(d.Licenses) == 0 {
		return nil
	}
	choices := make(cdx.Licenses, 0, len(d.Licenses))
	for _, l := range d.Licenses {
		choices = append(choices, cdx.LicenseChoice{License: &cdx.License{ID: l.Name, URL: l.URL}})
	}
	return &choices
}

func sameLicenses(a, b *cdx.Licenses) bool {
	if a == nil || len(*a) == 0 {
		return b == nil || len(*b) == 0
	}
	return b != nil && reflect.DeepEqual(*a, *b)
}

func encode(b *cdx.BOM, h bom.Header) ([]byte, error) {
	var buf bytes.Buffer
	enc := cdx.NewBOMEncoder(&buf, h.FileFormat).SetPretty(true)
	if err := enc.EncodeVersion(b, h.SpecVersion); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// equal compares JSON in canonical form so that encoder whitespace never
// counts as a change. XML is compared byte for byte.
func equal(a, b []byte, f cdx.BOMFileFormat) (bool, error) {
	if f != cdx.BOMFileFormatJSON {
		return bytes.Equal(a, b), nil
	}
	ca, err := jsoncanonicalizer.Transform(a)
	if err != nil {
		return false, errors.Wrap(err, "canonicalize original BOM")
	}
	cb, err := jsoncanonicalizer.Transform(b)
	if err != nil {
		return false, errors.Wrap(err, "canonicalize patched BOM")
	}
	return bytes.Equal(ca, cb), nil
}
