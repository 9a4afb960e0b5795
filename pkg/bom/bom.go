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

// Package bom reads CycloneDX documents into the asset and component model
// used for license resolution.
package bom

import (
	"bytes"
	"context"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/cockroachdb/errors"
	"github.com/package-url/packageurl-go"
	"github.com/rs/zerolog/log"
	"github.com/venslabs/licensepatch/pkg/license"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnsupportedFormat marks a document that is not a CycloneDX BOM.
	ErrUnsupportedFormat = errors.New("unsupported BOM format")
	// ErrUnsupportedVersion marks a CycloneDX spec version this tool does not read.
	ErrUnsupportedVersion = errors.New("unsupported CycloneDX spec version")
)

// DefaultConcurrency bounds the component mapping fan-out.
const DefaultConcurrency = 8

// Document is a decoded BOM together with what is needed to write it back.
type Document struct {
	BOM    *cdx.BOM
	Header Header
	// Raw holds the bytes the document was parsed from.
	Raw   []byte
	Asset Asset
}

// Asset is the software described by a BOM.
type Asset struct {
	Name       string
	Version    string
	Components []Component
}

// Component is one BOM entry with its licenses as declared.
type Component struct {
	Group    string
	Name     string
	Version  string
	URL      string
	PURL     string
	Licenses []license.License
}

// FullName joins group and name with a dot, omitting an empty group.
func FullName(group, name string) string {
	if group == "" {
		return name
	}
	return group + "." + name
}

type options struct {
	checker     Checker
	concurrency int
}

type Option func(*options)

// WithAvailabilityCheck only accepts external reference URLs that checker
// reports as reachable.
func WithAvailabilityCheck(checker Checker) Option {
	return func(o *options) { o.checker = checker }
}

// WithConcurrency bounds the number of components mapped in parallel.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// Parse decodes data (JSON or XML) and extracts the asset. The declared
// format and spec version are checked first, so an unsupported document is
// rejected before any component is looked at.
func Parse(ctx context.Context, data []byte, opts ...Option) (*Document, error) {
	o := options{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}

	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("format", fileFormatName(h.FileFormat)).Str("specVersion", h.SpecVersion.String()).Msg("detected BOM")

	b, err := Decode(data, h)
	if err != nil {
		return nil, err
	}

	asset, err := extractAsset(ctx, b, o)
	if err != nil {
		return nil, err
	}
	return &Document{BOM: b, Header: h, Raw: data, Asset: asset}, nil
}

// Decode decodes data whose header has already been read.
func Decode(data []byte, h Header) (*cdx.BOM, error) {
	b := new(cdx.BOM)
	if err := cdx.NewBOMDecoder(bytes.NewReader(data), h.FileFormat).Decode(b); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode CycloneDX BOM"), ErrUnsupportedFormat)
	}
	// XML carries the version in its namespace only.
	b.SpecVersion = h.SpecVersion
	return b, nil
}

func fileFormatName(f cdx.BOMFileFormat) string {
	if f == cdx.BOMFileFormatXML {
		return "xml"
	}
	return "json"
}

func extractAsset(ctx context.Context, b *cdx.BOM, o options) (Asset, error) {
	var a Asset
	if b.Metadata != nil && b.Metadata.Component != nil {
		a.Name = FullName(b.Metadata.Component.Group, b.Metadata.Component.Name)
		a.Version = b.Metadata.Component.Version
	}

	raw := Flatten(b)
	a.Components = make([]Component, len(raw))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, c := range raw {
		g.Go(func() error {
			a.Components[i] = mapComponent(gctx, c, o.checker)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// Flatten returns every component of b, nested ones included, depth-first in
// document order.
func Flatten(b *cdx.BOM) []*cdx.Component {
	var out []*cdx.Component
	if b.Components == nil {
		return out
	}
	var walk func(cs []cdx.Component)
	walk = func(cs []cdx.Component) {
		for i := range cs {
			out = append(out, &cs[i])
			if cs[i].Components != nil {
				walk(*cs[i].Components)
			}
		}
	}
	walk(*b.Components)
	return out
}

func mapComponent(ctx context.Context, c *cdx.Component, checker Checker) Component {
	if c.PackageURL != "" {
		if _, err := packageurl.FromString(c.PackageURL); err != nil {
			log.Debug().Err(err).Str("purl", c.PackageURL).Msg("malformed purl kept verbatim")
		}
	}
	return Component{
		Group:    c.Group,
		Name:     c.Name,
		Version:  c.Version,
		URL:      referenceURL(ctx, c, checker),
		PURL:     c.PackageURL,
		Licenses: declaredLicenses(c),
	}
}

// declaredLicenses reads id, else name, of every license entry. Entries with
// neither, and bare expressions, are dropped.
func declaredLicenses(c *cdx.Component) []license.License {
	if c.Licenses == nil {
		return nil
	}
	var out []license.License
	for _, choice := range *c.Licenses {
		if choice.License == nil {
			continue
		}
		name := choice.License.ID
		if name == "" {
			name = choice.License.Name
		}
		if name == "" {
			continue
		}
		out = append(out, license.Dynamic(name, choice.License.URL))
	}
	return out
}

// referenceURL prefers the VCS reference over the website. With a checker,
// unreachable candidates are skipped.
func referenceURL(ctx context.Context, c *cdx.Component, checker Checker) string {
	if c.ExternalReferences == nil {
		return ""
	}
	var candidates []string
	for _, typ := range []cdx.ExternalReferenceType{cdx.ERTypeVCS, cdx.ERTypeWebsite} {
		for _, ref := range *c.ExternalReferences {
			if ref.Type == typ && ref.URL != "" {
				candidates = append(candidates, ref.URL)
				break
			}
		}
	}
	for _, u := range candidates {
		if checker == nil || checker.Available(ctx, u) {
			return u
		}
		log.Debug().Str("url", u).Str("component", FullName(c.Group, c.Name)).Msg("reference URL unavailable")
	}
	return ""
}
