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

// Package engine loads every rule table once and runs the listing and
// patching pipelines over BOM documents.
package engine

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/venslabs/licensepatch/pkg/api/types"
	"github.com/venslabs/licensepatch/pkg/bom"
	"github.com/venslabs/licensepatch/pkg/fetch"
	"github.com/venslabs/licensepatch/pkg/license"
	"github.com/venslabs/licensepatch/pkg/merger"
	"github.com/venslabs/licensepatch/pkg/metadata"
	"github.com/venslabs/licensepatch/pkg/patcher"
	"github.com/venslabs/licensepatch/pkg/patchrules"
	"github.com/venslabs/licensepatch/pkg/resolver"
	"github.com/venslabs/licensepatch/pkg/spdx"
)

// Options name the sources of every table. Empty sources select the bundled
// SPDX list and rules, and empty metadata, catalog and alias tables.
type Options struct {
	MetadataSource string
	CatalogSource  string
	AliasSource    string
	RulesSource    string
	SPDXSource     string
	// CheckURLs only keeps component reference URLs that answer a GET with 200.
	CheckURLs   bool
	Concurrency int
}

// Engine holds loaded, read-only tables. The patch rules are read through a
// store; every run resolves against the rule set current when it started.
type Engine struct {
	opts    Options
	tables  resolver.Tables
	rules   *patchrules.Store
	checker bom.Checker
}

// Load reads the SPDX list first, then the patch rules (validated against
// it), then metadata, catalog and aliases. Any failure aborts the load.
func Load(ctx context.Context, opts Options, f fetch.Fetcher) (*Engine, error) {
	if f == nil {
		f = fetch.New()
	}
	auth, err := spdx.Load(ctx, f, opts.SPDXSource)
	if err != nil {
		return nil, err
	}
	rules := patchrules.NewStore(f, auth, nil)
	if _, err := rules.Load(ctx, opts.RulesSource); err != nil {
		return nil, errors.Wrap(err, "load patch rules")
	}
	md, err := metadata.Load(ctx, f, opts.MetadataSource)
	if err != nil {
		return nil, err
	}
	catalog, err := license.LoadCatalog(ctx, f, opts.CatalogSource)
	if err != nil {
		return nil, err
	}
	aliases, err := license.LoadAliasMap(ctx, f, opts.AliasSource)
	if err != nil {
		return nil, err
	}

	t := resolver.Tables{
		Metadata:  md,
		Catalog:   catalog,
		Aliases:   aliases,
		Authority: auth,
	}
	e := &Engine{opts: opts, tables: t, rules: rules}
	if opts.CheckURLs {
		e.checker = bom.NewHTTPChecker()
	}
	log.Debug().
		Str("spdxVersion", auth.Version()).
		Int("metadataRules", md.Len()).
		Int("catalog", catalog.Len()).
		Int("aliases", aliases.Len()).
		Msg("engine loaded")
	return e, nil
}

// Tables returns the loaded tables with the patch rules currently in effect.
func (e *Engine) Tables() resolver.Tables {
	t := e.tables
	t.PatchRules = e.rules.Current()
	return t
}

func (e *Engine) parse(ctx context.Context, data []byte) (*bom.Document, error) {
	opts := []bom.Option{bom.WithConcurrency(e.opts.Concurrency)}
	if e.checker != nil {
		opts = append(opts, bom.WithAvailabilityCheck(e.checker))
	}
	return bom.Parse(ctx, data, opts...)
}

// ListComponents resolves every component of the BOM, keeping unrecognized
// licenses, and merges components sharing a name.
func (e *Engine) ListComponents(ctx context.Context, data []byte) ([]types.ComponentData, error) {
	doc, err := e.parse(ctx, data)
	if err != nil {
		return nil, err
	}
	resolved := resolver.New(e.Tables()).ResolveAll(doc.Asset.Components, resolver.ModeList)
	return merger.Merge(resolved), nil
}

// PatchBOM rewrites the licenses of the BOM per purl. Only SPDX identifiers
// are written. Components are not merged.
func (e *Engine) PatchBOM(ctx context.Context, data []byte) (patcher.Result, error) {
	doc, err := e.parse(ctx, data)
	if err != nil {
		return patcher.Result{}, err
	}
	resolved := resolver.New(e.Tables()).ResolveAll(doc.Asset.Components, resolver.ModePatch)
	res, err := patcher.Patch(doc, resolved)
	if err != nil {
		return patcher.Result{}, err
	}
	log.Info().Str("asset", doc.Asset.Name).Int("components", len(doc.Asset.Components)).
		Int("patched", res.Patched).Bool("changed", res.Changed).Msg("patched BOM")
	return res, nil
}
