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

// CatalogEntry is one curated license definition of the catalog document.
//
// Example JSON5:
//
//	[
//	  {name: "Apache-2.0", url: "https://www.apache.org/licenses/LICENSE-2.0",
//	   downloadUrl: "https://www.apache.org/licenses/LICENSE-2.0.txt"},
//	]
type CatalogEntry struct {
	Name        string `json:"name" yaml:"name"`
	URL         string `json:"url" yaml:"url"`
	DownloadURL string `json:"downloadUrl" yaml:"downloadUrl"`
}

// Catalog maps license names to operator-configured licenses. It is immutable.
type Catalog struct {
	byName map[string]License
}

// NewCatalog builds a catalog. When a name appears twice the first entry wins.
func NewCatalog(entries []CatalogEntry) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]License, len(entries))}
	for i, e := range entries {
		if e.Name == "" {
			return nil, errors.Mark(errors.Newf("catalog entry %d has no name", i), relaxed.ErrMalformed)
		}
		if _, ok := c.byName[e.Name]; ok {
			log.Warn().Str("license", e.Name).Msg("duplicate catalog entry ignored")
			continue
		}
		c.byName[e.Name] = License{
			Name:        e.Name,
			URL:         e.URL,
			DownloadURL: e.DownloadURL,
			Configured:  true,
		}
	}
	return c, nil
}

// LoadCatalog reads a catalog document. An empty source yields an empty catalog.
func LoadCatalog(ctx context.Context, f fetch.Fetcher, source string) (*Catalog, error) {
	if source == "" {
		return NewCatalog(nil)
	}
	b, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, errors.Wrap(err, "load license catalog")
	}
	var entries []CatalogEntry
	if err := relaxed.Decode(source, b, &entries); err != nil {
		return nil, errors.Wrap(err, "load license catalog")
	}
	return NewCatalog(entries)
}

// Lookup returns the configured license for name.
func (c *Catalog) Lookup(name string) (License, bool) {
	if c == nil {
		return License{}, false
	}
	l, ok := c.byName[name]
	return l, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byName)
}
