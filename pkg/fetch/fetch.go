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

// Package fetch reads configuration and reference documents from local files
// or from a single HTTP GET.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DefaultTimeout bounds a whole remote fetch, including reading the body.
const DefaultTimeout = 60 * time.Second

// ErrFetch marks a document that could not be read.
var ErrFetch = errors.New("fetch failed")

// Fetcher reads the document named by source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Source fetches http(s) URLs over the network and everything else from a filesystem.
type Source struct {
	Client *http.Client
	Fs     afero.Fs
}

// New returns a Source backed by the OS filesystem and a clean HTTP client.
func New() *Source {
	c := cleanhttp.DefaultClient()
	c.Timeout = DefaultTimeout
	return &Source{Client: c, Fs: afero.NewOsFs()}
}

// IsRemote reports whether source is fetched over HTTP.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (s *Source) Fetch(ctx context.Context, source string) ([]byte, error) {
	if IsRemote(source) {
		return s.get(ctx, source)
	}
	p := source
	if strings.HasPrefix(source, "file://") {
		u, err := url.Parse(source)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "parse %s", source), ErrFetch)
		}
		p = u.Path
	}
	b, err := afero.ReadFile(s.Fs, p)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read %s", p), ErrFetch)
	}
	return b, nil
}

// get performs one GET. Redirects are followed by the client; a 302 that is
// still reported (redirects disabled by the caller's client) is accepted too.
func (s *Source) get(ctx context.Context, source string) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = cleanhttp.DefaultClient()
		client.Timeout = DefaultTimeout
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "create request for %s", source), ErrFetch)
	}
	log.Debug().Str("url", source).Msg("fetching document")
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "GET %s", source), ErrFetch)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusFound {
		return nil, errors.Mark(errors.Newf("GET %s: unexpected status %d", source, resp.StatusCode), ErrFetch)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read body of %s", source), ErrFetch)
	}
	return b, nil
}
