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

// Package cmdutil holds what the subcommands share: the resolved
// configuration and engine loading.
package cmdutil

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/venslabs/licensepatch/pkg/config"
	"github.com/venslabs/licensepatch/pkg/engine"
	"github.com/venslabs/licensepatch/pkg/fetch"
)

type configKey struct{}

// WithConfig stores c for the subcommands.
func WithConfig(ctx context.Context, c *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, c)
}

// ConfigFrom returns the configuration stored by the root command.
func ConfigFrom(ctx context.Context) (*config.Config, error) {
	c, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok || c == nil {
		return nil, errors.New("configuration not initialized")
	}
	return c, nil
}

// Fs is the filesystem BOM files are read from and written to.
var Fs = afero.NewOsFs()

// LoadEngine loads every table named by the configuration. Nothing is
// processed when this fails.
func LoadEngine(cmd *cobra.Command) (*engine.Engine, error) {
	ctx := cmd.Context()
	c, err := ConfigFrom(ctx)
	if err != nil {
		return nil, err
	}
	e, err := engine.Load(ctx, c.EngineOptions(), &fetch.Source{Client: fetch.New().Client, Fs: Fs})
	if err != nil {
		return nil, errors.Wrap(err, "load license configuration")
	}
	return e, nil
}

// ReadBOM reads the BOM file named by path.
func ReadBOM(path string) ([]byte, error) {
	b, err := afero.ReadFile(Fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read BOM file")
	}
	return b, nil
}
