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

// Package config resolves the CLI configuration from flags, environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/venslabs/licensepatch/pkg/engine"
	"github.com/venslabs/licensepatch/pkg/logging"
)

// EnvPrefix is the prefix of environment variables, e.g. LICENSEPATCH_SPDX_SOURCE.
const EnvPrefix = "licensepatch"

const (
	KeyMetadata    = "metadata"
	KeyCatalog     = "catalog"
	KeyAliases     = "aliases"
	KeyRules       = "rules"
	KeySPDXSource  = "spdx-source"
	KeyCheckURLs   = "check-urls"
	KeyConcurrency = "concurrency"
	KeyLogFormat   = "log-format"
	KeyDebug       = "debug"
)

// Config represents the structure of the configuration file.
//
// Example YAML:
//
//	metadata: ./licenses/metadata.json5
//	catalog: ./licenses/catalog.yaml
//	aliases: ./licenses/aliases.json
//	rules: https://example.com/license-patch-rules.json
//	spdx-source: https://spdx.org/licenses/licenses.json
//	check-urls: false
//	concurrency: 8
//	log-format: console
type Config struct {
	Metadata    string `mapstructure:"metadata"`
	Catalog     string `mapstructure:"catalog"`
	Aliases     string `mapstructure:"aliases"`
	Rules       string `mapstructure:"rules"`
	SPDXSource  string `mapstructure:"spdx-source"`
	CheckURLs   bool   `mapstructure:"check-urls"`
	Concurrency int    `mapstructure:"concurrency"`
	LogFormat   string `mapstructure:"log-format"`
	Debug       bool   `mapstructure:"debug"`
}

// AddFlags registers the shared engine flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(KeyMetadata, "", "component metadata rules (file path or URL, JSON5 or YAML)")
	fs.String(KeyCatalog, "", "license catalog (file path or URL, JSON5 or YAML)")
	fs.String(KeyAliases, "", "license alias mapping (file path or URL, JSON5 or YAML)")
	fs.String(KeyRules, "", "license patch rules (file path or URL); bundled rules when empty")
	fs.String(KeySPDXSource, "", "SPDX license list (file path or URL); bundled snapshot when empty")
	fs.Bool(KeyCheckURLs, false, "only keep component URLs that answer a GET with 200")
	fs.Int(KeyConcurrency, 8, "number of components mapped in parallel")
}

// New returns a viper instance reading $LICENSEPATCH_* variables and, when
// path is set, the YAML file at path on fs.
func New(fs afero.Fs, path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyConcurrency, 8)
	v.SetDefault(KeyLogFormat, logging.FormatConsole)

	path = strings.TrimSpace(path)
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	log.Debug().Str("configfile", v.ConfigFileUsed()).Msg("loaded config file")
	return v, nil
}

// Read binds fs (flags override every other source) and decodes the result.
func Read(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, errors.Wrap(err, "bind flags")
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unable to decode into config struct")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return errors.Newf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch c.LogFormat {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return errors.Newf("log-format must be %s or %s, got %q", logging.FormatConsole, logging.FormatJSON, c.LogFormat)
	}
	return nil
}

// EngineOptions maps the configuration onto the engine sources.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		MetadataSource: c.Metadata,
		CatalogSource:  c.Catalog,
		AliasSource:    c.Aliases,
		RulesSource:    c.Rules,
		SPDXSource:     c.SPDXSource,
		CheckURLs:      c.CheckURLs,
		Concurrency:    c.Concurrency,
	}
}
