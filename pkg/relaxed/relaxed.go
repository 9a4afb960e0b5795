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

// Package relaxed decodes hand-edited configuration documents.
//
// YAML sources (".yaml", ".yml") are decoded with go.yaml.in/yaml/v3. Every
// other source is decoded as JSON5, which accepts the following deviations
// from strict JSON:
//
//   - line comments (// ...) and block comments (/* ... */)
//   - unquoted object keys that are valid identifiers
//   - single-quoted strings
//   - trailing commas in objects and arrays
//   - hexadecimal numbers, leading or trailing decimal points, a leading '+'
//
// Strict JSON is a subset of both, so plain JSON documents always decode.
// Struct fields are matched through their `json` tags for JSON5 and their
// `yaml` tags for YAML.
package relaxed

import (
	"net/url"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/titanous/json5"
	"go.yaml.in/yaml/v3"
)

// ErrMalformed marks a configuration document that could not be decoded.
var ErrMalformed = errors.New("malformed configuration document")

// Syntax is the document syntax chosen for a source.
type Syntax int

const (
	SyntaxJSON5 Syntax = iota
	SyntaxYAML
)

// SyntaxFor picks the syntax from the extension of a file path or URL path.
func SyntaxFor(source string) Syntax {
	p := source
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return SyntaxYAML
	default:
		return SyntaxJSON5
	}
}

// Decode decodes data read from source into v.
func Decode(source string, data []byte, v any) error {
	var err error
	switch SyntaxFor(source) {
	case SyntaxYAML:
		err = yaml.Unmarshal(data, v)
	default:
		err = json5.Unmarshal(data, v)
	}
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "decode %s", source), ErrMalformed)
	}
	return nil
}
