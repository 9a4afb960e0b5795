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

// Package license holds the license value type and the operator-configured
// license tables (catalog and alias mapping).
package license

// License is a single license attached to a component.
//
// Name is either an SPDX license identifier or a free-text display name.
// Two licenses are the same license only if all four fields are equal, so the
// same name with a different URL is kept as a distinct entry.
type License struct {
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	// Configured is true when the license comes from the operator catalog and
	// false when it was read from the BOM.
	Configured bool `json:"configured"`
}

// Dynamic returns a license as declared in a BOM.
func Dynamic(name, url string) License {
	return License{Name: name, URL: url}
}

// WithName returns a copy of l carrying another name.
func (l License) WithName(name string) License {
	l.Name = name
	return l
}

// Kind tells whether a license name is an SPDX identifier or free text.
type Kind int

const (
	KindFreeText Kind = iota
	KindSPDXID
)

func (k Kind) String() string {
	switch k {
	case KindSPDXID:
		return "spdx-id"
	default:
		return "free-text"
	}
}

// Ref is a license name tagged with its kind.
type Ref struct {
	Name string
	Kind Kind
}

// IsSPDX reports whether the reference is a recognized SPDX identifier.
func (r Ref) IsSPDX() bool { return r.Kind == KindSPDXID }
