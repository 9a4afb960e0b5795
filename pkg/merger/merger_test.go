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

package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venslabs/licensepatch/pkg/api/types"
	"github.com/venslabs/licensepatch/pkg/license"
)

func sample() []types.ComponentData {
	return []types.ComponentData{
		{
			Name: "Netty", Version: "4.1.0", URL: "https://netty.io", PURL: "pkg:maven/io.netty/netty-codec@4.1.0",
			Licenses:           []license.License{license.Dynamic("Apache-2.0", "")},
			AttributionNotices: []string{"netty"},
		},
		{Name: "zlib", Licenses: []license.License{license.Dynamic("Zlib", "")}, AttributionNotices: []string{}},
		{
			Name: "Netty", Version: "4.1.1", URL: "https://other", PURL: "pkg:maven/io.netty/netty-buffer@4.1.1",
			Licenses: []license.License{
				license.Dynamic("Apache-2.0", ""),
				license.Dynamic("Apache-2.0", "https://www.apache.org/licenses/LICENSE-2.0"),
				license.Dynamic("MIT", ""),
			},
			AttributionNotices: []string{"buffer", "netty"},
		},
		{Name: "alpha", Licenses: []license.License{}},
		{Name: "Alpha", Licenses: []license.License{}},
	}
}

func TestMerge(t *testing.T) {
	out := Merge(sample())
	require.Len(t, out, 4)

	names := []string{}
	for _, c := range out {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Alpha", "alpha", "Netty", "zlib"}, names)

	netty := out[2]
	assert.Equal(t, "4.1.0", netty.Version)
	assert.Equal(t, "https://netty.io", netty.URL)
	assert.Equal(t, []license.License{
		license.Dynamic("Apache-2.0", ""),
		license.Dynamic("Apache-2.0", "https://www.apache.org/licenses/LICENSE-2.0"),
		license.Dynamic("MIT", ""),
	}, netty.Licenses)
	assert.Equal(t, []string{"buffer", "netty"}, netty.AttributionNotices)
}

func TestMergeIsIdempotent(t *testing.T) {
	once := Merge(sample())
	assert.Equal(t, once, Merge(once))
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, Merge(nil))
}
