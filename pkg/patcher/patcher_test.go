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

package patcher

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venslabs/licensepatch/pkg/api/types"
	"github.com/venslabs/licensepatch/pkg/bom"
	"github.com/venslabs/licensepatch/pkg/license"
)

func parseFixture(t *testing.T, name string) *bom.Document {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	doc, err := bom.Parse(context.Background(), b)
	require.NoError(t, err)
	return doc
}

func decode(t *testing.T, data []byte, f cdx.BOMFileFormat) []*cdx.Component {
	t.Helper()
	var b cdx.BOM
	require.NoError(t, cdx.NewBOMDecoder(bytes.NewReader(data), f).Decode(&b))
	return bom.Flatten(&b)
}

func TestPatchNoRulesIsUnchanged(t *testing.T) {
	doc := parseFixture(t, "bom.json")

	res, err := Patch(doc, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, 0, res.Patched)

	var buf bytes.Buffer
	_, err = res.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.Raw, buf.Bytes())

	again, err := Patch(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, res.Data, again.Data, "serialization is deterministic")
}

func TestPatchIdenticalLicensesIsUnchanged(t *testing.T) {
	doc := parseFixture(t, "bom.json")

	res, err := Patch(doc, []types.ComponentData{{
		Name:     "left-pad",
		PURL:     "pkg:npm/left-pad@1.3.0",
		Licenses: []license.License{license.Dynamic("WTFPL", "")},
	}})
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestPatchRewritesMatchedComponentsOnly(t *testing.T) {
	doc := parseFixture(t, "bom.json")

	res, err := Patch(doc, []types.ComponentData{
		{
			Name:     "org.example.alpha",
			PURL:     "pkg:maven/org.example/alpha@1.0.0?type=jar",
			Licenses: []license.License{license.Dynamic("EPL-1.0", "")},
		},
		{
			Name:     "duplicate purl is ignored",
			PURL:     "pkg:maven/org.example/alpha@1.0.0?type=jar",
			Licenses: []license.License{license.Dynamic("MIT", "")},
		},
		{
			Name:     "com.github.kenglxn.qrgen.core",
			PURL:     "pkg:maven/com.github.kenglxn.qrgen/core@2.6.0?type=jar",
			Licenses: []license.License{license.Dynamic("Apache-2.0", "https://www.apache.org/licenses/LICENSE-2.0")},
		},
		{
			Name:     "left-pad",
			PURL:     "pkg:npm/left-pad@1.3.0",
			Licenses: []license.License{},
		},
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 3, res.Patched)

	comps := decode(t, res.Data, cdx.BOMFileFormatJSON)
	require.Len(t, comps, 4)

	require.NotNil(t, comps[0].Licenses)
	assert.Equal(t, cdx.Licenses{{License: &cdx.License{ID: "EPL-1.0"}}}, *comps[0].Licenses)

	require.NotNil(t, comps[1].Licenses)
	assert.Equal(t, cdx.Licenses{{License: &cdx.License{ID: "Apache-2.0", URL: "https://www.apache.org/licenses/LICENSE-2.0"}}}, *comps[1].Licenses)

	// No purl: left alone.
	require.NotNil(t, comps[2].Licenses)
	require.NotEmpty(t, *comps[2].Licenses)
	assert.Equal(t, "The Apache Software License, Version 2.0", (*comps[2].Licenses)[0].License.Name)

	// Matched without a valid license: nothing unvalidated is written back.
	assert.Nil(t, comps[3].Licenses)
	assert.NotContains(t, string(res.Data), "WTFPL")

	orig := bom.Flatten(doc.BOM)
	assert.Len(t, *orig[0].Licenses, 2, "input document is not mutated")
}

func TestPatchUnmatchedComponentKeepsLicenses(t *testing.T) {
	doc := parseFixture(t, "bom.json")

	res, err := Patch(doc, []types.ComponentData{{
		PURL:     "pkg:maven/org.example/alpha@1.0.0?type=jar",
		Licenses: []license.License{license.Dynamic("EPL-1.0", "")},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Patched)

	comps := decode(t, res.Data, cdx.BOMFileFormatJSON)
	require.Len(t, comps, 4)
	require.NotNil(t, comps[3].Licenses)
	assert.Equal(t, "WTFPL", (*comps[3].Licenses)[0].License.ID)
}

func TestPatchXML(t *testing.T) {
	doc := parseFixture(t, "bom.xml")

	res, err := Patch(doc, []types.ComponentData{{
		PURL:     "pkg:maven/org.example/alpha@1.0.0?type=jar",
		Licenses: []license.License{license.Dynamic("GPL-2.0-only", "")},
	}})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Contains(t, string(res.Data), `xmlns="http://cyclonedx.org/schema/bom/1.4"`)

	comps := decode(t, res.Data, cdx.BOMFileFormatXML)
	require.Len(t, comps, 1)
	assert.Equal(t, "GPL-2.0-only", (*comps[0].Licenses)[0].License.ID)

	var buf bytes.Buffer
	_, err = res.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, res.Data, buf.Bytes())
}
