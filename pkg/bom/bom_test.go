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

package bom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venslabs/licensepatch/pkg/license"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

func TestParseJSON(t *testing.T) {
	doc, err := Parse(context.Background(), readFixture(t, "bom.json"))
	require.NoError(t, err)

	assert.Equal(t, cdx.BOMFileFormatJSON, doc.Header.FileFormat)
	assert.Equal(t, cdx.SpecVersion1_4, doc.Header.SpecVersion)
	assert.Equal(t, "com.example.shop", doc.Asset.Name)
	assert.Equal(t, "2.1.0", doc.Asset.Version)

	require.Len(t, doc.Asset.Components, 4)
	alpha := doc.Asset.Components[0]
	assert.Equal(t, "org.example", alpha.Group)
	assert.Equal(t, "alpha", alpha.Name)
	assert.Equal(t, "https://github.com/example/alpha", alpha.URL, "vcs wins over website")
	assert.Equal(t, []license.License{
		license.Dynamic("EPL-1.0", ""),
		license.Dynamic("GNU Lesser General Public License", "http://www.gnu.org/licenses/lgpl.html"),
	}, alpha.Licenses)

	qrgen := doc.Asset.Components[1]
	assert.Equal(t, "https://github.com/kenglxn/QRGen", qrgen.URL)
	assert.Empty(t, qrgen.Licenses)

	bundled := doc.Asset.Components[2]
	assert.Equal(t, "bundled", bundled.Name, "nested components follow their parent")
	assert.Empty(t, bundled.PURL)
	assert.Equal(t, []license.License{
		license.Dynamic("The Apache Software License, Version 2.0", "https://www.apache.org/licenses/LICENSE-2.0.txt"),
	}, bundled.Licenses, "entries without id or name and expressions are dropped")

	assert.Equal(t, "left-pad", doc.Asset.Components[3].Name)
}

func TestParseXML(t *testing.T) {
	doc, err := Parse(context.Background(), readFixture(t, "bom.xml"))
	require.NoError(t, err)

	assert.Equal(t, cdx.BOMFileFormatXML, doc.Header.FileFormat)
	assert.Equal(t, cdx.SpecVersion1_4, doc.BOM.SpecVersion)
	assert.Equal(t, "shop", doc.Asset.Name)
	require.Len(t, doc.Asset.Components, 1)
	c := doc.Asset.Components[0]
	assert.Equal(t, "pkg:maven/org.example/alpha@1.0.0?type=jar", c.PURL)
	assert.Equal(t, "https://alpha.example.org", c.URL)
	assert.Equal(t, []license.License{license.Dynamic("GPL-2.0", "")}, c.Licenses)
}

func TestParseRejectsUnsupportedDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"spdx json", `{"spdxVersion": "SPDX-2.3", "bomFormat": "SPDX", "specVersion": "1.4"}`, ErrUnsupportedFormat},
		{"missing bomFormat", `{"specVersion": "1.4", "components": []}`, ErrUnsupportedFormat},
		{"not an object", `[1, 2]`, ErrUnsupportedFormat},
		{"future version", `{"bomFormat": "CycloneDX", "specVersion": "9.9", "components": []}`, ErrUnsupportedVersion},
		{"numeric version", `{"bomFormat": "CycloneDX", "specVersion": 1.4}`, ErrUnsupportedVersion},
		{"version before format", `{"specVersion": "0.9", "metadata": {"x": [1, {"y": 2}]}, "bomFormat": "CycloneDX"}`, ErrUnsupportedVersion},
		{"foreign xml", `<?xml version="1.0"?><project xmlns="http://maven.apache.org/POM/4.0.0"/>`, ErrUnsupportedFormat},
		{"xml future version", `<bom xmlns="http://cyclonedx.org/schema/bom/2.0" version="1"/>`, ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestReadHeaderSkipsUnrelatedFields(t *testing.T) {
	h, err := ReadHeader([]byte(`
  {"metadata": {"tools": [{"name": "x"}]}, "components": [{"a": [[]]}], "specVersion": "1.6", "bomFormat": "CycloneDX"}`))
	require.NoError(t, err)
	assert.Equal(t, cdx.SpecVersion1_6, h.SpecVersion)
	assert.Equal(t, cdx.BOMFileFormatJSON, h.FileFormat)
}

type fakeChecker map[string]bool

func (f fakeChecker) Available(_ context.Context, url string) bool { return f[url] }

func TestAvailabilityCheckFallsThrough(t *testing.T) {
	data := readFixture(t, "bom.json")

	doc, err := Parse(context.Background(), data, WithAvailabilityCheck(fakeChecker{
		"https://alpha.example.org": true,
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://alpha.example.org", doc.Asset.Components[0].URL)
	assert.Equal(t, "", doc.Asset.Components[1].URL)
}

func TestHTTPChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPChecker()
	ctx := context.Background()
	assert.True(t, c.Available(ctx, srv.URL+"/ok"))
	assert.False(t, c.Available(ctx, srv.URL+"/missing"))
	assert.False(t, c.Available(ctx, "http://127.0.0.1:1/unreachable"))
	assert.False(t, c.Available(ctx, "://bad"))
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "org.example.alpha", FullName("org.example", "alpha"))
	assert.Equal(t, "alpha", FullName("", "alpha"))
}
