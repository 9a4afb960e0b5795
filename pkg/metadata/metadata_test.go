package metadata

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venslabs/licensepatch/pkg/fetch"
	"github.com/venslabs/licensepatch/pkg/relaxed"
)

func TestRuleMatches(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		group string
		cname string
		purl  string
		want  bool
	}{
		{"empty rule matches all", Rule{}, "g", "n", "", true},
		{"group full match", Rule{GroupMatch: "org\\.acme"}, "org.acme", "x", "", true},
		{"group is anchored", Rule{GroupMatch: "org\\.acme"}, "org.acme.sub", "x", "", false},
		{"alternation is anchored as a whole", Rule{NameMatch: "a|b"}, "", "ab", "", false},
		{"name and group both required", Rule{GroupMatch: "g", NameMatch: "n.*"}, "g", "other", "", false},
		{"purl pattern", Rule{PURLMatch: "pkg:npm/.*"}, "", "lodash", "pkg:npm/lodash@4", true},
		{"purl pattern needs a purl", Rule{PURLMatch: ".*"}, "", "lodash", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := New([]Rule{tt.rule})
			require.NoError(t, err)
			_, ok := rs.FindMatch(tt.group, tt.cname, tt.purl)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestFindMatchFirstWins(t *testing.T) {
	rs, err := Parse([]byte(`[
  {nameMatch: 'netty-.*', mappedName: 'Netty', licenses: ['Apache-2.0'],},
  {nameMatch: 'netty-codec', mappedName: 'Codec', ignore: true},
  // catch-all
  {comment: 'everything else'},
]`))
	require.NoError(t, err)
	assert.Equal(t, 3, rs.Len())

	r, ok := rs.FindMatch("io.netty", "netty-codec", "")
	require.True(t, ok)
	assert.Equal(t, "Netty", r.MappedName)
	assert.False(t, r.Ignore)
	assert.Equal(t, []string{"Apache-2.0"}, r.Licenses)

	r, ok = rs.FindMatch("x", "y", "")
	require.True(t, ok)
	assert.Equal(t, "everything else", r.Comment)
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/meta.yml", []byte(`
- groupMatch: com\.acme
  ignore: true
`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/broken.json", []byte(`[{nameMatch: "("}]`), 0o644))
	f := &fetch.Source{Fs: fs}

	rs, err := Load(context.Background(), f, "/meta.yml")
	require.NoError(t, err)
	r, ok := rs.FindMatch("com.acme", "anything", "")
	require.True(t, ok)
	assert.True(t, r.Ignore)

	_, err = Load(context.Background(), f, "/broken.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, relaxed.ErrMalformed))

	empty, err := Load(context.Background(), f, "")
	require.NoError(t, err)
	_, ok = empty.FindMatch("a", "b", "")
	assert.False(t, ok)
}
