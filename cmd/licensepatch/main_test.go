package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venslabs/licensepatch/cmd/licensepatch/commands/cmdutil"
	"github.com/venslabs/licensepatch/cmd/licensepatch/commands/patch"
	"github.com/venslabs/licensepatch/pkg/api/types"
	"github.com/venslabs/licensepatch/pkg/bom"
	"github.com/venslabs/licensepatch/pkg/patchrules"
)

const testBOM = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.5",
  "version": 1,
  "components": [
    {"type": "library", "name": "qrgen", "purl": "pkg:maven/com.github.kenglxn.qrgen/core@2.6.0?type=jar"},
    {"type": "library", "name": "x", "purl": "pkg:npm/x@1", "licenses": [{"license": {"id": "MIT"}}]}
  ]
}`

const cleanBOM = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.5",
  "version": 1,
  "components": [
    {"type": "library", "name": "x", "purl": "pkg:npm/x@1", "licenses": [{"license": {"id": "MIT"}}]}
  ]
}`

func run(t *testing.T, files map[string]string, args ...string) (stdout, stderr string, fs afero.Fs, err error) {
	t.Helper()
	fs = afero.NewMemMapFs()
	for p, c := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(c), 0o644))
	}
	orig := cmdutil.Fs
	cmdutil.Fs = fs
	t.Cleanup(func() { cmdutil.Fs = orig })

	var outBuf, errBuf bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	err = cmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), fs, err
}

func TestListJSON(t *testing.T) {
	out, _, _, err := run(t, map[string]string{"/bom.json": testBOM}, "list", "--output-format", "json", "/bom.json")
	require.NoError(t, err)

	var got []types.ComponentData
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "qrgen", got[0].Name)
	assert.Equal(t, "Apache-2.0", got[0].Licenses[0].Name)
}

func TestPatchToFile(t *testing.T) {
	_, stderr, fs, err := run(t, map[string]string{"/bom.json": testBOM}, "patch", "/bom.json", "/out.json")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "no changes made")

	data, err := afero.ReadFile(fs, "/out.json")
	require.NoError(t, err)
	doc, err := bom.Parse(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, doc.Asset.Components[0].Licenses, 1)
	assert.Equal(t, "Apache-2.0", doc.Asset.Components[0].Licenses[0].Name)
}

func TestPatchNoChanges(t *testing.T) {
	out, stderr, _, err := run(t, map[string]string{"/bom.json": cleanBOM}, "patch", "--fail-on-change", "/bom.json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "no changes made")
	assert.Equal(t, cleanBOM, out)
}

func TestPatchFailOnChange(t *testing.T) {
	_, _, _, err := run(t, map[string]string{"/bom.json": testBOM}, "patch", "--fail-on-change", "/bom.json", "-")
	require.Error(t, err)
	assert.True(t, errors.Is(err, patch.ErrChanged))
}

func TestPatchAbortsOnUnsupportedBOM(t *testing.T) {
	_, _, _, err := run(t, map[string]string{"/bom.json": `{"bomFormat": "SPDX", "specVersion": "1.5"}`}, "patch", "/bom.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, bom.ErrUnsupportedFormat))
}

func TestRulesValidate(t *testing.T) {
	out, _, _, err := run(t, nil, "rules", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: SPDX license list")

	_, _, _, err = run(t, map[string]string{"/rules.json": `{namePatchRules: [{match: "a", resolved: "Not A Name"}]}`},
		"rules", "validate", "--rules", "/rules.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, patchrules.ErrUnsupportedSpdxName))
}

func TestRulesShow(t *testing.T) {
	out, _, _, err := run(t, nil, "rules", "show")
	require.NoError(t, err)

	var doc patchrules.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotEmpty(t, doc.PURLMappingRules)
}

func TestConfigFile(t *testing.T) {
	out, _, _, err := run(t, map[string]string{
		"/bom.json":  testBOM,
		"/cfg.yaml":  "metadata: /meta.json\n",
		"/meta.json": `[{nameMatch: "qrgen", ignore: true}]`,
	}, "list", "--config", "/cfg.yaml", "--output-format", "json", "/bom.json")
	require.NoError(t, err)

	var got []types.ComponentData
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Name)
}
