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

package rules

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/venslabs/licensepatch/cmd/licensepatch/commands/cmdutil"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the license configuration",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(newValidate(), newShow())
	return cmd
}

func newValidate() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load every table and check the patch rules against the SPDX license list",
		Example: `  licensepatch rules validate --rules rules.json --metadata metadata.json5
  licensepatch rules validate --spdx-source https://spdx.org/licenses/licenses.json`,
		Args: cobra.NoArgs,
		RunE: validateAction,
	}
}

func validateAction(cmd *cobra.Command, args []string) error {
	e, err := cmdutil.LoadEngine(cmd)
	if err != nil {
		return err
	}
	t := e.Tables()
	d := t.PatchRules.Document()
	fmt.Fprintf(cmd.OutOrStdout(), "OK: SPDX license list %s (%d ids), %d id / %d name / %d url / %d purl patch rules, %d metadata rules, %d catalog entries, %d aliases\n",
		t.Authority.Version(), t.Authority.Len(),
		len(d.IDPatchRules), len(d.NamePatchRules), len(d.URLMappingRules), len(d.PURLMappingRules),
		t.Metadata.Len(), t.Catalog.Len(), t.Aliases.Len())
	return nil
}

func newShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective patch rules as JSON",
		Args:  cobra.NoArgs,
		RunE:  showAction,
	}
}

func showAction(cmd *cobra.Command, args []string) error {
	e, err := cmdutil.LoadEngine(cmd)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(e.Tables().PatchRules.Document())
}
