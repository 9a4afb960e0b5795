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

package list

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/venslabs/licensepatch/cmd/licensepatch/commands/cmdutil"
	"github.com/venslabs/licensepatch/pkg/outputhandler"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "list [flags] BOM_FILE",
		Short:                 "List the resolved components of a CycloneDX SBOM",
		Long:                  "List every component of a CycloneDX SBOM with its canonicalized licenses. Components sharing a mapped name are merged. Licenses that are not SPDX identifiers are kept.",
		Example:               Example(),
		Args:                  cobra.ExactArgs(1),
		RunE:                  action,
		DisableFlagsInUseLine: true,
	}

	flags := cmd.Flags()
	flags.String("output-format", outputhandler.FormatTable, fmt.Sprintf("output format (%s)", strings.Join(outputhandler.Formats, ", ")))

	return cmd
}

func Example() string {
	exe := "licensepatch"
	return fmt.Sprintf(`  # Table of components and licenses
  %s list bom.cdx.json

  # Resolved component list for a manifest renderer
  %s list --metadata metadata.json5 --catalog catalog.yaml --output-format json bom.cdx.json > components.json
`, exe, exe)
}

func action(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	format, err := flags.GetString("output-format")
	if err != nil {
		return err
	}
	h, err := outputhandler.New(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	e, err := cmdutil.LoadEngine(cmd)
	if err != nil {
		return err
	}
	data, err := cmdutil.ReadBOM(args[0])
	if err != nil {
		return err
	}
	components, err := e.ListComponents(ctx, data)
	if err != nil {
		return errors.Wrapf(err, "failed to list components of %s", args[0])
	}
	if err := h.HandleComponents(components); err != nil {
		return err
	}
	return h.Close()
}
