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

package patch

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/venslabs/licensepatch/cmd/licensepatch/commands/cmdutil"
)

// ErrChanged is returned with --fail-on-change when the BOM was patched.
var ErrChanged = errors.New("BOM licenses were patched")

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch [flags] BOM_FILE [OUTPUT_FILE]",
		Short: "Rewrite the component licenses of a CycloneDX SBOM",
		Long: `Rewrite the license field of every component whose package URL resolves to at least one SPDX license identifier.
Components without a package URL, or without a valid resolved license, are left untouched.
The output keeps the input format and spec version. Without OUTPUT_FILE, or with "-", the BOM is written to stdout.`,
		Example:               Example(),
		Args:                  cobra.RangeArgs(1, 2),
		RunE:                  action,
		DisableFlagsInUseLine: true,
	}

	flags := cmd.Flags()
	flags.Bool("fail-on-change", false, "exit with a non-zero status when the BOM was changed")

	return cmd
}

func Example() string {
	exe := "licensepatch"
	return fmt.Sprintf(`  # Patch with the bundled rules and SPDX list
  %s patch bom.cdx.json bom.patched.cdx.json

  # Use curated tables and fail a CI step when licenses needed fixing
  %s patch --rules rules.json --catalog catalog.yaml --fail-on-change bom.cdx.json -
`, exe, exe)
}

func action(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	failOnChange, err := flags.GetBool("fail-on-change")
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
	res, err := e.PatchBOM(ctx, data)
	if err != nil {
		return errors.Wrapf(err, "failed to patch %s", args[0])
	}

	outputPath := "-"
	if len(args) > 1 {
		outputPath = args[1]
	}
	if outputPath == "-" {
		if _, err := res.WriteTo(cmd.OutOrStdout()); err != nil {
			return errors.Wrap(err, "failed to write BOM")
		}
	} else {
		f, err := cmdutil.Fs.OpenFile(outputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.Wrap(err, "failed to create output file")
		}
		if _, err := res.WriteTo(f); err != nil {
			_ = f.Close()
			return errors.Wrap(err, "failed to write output file")
		}
		if err := f.Close(); err != nil {
			return errors.Wrap(err, "failed to write output file")
		}
		log.Info().Str("output", outputPath).Msg("BOM written")
	}

	if !res.Changed {
		fmt.Fprintln(cmd.ErrOrStderr(), "no changes made")
		return nil
	}
	log.Info().Int("components", res.Patched).Msg("patched component licenses")
	if failOnChange {
		return ErrChanged
	}
	return nil
}
