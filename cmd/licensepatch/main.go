package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/venslabs/licensepatch/cmd/licensepatch/commands/cmdutil"
	"github.com/venslabs/licensepatch/cmd/licensepatch/commands/list"
	"github.com/venslabs/licensepatch/cmd/licensepatch/commands/patch"
	"github.com/venslabs/licensepatch/cmd/licensepatch/commands/rules"
	"github.com/venslabs/licensepatch/cmd/licensepatch/version"
	"github.com/venslabs/licensepatch/pkg/config"
	"github.com/venslabs/licensepatch/pkg/envutil"
	"github.com/venslabs/licensepatch/pkg/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("aborted")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "licensepatch",
		Short:         "Resolve and patch the licenses of CycloneDX SBOM components",
		Example:       patch.Example(),
		Version:       version.GetVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()

	// The debug flag value is determined by: CLI flag > LICENSEPATCH_DEBUG env var > default (false)
	flags.Bool(config.KeyDebug, envutil.Bool("DEBUG", false), "debug mode [$LICENSEPATCH_DEBUG]")
	flags.String(config.KeyLogFormat, envutil.String("LOG_FORMAT", logging.FormatConsole), "log format: console or json [$LICENSEPATCH_LOG_FORMAT]")
	flags.String("config", envutil.String("CONFIG", ""), "YAML configuration file [$LICENSEPATCH_CONFIG]")
	config.AddFlags(flags)

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		v, err := config.New(cmdutil.Fs, path)
		if err != nil {
			return err
		}
		c, err := config.Read(v, cmd.Flags())
		if err != nil {
			return err
		}
		if err := logging.Setup(c.Debug, c.LogFormat, os.Stderr); err != nil {
			return err
		}
		cmd.SetContext(cmdutil.WithConfig(cmd.Context(), c))
		return nil
	}

	cmd.AddCommand(
		list.New(),
		patch.New(),
		rules.New(),
	)

	return cmd
}
