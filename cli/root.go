// Package cli implements the partforge command line: compiling model text to
// part catalogs, extracting materials, vetting record files, and watching
// models for live recompilation.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lunarspaceport/partforge/config"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	namespace  string
	maxPasses  int
	strict     bool
	debug      bool
}

// NewRootCmd builds the partforge command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "partforge",
		Short:         "Compile part-model text into a validated part catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.namespace, "namespace", "", "Namespace for synthesized part ids")
	rootCmd.PersistentFlags().IntVar(&opts.maxPasses, "max-passes", 0, "Cap on attribute resolution passes")
	rootCmd.PersistentFlags().BoolVar(&opts.strict, "strict", false, "Fail when attributes remain unresolved")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug output")

	rootCmd.AddCommand(
		newConvertCmd(opts),
		newMaterialsCmd(opts),
		newVetCmd(opts),
		newWatchCmd(opts),
	)
	return rootCmd
}

// load resolves the effective configuration: file (or defaults), then flag
// overrides.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("namespace") {
		cfg.Namespace = o.namespace
	}
	if cmd.Flags().Changed("max-passes") {
		cfg.MaxPasses = o.maxPasses
	}
	if cmd.Flags().Changed("strict") {
		cfg.StrictUnresolved = o.strict
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// logger builds the CLI logger. Core packages never log; all operational
// output happens at this layer.
func (o *rootOptions) logger() (*zap.Logger, error) {
	if o.debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
