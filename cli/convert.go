package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lunarspaceport/partforge/config"
	"github.com/lunarspaceport/partforge/core/catalog"
	"github.com/lunarspaceport/partforge/runtime"
)

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <model-file> [model-file...]",
		Short: "Compile model files into flat part-record JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if output != "" && len(args) > 1 {
				return fmt.Errorf("--output is only valid with a single input file")
			}

			// Each file compiles independently; fan out and fail on the
			// first error.
			g, _ := errgroup.WithContext(cmd.Context())
			for _, path := range args {
				path := path
				g.Go(func() error {
					return convertFile(path, output, cfg, logger)
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (single input only; default <input>.json)")
	return cmd
}

func convertFile(path, output string, cfg config.Config, logger *zap.Logger) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	result, err := runtime.Compile(string(source), runtime.Options{
		Namespace:        cfg.Namespace,
		MaxPasses:        cfg.MaxPasses,
		StrictUnresolved: cfg.StrictUnresolved,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, attr := range result.Unresolved {
		logger.Warn("attribute left unresolved",
			zap.String("file", path),
			zap.String("attribute", attr))
	}

	if output == "" {
		output = replaceExt(path, ".json")
	}
	if err := catalog.WriteRecords(output, result.Records); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	logger.Info("converted",
		zap.String("input", path),
		zap.String("output", output),
		zap.Int("parts", len(result.Records)),
		zap.Int("passes", result.Passes))
	return nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
