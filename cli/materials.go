package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lunarspaceport/partforge/core/catalog"
	"github.com/lunarspaceport/partforge/runtime"
)

func newMaterialsCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "materials <model-file>",
		Short: "Extract material definitions from a model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			path := args[0]
			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			materials, err := runtime.Materials(string(source))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if output == "" {
				output = replaceExt(path, ".materials.json")
			}
			if err := catalog.WriteMaterials(output, materials); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			logger.Info("extracted materials",
				zap.String("input", path),
				zap.String("output", output),
				zap.Int("materials", len(materials)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default <input>.materials.json)")
	return cmd
}
