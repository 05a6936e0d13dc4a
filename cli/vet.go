package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lunarspaceport/partforge/core/catalog"
	"github.com/lunarspaceport/partforge/runtime/vetting"
)

func newVetCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vet <parts-json>",
		Short: "Validate a flat part-record file into a consistent catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			path := args[0]
			records, err := catalog.ReadRecords(path)
			if err != nil {
				return err
			}

			cat, err := vetting.Vet(records)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			logger.Info("catalog is valid",
				zap.String("input", path),
				zap.Int("parts", cat.Len()),
				zap.Strings("roots", cat.Roots()))
			return nil
		},
	}
	return cmd
}
