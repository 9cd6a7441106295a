package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitter-badger/dicom-streams/dicom"
	"github.com/gitter-badger/dicom-streams/internal/pipelineconfig"
)

// NewCollectCmd builds the "collect" subcommand: harvests the tags named in
// --config (or --tag, repeatable) and prints every CollectedElementsPart as
// a line of JSON, matching jpfielding-dicos.go's analyze/decode
// "also JSON serializable out of the box" convention.
func NewCollectCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "harvest configured elements from a DICOM stream and print them as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd)
			if err != nil {
				return err
			}
			defer in.Close()

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := pipelineconfig.LoadConfig(configPath)
			if err != nil {
				return err
			}

			tagFlags, _ := cmd.Flags().GetStringSlice("tag")
			for _, t := range tagFlags {
				cfg.Collect.Tags = append(cfg.Collect.Tags, t)
			}
			collectConfig, err := cfg.CollectFlowConfig()
			if err != nil {
				return err
			}

			source := dicom.NewFlowFromReader(in, dicom.DefaultParseConfig).
				Collect(collectConfig).
				Build()

			enc := json.NewEncoder(os.Stdout)
			for {
				part, err := source.Next()
				if err != nil {
					if errors.Is(err, io.EOF) {
						break
					}
					return err
				}
				if collected, ok := part.(dicom.CollectedElementsPart); ok {
					if err := enc.Encode(collected); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "DICOM file to collect from (default: stdin)")
	cmd.Flags().StringSlice("tag", nil, "tag path to collect (GGGG,EEEE), repeatable; adds to --config's collect.tags")
	return cmd
}
