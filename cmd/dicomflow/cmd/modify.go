package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitter-badger/dicom-streams/dicom"
	"github.com/gitter-badger/dicom-streams/internal/pipelineconfig"
)

// NewModifyCmd builds the "modify" subcommand: applies the
// TagModifications named in --config and writes the resulting byte stream
// to --out (default: stdout), by concatenating each emitted part's Bytes.
func NewModifyCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modify",
		Short: "apply configured tag replacements/insertions and re-emit the byte stream",
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
			modifyConfig, err := cfg.ModifyFlowConfig()
			if err != nil {
				return err
			}

			outPath, _ := cmd.Flags().GetString("out")
			var out io.Writer = os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			w := bufio.NewWriter(out)
			defer w.Flush()

			source := dicom.NewFlowFromReader(in, dicom.DefaultParseConfig).
				Modify(modifyConfig).
				Build()

			for {
				part, err := source.Next()
				if err != nil {
					if errors.Is(err, io.EOF) {
						break
					}
					return err
				}
				if _, err := w.Write(part.Bytes()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "DICOM file to modify (default: stdin)")
	cmd.Flags().StringP("out", "o", "", "output path (default: stdout)")
	return cmd
}
