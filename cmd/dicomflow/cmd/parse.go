package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gitter-badger/dicom-streams/dicom"
)

// NewParseCmd builds the "parse" subcommand: stream-parses the input and
// prints a per-part-kind tally, exercising dicom.FlowComposition with no
// stages attached beyond ParseStage itself.
func NewParseCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "stream-parse a DICOM file and summarize the parts it contains",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd)
			if err != nil {
				return err
			}
			defer in.Close()

			config := dicom.DefaultParseConfig
			if bigEndian, _ := cmd.Flags().GetBool("assume-big-endian"); bigEndian {
				config.AssumeBigEndian = true
			}
			source := dicom.NewFlowFromReader(in, config).Build()

			tally := map[string]int{}
			var total int
			for {
				part, err := source.Next()
				if err != nil {
					if !errors.Is(err, io.EOF) {
						return err
					}
					break
				}
				tally[partKind(part)]++
				total++
			}

			fmt.Printf("Total parts: %d\n", total)
			for kind, n := range tally {
				fmt.Printf("  %-28s %d\n", kind, n)
			}
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "DICOM file to parse (default: stdin)")
	cmd.Flags().Bool("assume-big-endian", false, "assume big-endian for a preamble-less input")
	return cmd
}

func partKind(p dicom.DicomPart) string {
	switch p.(type) {
	case dicom.PreamblePart:
		return "PreamblePart"
	case dicom.HeaderPart:
		return "HeaderPart"
	case dicom.ValueChunkPart:
		return "ValueChunkPart"
	case dicom.SequencePart:
		return "SequencePart"
	case dicom.SequenceDelimitationPart:
		return "SequenceDelimitationPart"
	case dicom.ItemPart:
		return "ItemPart"
	case dicom.ItemDelimitationPart:
		return "ItemDelimitationPart"
	case dicom.FragmentsPart:
		return "FragmentsPart"
	case dicom.DeflatedChunk:
		return "DeflatedChunk"
	case dicom.UnknownPart:
		return "UnknownPart"
	case dicom.CollectedElementsPart:
		return "CollectedElementsPart"
	default:
		return "unknown"
	}
}
