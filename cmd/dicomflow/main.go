// Command dicomflow drives a dicom.FlowComposition from the command line
// against a file or stdin, adapted from jpfielding-dicos.go/cmd/ctl/main.go.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gitter-badger/dicom-streams/cmd/dicomflow/cmd"
	"github.com/gitter-badger/dicom-streams/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.SetDefault(logging.Logger(os.Stdout, false, slog.LevelInfo))

	if err := cmd.NewRoot(ctx).Execute(); err != nil {
		os.Exit(1)
	}
}
