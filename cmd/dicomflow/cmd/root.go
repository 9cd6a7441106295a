package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitter-badger/dicom-streams/internal/logging"
	"github.com/gitter-badger/dicom-streams/internal/pipelineconfig"
)

// NewRoot builds the dicomflow command tree: parse, validate, modify,
// collect, each driving a dicom.FlowComposition, adapted from
// jpfielding-dicos.go/cmd/ctl/cmd/root.go's command tree and persistent
// --log-level flag.
func NewRoot(ctx context.Context) *cobra.Command {
	root := &cobra.Command{
		Use:   "dicomflow",
		Short: "stream-parse, validate, modify, and collect DICOM data",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
				level = slog.LevelInfo
			}
			slog.SetDefault(buildLogger(cmd, level))
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(cmd.UsageString())
		},
	}
	root.PersistentFlags().String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	root.PersistentFlags().String("log-file", "", "rotate structured logs to this file instead of stderr (falls back to the config's log.file)")
	root.PersistentFlags().Int("log-max-size-mb", 0, "max size in MB of a log file before it is rotated (0 uses the config's log.maxSizeMB, default 100)")
	root.PersistentFlags().Int("log-max-backups", 0, "max number of rotated log files to keep (0 uses the config's log.maxBackups, default 3)")
	root.PersistentFlags().String("config", "", "path to a pipelineconfig YAML file")

	root.AddCommand(
		NewParseCmd(ctx),
		NewValidateCmd(ctx),
		NewModifyCmd(ctx),
		NewCollectCmd(ctx),
	)
	return root
}

// buildLogger resolves the --log-file/--log-max-size-mb/--log-max-backups
// flags, falling back to the log section of --config, and returns either a
// stderr text logger or a lumberjack-backed rotating JSON logger.
func buildLogger(cmd *cobra.Command, level slog.Level) *slog.Logger {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := pipelineconfig.LoadConfig(configPath)
	if err != nil {
		cfg = pipelineconfig.DefaultConfig()
	}

	logFile, _ := cmd.Flags().GetString("log-file")
	if logFile == "" {
		logFile = cfg.Log.File
	}
	if logFile == "" {
		return logging.Logger(os.Stderr, false, level)
	}

	maxSizeMB, _ := cmd.Flags().GetInt("log-max-size-mb")
	if maxSizeMB == 0 {
		maxSizeMB = cfg.Log.MaxSizeMB
	}
	maxBackups, _ := cmd.Flags().GetInt("log-max-backups")
	if maxBackups == 0 {
		maxBackups = cfg.Log.MaxBackups
	}
	return logging.RotatingLogger(logFile, maxSizeMB, maxBackups, level)
}

// openInput resolves the "--file" flag, or failing that the first positional
// argument, to a reader: "-" or an empty value reads stdin, anything else
// opens the named file, mirroring
// jpfielding-dicos.go/cmd/ctl/cmd/root.go's decode command dispatch.
func openInput(cmd *cobra.Command) (io.ReadCloser, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" && len(cmd.Flags().Args()) > 0 {
		path = cmd.Flags().Args()[0]
	}
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dicomflow: opening %s: %w", path, err)
	}
	return f, nil
}
