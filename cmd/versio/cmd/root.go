// Package cmd provides the CLI commands for versio.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/versio/internal/config"
	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/logging"
	"github.com/Aman-CERP/versio/internal/output"
	"github.com/Aman-CERP/versio/internal/profiling"
	"github.com/Aman-CERP/versio/pkg/version"
)

// rootOptions holds the persistent flags and the resources started for one
// command run.
type rootOptions struct {
	debug     bool
	configDir string
	profile   profiling.Options

	session        *profiling.Session
	loggingCleanup func()
}

// NewRootCmd creates the root command for the versio CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "versio",
		Short: "Hybrid lexical and semantic scripture verse search",
		Long: `versio indexes a scripture corpus database and searches it by
BM25 keyword scoring, embedding similarity, or both.

  versio index --source scriptures.db   build the indexes
  versio search "faith hope charity"    query them`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("versio version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging (also mirrored to stderr)")
	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", ".", "Directory holding .versio.yaml and .env")
	cmd.PersistentFlags().StringVar(&opts.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return opts.start(cmd)
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return opts.stop()
	}

	cmd.AddCommand(newIndexCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())
	opts.cleanupOnError(cmd)

	return cmd
}

// cleanupOnError wraps every RunE below c. Cobra skips PersistentPostRunE
// when RunE fails, so a failed command logs the error and stops logging and
// profiling itself.
func (o *rootOptions) cleanupOnError(c *cobra.Command) {
	for _, sub := range c.Commands() {
		o.cleanupOnError(sub)
	}
	if c.RunE == nil {
		return
	}
	run := c.RunE
	c.RunE = func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil {
			attrs := append([]slog.Attr{slog.String("command", cmd.CommandPath())}, verrors.LogAttrs(err)...)
			slog.LogAttrs(cmd.Context(), slog.LevelError, "command_failed", attrs...)
			_ = o.stop()
		}
		return err
	}
}

// start loads .env, sets up logging and starts profiling.
func (o *rootOptions) start(_ *cobra.Command) error {
	if err := loadDotEnv(o.configDir); err != nil {
		return err
	}

	logger, cleanup, err := logging.Setup(o.loggingConfig())
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	o.loggingCleanup = cleanup
	slog.SetDefault(logger)

	if o.debug {
		slog.Debug("debug_logging_enabled",
			slog.String("version", version.Version),
			slog.String("config_dir", o.configDir))
	}

	if o.profile.Enabled() {
		session, err := profiling.Start(o.profile)
		if err != nil {
			_ = o.stop()
			return err
		}
		o.session = session
	}

	return nil
}

// stop ends profiling and flushes the log file.
func (o *rootOptions) stop() error {
	var err error
	if o.session != nil {
		slog.Debug("profiling_stopped", profiling.MemoryAttrs()...)
		err = o.session.Stop()
		o.session = nil
	}
	if o.loggingCleanup != nil {
		o.loggingCleanup()
		o.loggingCleanup = nil
	}
	return err
}

// loggingConfig derives the logging setup from the configuration. A config
// that fails to load leaves the defaults in place; the command reports the
// error itself.
func (o *rootOptions) loggingConfig() logging.Config {
	logCfg := logging.DefaultConfig()
	if cfg, err := config.Load(o.configDir); err == nil {
		logCfg.Level = cfg.Logging.Level
		if cfg.Logging.File != "" {
			logCfg.FilePath = cfg.Logging.File
		}
		logCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
		logCfg.MaxFiles = cfg.Logging.MaxFiles
	}
	if o.debug {
		logCfg.Level = "debug"
		logCfg.WriteToStderr = true
	}
	return logCfg
}

// loadConfig loads the layered configuration for the command.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configDir)
}

// loadDotEnv applies dir/.env without overriding variables already set.
func loadDotEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env: %w", err)
}

// Execute runs the root command and prints any error with its hint.
// SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		output.New(cmd.ErrOrStderr()).Err(err)
		return err
	}
	return nil
}
