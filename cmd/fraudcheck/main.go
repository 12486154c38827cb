package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fraudcheck"
	"fraudcheck/internal/config"
	"fraudcheck/internal/observability"
)

var version = "dev"

// app carries what the commands share once configuration is loaded.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "fraudcheck",
		Short: "Flag postcodes submitting fraudulent loan applications",
		Long: `fraudcheck flags postcodes whose loan applications, summed within a 24 hour
window, exceed a threshold. Run it as an HTTP service or against a single request file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./fraudcheck.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("window-policy", string(fraudcheck.WindowElapsed), "day difference policy (elapsed, calendar)")
	rootCmd.PersistentFlags().String("classifier", string(fraudcheck.KindSequential), "classifier (sequential, worker, fanout)")
	rootCmd.PersistentFlags().Int("workers", 4, "workers for the worker and fanout classifiers")

	// Bind flags to viper
	_ = a.v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = a.v.BindPFlag("window.policy", rootCmd.PersistentFlags().Lookup("window-policy"))
	_ = a.v.BindPFlag("classifier.kind", rootCmd.PersistentFlags().Lookup("classifier"))
	_ = a.v.BindPFlag("classifier.workers", rootCmd.PersistentFlags().Lookup("workers"))

	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(a.checkCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.ReadFile(a.v, a.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	a.logger = observability.InitLogger(cmd.ErrOrStderr(), observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	return nil
}

func (a *app) classifier() (fraudcheck.Classifier, error) {
	return fraudcheck.NewClassifier(a.cfg.Classifier.Kind, a.cfg.Window, a.cfg.Classifier.Workers)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "fraudcheck", version)
		},
	}
}
