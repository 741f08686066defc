package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/desktop-runner/internal/config"
	"github.com/mj1618/desktop-runner/internal/observability"
	"github.com/mj1618/desktop-runner/internal/output"
	"github.com/mj1618/desktop-runner/internal/session"
	"github.com/mj1618/desktop-runner/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "desktop-runner",
	Short: "Run scripted steps against desktop UI elements",
	Long: `Run step files that locate desktop UI elements through the accessibility
tree, template images, OCR or screen coordinates, and act on them. A failed
step is retried once under a shortened timeout before the run stops.

Builds tagged robotgo drive the live screen for IMAGE, OCR and LOCATION
locators. Accessibility tree locators read a captured tree given with
--snapshot.`,
	SilenceUsage: true,
}

// appConfig is loaded once per invocation by the root pre-run hook.
var appConfig *config.Config

func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./desktop-runner.yaml)")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("snapshot", "", "Replay a captured tree file instead of the live desktop")
	rootCmd.PersistentFlags().String("log-level", "", "Override logger.level")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if snap, _ := rootCmd.PersistentFlags().GetString("snapshot"); snap != "" {
			cfg.Tree.SnapshotFile = snap
		}
		if level, _ := rootCmd.PersistentFlags().GetString("log-level"); level != "" {
			cfg.Logger.Level = level
		}
		appConfig = cfg
		observability.InitializeLogger(cfg.Logger)

		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
}

// newSession builds a session over the configured provider.
func newSession() (*session.Session, error) {
	logger := observability.GetLogger()
	provider, err := session.NewProvider(appConfig.Tree.SnapshotFile, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("session ready",
		zap.Bool("snapshot", appConfig.Tree.SnapshotFile != ""),
		zap.Bool("reader", provider.Reader != nil),
		zap.Bool("input", provider.Inputter != nil),
		zap.Bool("ocr", provider.Recognizer != nil),
	)
	return session.New(appConfig, provider, logger), nil
}
