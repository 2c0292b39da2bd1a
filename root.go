package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/storefront-go/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagAPIURL     string
	flagJSON       bool
	flagVerbose    bool
	flagDebug      bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
// resolvedCfgPath is the file it was read from (which may not exist).
var (
	resolvedCfg     *config.Config
	resolvedCfgPath string
)

// skipConfigCommands lists commands that work on the config file itself and
// must run even when the current file does not validate.
var skipConfigCommands = map[string]bool{
	"storefront config init": true,
	"storefront config set":  true,
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "storefront",
		Short:   "Storefront CLI client",
		Long:    "Browse the storefront catalog and administer products, categories and customers.",
		Version: version,
		// Errors and usage are printed by main.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			resolvedCfgPath = config.ConfigPath(config.ReadEnvOverrides(), config.CLIOverrides{ConfigPath: flagConfigPath})

			if skipConfigCommands[cmd.CommandPath()] {
				return nil
			}

			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "storefront API base URL")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable info logging")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newHomeCmd())
	cmd.AddCommand(newProductsCmd())
	cmd.AddCommand(newCategoriesCmd())
	cmd.AddCommand(newReviewCmd())
	cmd.AddCommand(newCustomersCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override chain
// and stores the result in resolvedCfg for use by subcommands.
func loadConfig(cmd *cobra.Command) error {
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
	}

	if cmd.Flags().Changed("api-url") {
		cli.APIURL = &flagAPIURL
	}

	if level := flagLogLevel(); level != "" {
		cli.LogLevel = &level
	}

	cfg, err := config.Resolve(config.ReadEnvOverrides(), cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = cfg

	return nil
}

// flagLogLevel maps --debug, --verbose and --quiet to a log level, or ""
// when none is set. --debug wins over --verbose; --quiet wins over both.
func flagLogLevel() string {
	switch {
	case flagQuiet:
		return "error"
	case flagDebug:
		return "debug"
	case flagVerbose:
		return "info"
	default:
		return ""
	}
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Without a loaded config it logs warnings and above.
func buildLogger() *slog.Logger {
	levelName := "warn"
	format := "auto"

	if resolvedCfg != nil {
		levelName = resolvedCfg.Logging.LogLevel
		format = resolvedCfg.Logging.LogFormat
	}

	if l := flagLogLevel(); l != "" {
		levelName = l
	}

	return newLogger(os.Stderr, levelName, format, isatty.IsTerminal(os.Stderr.Fd()))
}

// newLogger builds the handler for w. "auto" picks text for terminals and
// JSON otherwise.
func newLogger(w io.Writer, levelName, format string, terminal bool) *slog.Logger {
	level := slog.LevelWarn

	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if format == "json" || (format == "auto" && !terminal) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}
