// Package cli implements the weaver command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/weaver/internal/config"
	"github.com/tOgg1/weaver/internal/db"
	"github.com/tOgg1/weaver/internal/logging"
	"github.com/tOgg1/weaver/internal/ops"
)

var (
	cfgFile    string
	logLevel   string
	logFormat  string
	jsonOutput bool
	noColor    bool

	appConfig *config.Config
	closeLog  = func() error { return nil }

	// catalog is shared by every command; it is immutable.
	catalog = ops.NewCatalog()
)

var rootCmd = &cobra.Command{
	Use:   "weaver",
	Short: "Weave drafting toolkit",
	Long: `weaver edits, converts and generates weave drafts.

Drafts are read from native .ada documents, WIF files and raster images, and
written as .ada or .wif. Operations from the structure library can be run
one at a time or chained with YAML recipes. A local SQLite library keeps
reusable patterns and saved documents.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/weaver/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "override logging format (json, console)")
	pf.BoolVar(&jsonOutput, "json", false, "output in JSON format")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
}

// SetVersionInfo sets the version reported by --version.
func SetVersionInfo(version, commit, date string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { _ = closeLog() }()
	return rootCmd.ExecuteContext(ctx)
}

// initConfig loads configuration (defaults < file < env < flags) and sets up
// logging.
func initConfig(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}

	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		"logging.level":  "log-level",
		"logging.format": "log-format",
	} {
		if err := loader.BindFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	appConfig = cfg

	closer, err := logging.Setup(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		File:         cfg.Logging.File,
		NoColor:      noColor,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	if err != nil {
		return err
	}
	closeLog = closer

	if used := loader.ConfigFileUsed(); used != "" {
		log := logging.Component("cli")
		log.Debug().Str("config_file", used).Msg("loaded config file")
	}
	return nil
}

// GetConfig returns the loaded configuration, or defaults when no command
// has loaded one yet.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

// WriteOutput writes v as indented JSON.
func WriteOutput(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// useColor reports whether drawdowns should be styled.
func useColor(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// openDatabase opens the library database and applies pending migrations.
func openDatabase(ctx context.Context) (*db.DB, error) {
	cfg := GetConfig()
	database, err := db.Open(db.Config{
		Path:           cfg.DatabasePath(),
		MaxConnections: cfg.Database.MaxConnections,
		BusyTimeoutMs:  cfg.Database.BusyTimeoutMs,
	})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
