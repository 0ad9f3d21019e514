package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment override.
const envPrefix = "WEAVER"

// Loader reads configuration with precedence
// defaults < config file < WEAVER_* env < bound flags.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a loader that searches the standard config locations.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// SetConfigFile pins the config file. A pinned file must exist.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// BindFlag makes a CLI flag override key when the flag was set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// ConfigFileUsed returns the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Load resolves, expands and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	defaults := settings(cfg)

	keys := make([]string, 0, len(defaults))
	for key, value := range defaults {
		l.v.SetDefault(key, value)
		keys = append(keys, key)
	}
	slices.Sort(keys)

	// Unmarshal only sees env values for keys bound explicitly.
	l.v.SetEnvPrefix(envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := l.v.BindEnv(key, EnvVar(key)); err != nil {
			return nil, err
		}
	}

	if err := l.readConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.Global.DataDir, &cfg.Global.ConfigDir, &cfg.Database.Path, &cfg.Logging.File} {
		*p = expandHome(*p)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) readConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
		return l.v.ReadInConfig()
	}

	l.v.SetConfigName("config")
	l.v.SetConfigType("yaml")
	for _, dir := range searchDirs() {
		l.v.AddConfigPath(dir)
	}

	err := l.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

// searchDirs lists config directories, most specific last.
func searchDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "weaver"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "weaver"))
	}
	return append(dirs, ".")
}

// settings maps every configurable key to its value in cfg.
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"global.data_dir":          cfg.Global.DataDir,
		"global.config_dir":        cfg.Global.ConfigDir,
		"database.path":            cfg.Database.Path,
		"database.max_connections": cfg.Database.MaxConnections,
		"database.busy_timeout_ms": cfg.Database.BusyTimeoutMs,
		"logging.level":            cfg.Logging.Level,
		"logging.format":           cfg.Logging.Format,
		"logging.file":             cfg.Logging.File,
		"logging.enable_caller":    cfg.Logging.EnableCaller,
		"loom_defaults.type":       cfg.LoomDefaults.Type,
		"loom_defaults.frames":     cfg.LoomDefaults.Frames,
		"loom_defaults.treadles":   cfg.LoomDefaults.Treadles,
		"loom_defaults.epi":        cfg.LoomDefaults.EPI,
		"loom_defaults.units":      cfg.LoomDefaults.Units,
		"draft_defaults.warps":     cfg.DraftDefaults.Warps,
		"draft_defaults.wefts":     cfg.DraftDefaults.Wefts,
		"raster.threshold":         cfg.Raster.Threshold,
		"raster.mode":              cfg.Raster.Mode,
		"wif.source_program":       cfg.WIF.SourceProgram,
		"wif.source_version":       cfg.WIF.SourceVersion,
		"wif.developers":           cfg.WIF.Developers,
	}
}

// Keys returns every configurable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, 24)
	for key := range settings(DefaultConfig()) {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// LoadFromFile loads configuration from path, which must exist.
func LoadFromFile(path string) (*Config, error) {
	l := NewLoader()
	l.SetConfigFile(path)
	return l.Load()
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}
