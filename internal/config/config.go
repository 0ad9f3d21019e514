// Package config handles weaver configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
)

// Config is the root configuration structure for weaver. Field names
// follow the YAML keys; validate tags are checked by Validate.
type Config struct {
	Global   GlobalConfig   `yaml:"global" mapstructure:"global"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`

	// LoomDefaults applies to looms created by new documents and raster
	// imports.
	LoomDefaults  LoomConfig  `yaml:"loom_defaults" mapstructure:"loom_defaults"`
	DraftDefaults DraftConfig `yaml:"draft_defaults" mapstructure:"draft_defaults"`

	Raster RasterConfig `yaml:"raster" mapstructure:"raster"`

	// WIF is the [WIF] header written on export.
	WIF WIFConfig `yaml:"wif" mapstructure:"wif"`
}

// GlobalConfig holds the weaver directories.
type GlobalConfig struct {
	DataDir   string `yaml:"data_dir" mapstructure:"data_dir"`
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig configures the pattern and document library.
type DatabaseConfig struct {
	// Path defaults to <data_dir>/weaver.db when empty.
	Path           string `yaml:"path" mapstructure:"path"`
	MaxConnections int    `yaml:"max_connections" mapstructure:"max_connections" validate:"min=1"`
	BusyTimeoutMs  int    `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms" validate:"min=0"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error off disabled"`
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=console json"`

	// File receives logs instead of stderr when set.
	File         string `yaml:"file" mapstructure:"file"`
	EnableCaller bool   `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// LoomConfig contains default loom settings. Frames and Treadles are
// minimum capacities; RecomputeLoom grows past them when a draft needs more.
type LoomConfig struct {
	Type     string `yaml:"type" mapstructure:"type" validate:"loomtype"`
	Frames   int    `yaml:"frames" mapstructure:"frames" validate:"min=1"`
	Treadles int    `yaml:"treadles" mapstructure:"treadles" validate:"min=1"`
	EPI      int    `yaml:"epi" mapstructure:"epi" validate:"min=1"`
	Units    string `yaml:"units" mapstructure:"units" validate:"oneof=in cm"`
}

// DraftConfig contains default draft dimensions.
type DraftConfig struct {
	Warps int `yaml:"warps" mapstructure:"warps" validate:"min=1"`
	Wefts int `yaml:"wefts" mapstructure:"wefts" validate:"min=1"`
}

// RasterConfig contains image ingestion settings.
type RasterConfig struct {
	// Threshold is the channel sum below which an opaque pixel is Up.
	Threshold int    `yaml:"threshold" mapstructure:"threshold" validate:"min=1,max=766"`
	Mode      string `yaml:"mode" mapstructure:"mode" validate:"oneof=threshold color"`
}

type WIFConfig struct {
	SourceProgram string `yaml:"source_program" mapstructure:"source_program"`
	SourceVersion string `yaml:"source_version" mapstructure:"source_version"`
	Developers    string `yaml:"developers" mapstructure:"developers"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "weaver"),
			ConfigDir: filepath.Join(homeDir, ".config", "weaver"),
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			BusyTimeoutMs:  5000,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		LoomDefaults: LoomConfig{
			Type:     string(loom.TypeJacquard),
			Frames:   fileio.DefaultFrames,
			Treadles: fileio.DefaultTreadles,
			EPI:      loom.DefaultEPI,
			Units:    loom.DefaultUnits,
		},
		DraftDefaults: DraftConfig{
			Warps: fileio.DefaultWarps,
			Wefts: fileio.DefaultWefts,
		},
		Raster: RasterConfig{
			Threshold: fileio.DefaultThreshold,
			Mode:      string(fileio.RasterThreshold),
		},
		WIF: WIFConfig{
			SourceProgram: "weaver",
			SourceVersion: "1.0",
			Developers:    "weaver",
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return name
	})
	_ = v.RegisterValidation("loomtype", func(fl validator.FieldLevel) bool {
		_, err := loom.ParseType(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate reports every invalid setting, keyed by its YAML path.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := &models.ValidationErrors{}
	for _, fe := range fieldErrs {
		_, key, _ := strings.Cut(fe.Namespace(), ".")
		problems.AddMessage(key, describe(fe))
	}
	return problems.Err()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "loomtype":
		return fmt.Sprintf("unknown loom type %q", fe.Value())
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// DatabasePath returns the full database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "weaver.db")
}

// FormOptions returns new-document options built from the defaults.
func (c *Config) FormOptions() fileio.FormOptions {
	loomType, _ := loom.ParseType(c.LoomDefaults.Type)
	return fileio.FormOptions{
		Warps:    c.DraftDefaults.Warps,
		Wefts:    c.DraftDefaults.Wefts,
		Frames:   c.LoomDefaults.Frames,
		Treadles: c.LoomDefaults.Treadles,
		LoomType: loomType,
		EPI:      c.LoomDefaults.EPI,
		Units:    c.LoomDefaults.Units,
	}
}

// RasterOptions returns image ingestion options.
func (c *Config) RasterOptions() fileio.RasterOptions {
	return fileio.RasterOptions{
		Mode:      fileio.RasterMode(c.Raster.Mode),
		Threshold: c.Raster.Threshold,
	}
}
