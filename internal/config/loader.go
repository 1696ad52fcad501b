package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix for overrides.
const EnvPrefix = "SUPPLY_INTEL"

// SetDefaults registers every key with its default value. Keys must be
// registered for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	dataDir := defaultDataDir()

	v.SetDefault("model.path", filepath.Join(dataDir, "model.json"))

	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.path", filepath.Join(dataDir, "activity.db"))
	v.SetDefault("storage.retention_days", 90)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("similarity.max_features", 1000)
	v.SetDefault("similarity.default_top_n", 5)

	v.SetDefault("forecast.estimators", 100)
	v.SetDefault("forecast.seed", 42)
	v.SetDefault("forecast.validation_ratio", 0.2)
	v.SetDefault("forecast.max_depth", 0)
	v.SetDefault("forecast.min_samples_split", 2)

	v.SetDefault("scoring.weights.rating", 0.4)
	v.SetDefault("scoring.weights.completion", 0.3)
	v.SetDefault("scoring.weights.responsiveness", 0.2)
	v.SetDefault("scoring.weights.quality", 0.1)
	v.SetDefault("scoring.defaults.response_hours", 24.0)
	v.SetDefault("scoring.defaults.quality", 0.8)

	v.SetDefault("metrics.textfile", "")
}

// Default returns the configuration with no file and no environment.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the configuration from the default path.
// A missing default file is not an error; defaults and environment apply.
func Load() (*Config, error) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return load(viper.New(), path, false)
}

// LoadFrom reads the configuration from an explicit path, which must exist.
func LoadFrom(path string) (*Config, error) {
	return load(viper.New(), path, true)
}

// LoadWith reads configuration into a caller-provided viper instance, so
// command-line flags bound to v take precedence. An empty path means the
// default path, which may be missing.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	required := path != ""
	if !required {
		p, err := GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return load(v, path, required)
}

func load(v *viper.Viper, path string, required bool) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	data, err := readConfigFile(path, required)
	if err != nil {
		return nil, err
	}

	if data != nil {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, &InvalidConfigError{
				Path:    path,
				Message: fmt.Sprintf("YAML parse error: %v", err),
				Hint:    "Restore from .bak file if available",
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("failed to decode config: %v", err),
		}
	}

	cfg.Model.Path = ExpandHome(cfg.Model.Path)
	cfg.Storage.Path = ExpandHome(cfg.Storage.Path)
	cfg.Metrics.Textfile = ExpandHome(cfg.Metrics.Textfile)

	if err := Validate(&cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Run 'supply-intel config show' to inspect effective values",
		}
	}

	return &cfg, nil
}

// readConfigFile returns nil data for a missing optional file.
func readConfigFile(path string, required bool) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if !required {
				return nil, nil
			}
			return nil, &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'supply-intel config init' to create configuration",
			}
		}
		return nil, fmt.Errorf("failed to access config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
			}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	default: // unix-like
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails checks file permissions
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return ""
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
