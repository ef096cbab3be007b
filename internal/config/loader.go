package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader wraps a viper instance scoped to LANscape's AppConfig, following
// the teacher's ConfigLoader idiom (env-prefixed overrides, SetDefault
// calls, search path list) but trimmed to the ambient settings LANscape
// actually carries.
type Loader struct {
	v *viper.Viper
}

// NewLoader builds a Loader that searches the given directories (in
// order) for config.yaml, falling back entirely to defaults if none
// exist — a missing config file is not an error.
func NewLoader(searchPaths ...string) *Loader {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("LANSCAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	applyDefaults(v, DefaultAppConfig())

	return &Loader{v: v}
}

func applyDefaults(v *viper.Viper, cfg AppConfig) {
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("persistent", cfg.Persistent)
	v.SetDefault("port_catalog_dir", cfg.PortCatalogDir)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output", cfg.Log.Output)
	v.SetDefault("log.file_path", cfg.Log.FilePath)
	v.SetDefault("log.max_size", cfg.Log.MaxSize)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age", cfg.Log.MaxAge)
	v.SetDefault("log.compress", cfg.Log.Compress)
	v.SetDefault("log.caller", cfg.Log.Caller)
}

// Load reads the config file (if present), applies environment overrides,
// and decodes into an AppConfig.
func (l *Loader) Load() (*AppConfig, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Viper exposes the underlying viper instance for the config watcher.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func validate(cfg *AppConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid config: port %d out of range", cfg.Port)
	}
	switch strings.ToLower(cfg.Log.Output) {
	case "stdout", "stderr", "file":
	default:
		return fmt.Errorf("invalid config: unsupported log.output %q", cfg.Log.Output)
	}
	if strings.ToLower(cfg.Log.Output) == "file" && cfg.Log.FilePath == "" {
		return fmt.Errorf("invalid config: log.file_path is required when log.output is file")
	}
	return nil
}
