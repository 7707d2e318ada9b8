// Package config loads service settings from defaults, an optional YAML file,
// a .env file and PRICELIST_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides,
// e.g. PRICELIST_SERVER_PORT.
const EnvPrefix = "PRICELIST"

// Catalog source kinds
const (
	SourceFile = "file"
	SourceHTTP = "http"
	SourceCSV  = "csv"
)

// Config is the complete service configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	PWA     PWAConfig     `mapstructure:"pwa" yaml:"pwa"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string   `mapstructure:"host" yaml:"host"`
	Port            int      `mapstructure:"port" yaml:"port"`
	PublicURL       string   `mapstructure:"publicurl" yaml:"publicurl"`
	ReadTimeout     Duration `mapstructure:"readtimeout" yaml:"readtimeout"`
	WriteTimeout    Duration `mapstructure:"writetimeout" yaml:"writetimeout"`
	ShutdownTimeout Duration `mapstructure:"shutdowntimeout" yaml:"shutdowntimeout"`
}

// CatalogConfig selects where the catalog document is loaded from and which
// file is published at /data/maintenance.json
type CatalogConfig struct {
	Source   string `mapstructure:"source" yaml:"source"`
	URL      string `mapstructure:"url" yaml:"url"`
	File     string `mapstructure:"file" yaml:"file"`
	DataFile string `mapstructure:"datafile" yaml:"datafile"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// CacheConfig holds the derived price list cache settings
type CacheConfig struct {
	TTL Duration `mapstructure:"ttl" yaml:"ttl"`
}

// PWAConfig holds the web app manifest values
type PWAConfig struct {
	Name            string `mapstructure:"name" yaml:"name"`
	ShortName       string `mapstructure:"shortname" yaml:"shortname"`
	Description     string `mapstructure:"description" yaml:"description"`
	ThemeColor      string `mapstructure:"themecolor" yaml:"themecolor"`
	BackgroundColor string `mapstructure:"backgroundcolor" yaml:"backgroundcolor"`
}

// Address returns the listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SetDefaults registers the default values on a viper instance
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.publicurl", "")
	v.SetDefault("server.readtimeout", "15s")
	v.SetDefault("server.writetimeout", "30s")
	v.SetDefault("server.shutdowntimeout", "10s")

	v.SetDefault("catalog.source", SourceFile)
	v.SetDefault("catalog.url", "")
	v.SetDefault("catalog.file", "data/maintenance.json")
	v.SetDefault("catalog.datafile", "data/maintenance.json")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("pwa.name", "Tabela de Manutenção")
	v.SetDefault("pwa.shortname", "Manutenção")
	v.SetDefault("pwa.description", "Lista de preços de manutenção por máquina e revisão")
	v.SetDefault("pwa.themecolor", "#0ea5e9")
	v.SetDefault("pwa.backgroundcolor", "#0b1220")
}

// Load reads the configuration. An empty path searches for pricelist.yaml in
// the working directory and /etc/pricelist; a missing file is not an error
// unless the path was given explicitly.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pricelist")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/pricelist")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and source consistency
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	for name, d := range map[string]Duration{
		"server.readtimeout":     c.Server.ReadTimeout,
		"server.writetimeout":    c.Server.WriteTimeout,
		"server.shutdowntimeout": c.Server.ShutdownTimeout,
		"cache.ttl":              c.Cache.TTL,
	} {
		if d.Std() < 0 {
			return fmt.Errorf("%s cannot be negative, got %s", name, d)
		}
	}

	switch c.Catalog.Source {
	case SourceHTTP:
		if c.Catalog.URL == "" {
			return fmt.Errorf("catalog.url is required for the http source")
		}
	case SourceFile, SourceCSV:
		if c.Catalog.File == "" {
			return fmt.Errorf("catalog.file is required for the %s source", c.Catalog.Source)
		}
	default:
		return fmt.Errorf("unsupported catalog.source %q (expected file, http or csv)", c.Catalog.Source)
	}
	return nil
}

// CacheTTL returns the derived price list cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return c.Cache.TTL.Std()
}

// loadDotEnv loads .env from the working directory when it exists. Variables
// already present in the environment keep their value.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}
