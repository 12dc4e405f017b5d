package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Log     LogConfig
	Store   StoreConfig
	Session SessionConfig
	Export  ExportConfig
	Chrome  ChromeConfig
}

type AppConfig struct {
	Env string
}

type HTTPConfig struct {
	Port  string
	Token string // bearer token required on every route when set
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// StoreConfig selects and addresses the snapshot backend.
type StoreConfig struct {
	Driver        string // sqlite, postgres, redis, rest, memory
	SQLitePath    string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RESTURL       string
	RESTToken     string
}

type SessionConfig struct {
	Debounce time.Duration
}

type ExportConfig struct {
	Dir  string
	Sink string // dir, s3, none
	S3   S3Config
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
	Prefix    string
}

type ChromeConfig struct {
	Path    string
	Timeout time.Duration
}

// Load reads configuration from file and environment, falling back to defaults.
// Priority (highest to lowest):
// 1. Environment variables with RESUME_ prefix (e.g., RESUME_STORE_DRIVER)
// 2. config.yaml (the explicit path when given, else . and $HOME/.resume-studio)
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("$HOME", ".resume-studio"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("RESUME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env: v.GetString("app.env"),
		},
		HTTP: HTTPConfig{
			Port:  v.GetString("http.port"),
			Token: v.GetString("http.token"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Store: StoreConfig{
			Driver:        v.GetString("store.driver"),
			SQLitePath:    v.GetString("store.sqlite_path"),
			PostgresDSN:   v.GetString("store.postgres_dsn"),
			RedisAddr:     v.GetString("store.redis_addr"),
			RedisPassword: v.GetString("store.redis_password"),
			RedisDB:       v.GetInt("store.redis_db"),
			RESTURL:       v.GetString("store.rest_url"),
			RESTToken:     v.GetString("store.rest_token"),
		},
		Session: SessionConfig{
			Debounce: v.GetDuration("session.debounce"),
		},
		Export: ExportConfig{
			Dir:  v.GetString("export.dir"),
			Sink: v.GetString("export.sink"),
			S3: S3Config{
				Bucket:    v.GetString("export.s3.bucket"),
				Region:    v.GetString("export.s3.region"),
				Endpoint:  v.GetString("export.s3.endpoint"),
				AccessKey: v.GetString("export.s3.access_key"),
				SecretKey: v.GetString("export.s3.secret_key"),
				PathStyle: v.GetBool("export.s3.path_style"),
				Prefix:    v.GetString("export.s3.prefix"),
			},
		},
		Chrome: ChromeConfig{
			Path:    v.GetString("chrome.path"),
			Timeout: v.GetDuration("chrome.timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = "3000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
		if cfg.IsProduction() {
			cfg.Log.Format = "json"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = filepath.Join("resume-data", "resume.db")
	}
	if cfg.Store.RedisAddr == "" {
		cfg.Store.RedisAddr = "localhost:6379"
	}
	if cfg.Session.Debounce <= 0 {
		cfg.Session.Debounce = 400 * time.Millisecond
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = filepath.Join("resume-data", "generated")
	}
	if cfg.Export.Sink == "" {
		cfg.Export.Sink = "dir"
	}
	if cfg.Export.S3.Region == "" {
		cfg.Export.S3.Region = "us-east-1"
	}
	if cfg.Chrome.Timeout <= 0 {
		cfg.Chrome.Timeout = 60 * time.Second
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case "sqlite", "postgres", "redis", "memory":
	case "rest":
		if c.Store.RESTURL == "" {
			return fmt.Errorf("store.rest_url is required for the rest driver")
		}
	default:
		return fmt.Errorf("unsupported store.driver %q", c.Store.Driver)
	}
	switch strings.ToLower(c.Export.Sink) {
	case "dir", "none":
	case "s3":
		if c.Export.S3.Bucket == "" {
			return fmt.Errorf("export.s3.bucket is required for the s3 sink")
		}
	default:
		return fmt.Errorf("unsupported export.sink %q", c.Export.Sink)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
