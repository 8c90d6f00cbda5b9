// Package config loads service settings from config.yml, a .env file and
// SVYASA_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "SVYASA"

	DefaultJWTSecret = "change-me-in-production"
	DefaultAdminPath = "/api/admin-secret-login"
)

// Config holds every tunable of the service.
type Config struct {
	Env        string           `mapstructure:"env"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	DB         DBConfig         `mapstructure:"db"`
	Posts      PostsConfig      `mapstructure:"posts"`
	Feed       FeedConfig       `mapstructure:"feed"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Avatars    AvatarsConfig    `mapstructure:"avatars"`
	Log        LogConfig        `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DBConfig struct {
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
}

type PostsConfig struct {
	Lifetime time.Duration `mapstructure:"lifetime"`
}

type FeedConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type AdminConfig struct {
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"`
	Path         string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type ModerationConfig struct {
	TermsFile string `mapstructure:"terms_file"`
}

type AvatarsConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.path", "./data")
	v.SetDefault("db.in_memory", false)
	v.SetDefault("posts.lifetime", 24*time.Hour)
	v.SetDefault("feed.poll_interval", 60*time.Second)
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.path", DefaultAdminPath)
	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.session_ttl", 12*time.Hour)
	v.SetDefault("moderation.terms_file", "")
	v.SetDefault("avatars.base_url", "https://i.pravatar.cc/150")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &cfg
}

// Load reads configuration. When path is empty, config.yml is looked up in
// the working directory and its absence is not an error.
func Load(path string) (*Config, error) {
	// A missing .env is the common case outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether strict checks apply.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if !c.DB.InMemory && c.DB.Path == "" {
		return errors.New("db.path is required unless db.in_memory is set")
	}
	if c.Posts.Lifetime <= 0 {
		return errors.New("posts.lifetime must be positive")
	}
	if c.Feed.PollInterval <= 0 {
		return errors.New("feed.poll_interval must be positive")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth.session_ttl must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if !strings.HasPrefix(c.Admin.Path, "/") || strings.TrimRight(c.Admin.Path, "/") == "" {
		return errors.New("admin.path must be an absolute, non-root path")
	}
	if c.Avatars.BaseURL == "" {
		return errors.New("avatars.base_url is required")
	}

	if c.IsProduction() {
		if c.Auth.JWTSecret == DefaultJWTSecret {
			return errors.New("auth.jwt_secret must be changed from the default value in production")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return errors.New("auth.jwt_secret must be at least 32 characters in production")
		}
		if c.DB.InMemory {
			return errors.New("db.in_memory is not allowed in production")
		}
	}
	return nil
}

// Warnings lists settings that are accepted but worth flagging at startup.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Admin.Email == "" || c.Admin.PasswordHash == "" {
		warnings = append(warnings, "admin.email or admin.password_hash is empty; admin sign-in is disabled")
	}
	if !c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		warnings = append(warnings, "auth.jwt_secret is shorter than 32 characters")
	}
	if c.Admin.Path == DefaultAdminPath {
		warnings = append(warnings, "admin.path is the default; consider a less guessable path")
	}
	return warnings
}
