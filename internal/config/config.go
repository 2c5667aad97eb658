package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the server and CLI settings.
type Config struct {
	Addr        string
	LogLevel    string
	ImportTTL   time.Duration
	UploadLimit int // bytes
	DebugLines  bool
	StaticDir   string
}

const (
	defaultAddr        = ":8080"
	defaultLogLevel    = "info"
	defaultImportTTL   = 30 * time.Minute
	defaultUploadLimit = 10 * 1024 * 1024
)

// Load reads .env (if present), then xpledger.yml from the working
// directory or /etc/xp-ledger (if present), then XPLEDGER_* environment
// variables, which win.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("xpledger")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/xp-ledger")

	v.SetEnvPrefix("XPLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", defaultAddr)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("import_ttl", defaultImportTTL)
	v.SetDefault("upload_limit", defaultUploadLimit)
	v.SetDefault("debug_lines", false)
	v.SetDefault("static_dir", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Config{
		Addr:        v.GetString("addr"),
		LogLevel:    v.GetString("log_level"),
		ImportTTL:   v.GetDuration("import_ttl"),
		UploadLimit: v.GetInt("upload_limit"),
		DebugLines:  v.GetBool("debug_lines"),
		StaticDir:   v.GetString("static_dir"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr cannot be empty")
	}
	if c.ImportTTL <= 0 {
		return fmt.Errorf("import_ttl must be positive, got %s", c.ImportTTL)
	}
	if c.UploadLimit <= 0 {
		return fmt.Errorf("upload_limit must be positive, got %d", c.UploadLimit)
	}
	return nil
}
