package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds settings shared by the pgbridge commands. Flags given on the
// command line take precedence over these values.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string
	// Timeout is the notification wait, in milliseconds.
	Timeout int
	// Channels are LISTENed on before notifications are drained.
	Channels []string
	// Wasm is the path of the guest module for the run command.
	Wasm string
}

// Load reads configuration from, in increasing priority: defaults,
// .pgbridge.yaml in the working directory or $HOME/.config/pgbridge, and
// PGBRIDGE_* environment variables. .env and .env.local are loaded into the
// environment first if present. DATABASE_URL is used when no DSN is set.
func Load(dir string) (*Config, error) {
	if err := loadDotEnv(dir); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(".pgbridge")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgbridge"))
	}

	v.SetEnvPrefix("PGBRIDGE")
	v.AutomaticEnv()

	v.SetDefault("dsn", "")
	v.SetDefault("timeout", 1000)
	v.SetDefault("channels", []string{})
	v.SetDefault("wasm", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		DSN:      v.GetString("dsn"),
		Timeout:  v.GetInt("timeout"),
		Channels: v.GetStringSlice("channels"),
		Wasm:     v.GetString("wasm"),
	}
	if cfg.DSN == "" {
		cfg.DSN = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

func loadDotEnv(dir string) error {
	env := filepath.Join(dir, ".env")
	if _, err := os.Stat(env); err == nil {
		if err := godotenv.Load(env); err != nil {
			return err
		}
	}

	// .env.local overrides values already set by .env.
	local := filepath.Join(dir, ".env.local")
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Overload(local); err != nil {
			return err
		}
	}
	return nil
}
