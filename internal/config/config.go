package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const minSessionSecretLen = 32

type Config struct {
	AppEnv           string        `mapstructure:"APP_ENV"`
	Port             string        `mapstructure:"PORT"`
	BaseURL          string        `mapstructure:"BASE_URL"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	MigrationsPath   string        `mapstructure:"MIGRATIONS_PATH"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	CacheTTL         time.Duration `mapstructure:"CACHE_TTL"`
	SessionSecret    string        `mapstructure:"SESSION_SECRET"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL"`
	RememberTTL      time.Duration `mapstructure:"REMEMBER_TTL"`
	AliasMaxAttempts int           `mapstructure:"ALIAS_MAX_ATTEMPTS"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate reports settings that are unsafe to run with. A missing session
// secret is only fatal in production; elsewhere main generates one.
func (c Config) Validate() error {
	if c.IsProduction() {
		if c.SessionSecret == "" {
			return errors.New("SESSION_SECRET must be set in production")
		}
		if len(c.SessionSecret) < minSessionSecretLen {
			return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLen)
		}
	}
	if c.AliasMaxAttempts < 1 {
		return fmt.Errorf("ALIAS_MAX_ATTEMPTS must be positive, got %d", c.AliasMaxAttempts)
	}
	if c.SessionTTL <= 0 || c.RememberTTL <= 0 {
		return errors.New("SESSION_TTL and REMEMBER_TTL must be positive")
	}
	return nil
}

func LoadConfig() (config Config, err error) {
	if err = godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return config, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("PORT", "8080")
	v.SetDefault("BASE_URL", "")
	v.SetDefault("DATABASE_URL", "sqlite://db/shrtn.sqlite")
	v.SetDefault("MIGRATIONS_PATH", "file://migration")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("REMEMBER_TTL", "8760h")
	v.SetDefault("ALIAS_MAX_ATTEMPTS", 10)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	return
}
