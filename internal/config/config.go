// Package config loads server and game settings.
// Sources, lowest to highest priority:
//  1. Defaults
//  2. YAML file (--config flag or MASTERMIND_CONFIG)
//  3. .env file in the working directory
//  4. Environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DevJWTSecret is the signing secret used when none is configured.
const DevJWTSecret = "dev_secret_change_me"

// Config holds every runtime setting.
type Config struct {
	Port           string        `yaml:"port" env:"PORT"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`
	DBPath         string        `yaml:"db_path" env:"DB_PATH"`
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTExpiresDays int           `yaml:"jwt_expires_days" env:"JWT_EXPIRES_DAYS"`
	CookieName     string        `yaml:"cookie_name" env:"COOKIE_NAME"`
	ClientOrigin   string        `yaml:"client_origin" env:"CLIENT_ORIGIN"`
	AppEnv         string        `yaml:"app_env" env:"APP_ENV"`
	DailySalt      string        `yaml:"daily_salt" env:"DAILY_SALT"`
	MaxGuesses     int           `yaml:"max_guesses" env:"MAX_GUESSES"`
	ThinkDelay     time.Duration `yaml:"ai_think_delay" env:"AI_THINK_DELAY"`
	Rounds         int           `yaml:"rounds" env:"ROUNDS"` // terminal match length; 0 asks the player
	GameTTL        time.Duration `yaml:"game_ttl" env:"GAME_TTL"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:           "5175",
		LogLevel:       "info",
		DBPath:         "./data/app.db",
		JWTSecret:      DevJWTSecret,
		JWTExpiresDays: 14,
		CookieName:     "mastermind_token",
		ClientOrigin:   "http://localhost:5173",
		AppEnv:         "development",
		DailySalt:      "local_dev_salt",
		MaxGuesses:     12,
		ThinkDelay:     time.Second,
		Rounds:         0,
		GameTTL:        2 * time.Hour,
	}
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c Config) Production() bool { return c.AppEnv == "production" }

// Load builds a Config from defaults, the optional YAML file at path (or
// MASTERMIND_CONFIG when path is empty), .env and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("MASTERMIND_CONFIG")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	_ = godotenv.Load()
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the game cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.MaxGuesses < 1 {
		errs = append(errs, fmt.Errorf("max_guesses must be >= 1, got %d", c.MaxGuesses))
	}
	if c.Rounds < 0 {
		errs = append(errs, fmt.Errorf("rounds must be >= 0, got %d", c.Rounds))
	}
	if c.GameTTL <= 0 {
		errs = append(errs, fmt.Errorf("game_ttl must be positive, got %s", c.GameTTL))
	}
	if c.JWTExpiresDays < 1 {
		errs = append(errs, fmt.Errorf("jwt_expires_days must be >= 1, got %d", c.JWTExpiresDays))
	}
	if c.ThinkDelay < 0 {
		errs = append(errs, errors.New("ai_think_delay must not be negative"))
	}
	if c.Production() && c.JWTSecret == DevJWTSecret {
		errs = append(errs, errors.New("jwt_secret must be set in production"))
	}
	return errors.Join(errs...)
}
