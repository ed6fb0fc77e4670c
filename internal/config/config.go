package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	TokenDuration time.Duration `yaml:"token_duration"`
	MongoURI      string        `yaml:"mongo_uri"`
	MongoDatabase string        `yaml:"mongo_database"`
	SentryDSN     string        `yaml:"sentry_dsn"`
	DefaultLang   string        `yaml:"default_lang"`
	WatchChanges  bool          `yaml:"watch_changes"`
}

// LoadConfig builds the configuration from defaults, environment variables
// (a .env file is honored when present) and an optional YAML file, in that
// order of precedence.
func LoadConfig(path string) (*Config, error) {
	// no .env file is fine; real env vars still apply
	_ = godotenv.Load()

	cfg := &Config{
		Addr:          getEnv("PREGUNTAS_ADDR", ":8080"),
		JWTSecret:     getEnv("PREGUNTAS_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		TokenDuration: 12 * time.Hour,
		MongoURI:      getEnv("PREGUNTAS_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("PREGUNTAS_MONGO_DATABASE", "preguntas"),
		SentryDSN:     getEnv("PREGUNTAS_SENTRY_DSN", ""),
		DefaultLang:   getEnv("PREGUNTAS_DEFAULT_LANG", "es"),
		WatchChanges:  getEnv("PREGUNTAS_WATCH_CHANGES", "") != "false",
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects configurations that cannot serve: the default JWT secret
// is only tolerated in development.
func (c *Config) Validate() error {
	if os.Getenv("PREGUNTAS_ENV") != "development" && c.JWTSecret == "supersecretkey" {
		return fmt.Errorf("insecure jwt_secret outside development")
	}
	if c.MongoURI == "" || c.MongoDatabase == "" {
		return fmt.Errorf("mongo_uri and mongo_database are required")
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
