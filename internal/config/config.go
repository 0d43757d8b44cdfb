package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/heriawanfx/pos-bakery/internal/pricing"
)

const (
	defaultDBPath = "./bakery.db"
	defaultPort   = "8080"
	defaultEnv    = "development"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	CostPolicy    pricing.CostPolicy
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// Production should use real env injection.
	_ = godotenv.Load()

	cfg := Config{
		Env:           os.Getenv("APP_ENV"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	policy, err := pricing.ParsePolicy(os.Getenv("COST_POLICY"))
	if err != nil {
		log.Printf("warning: %v, using %s", err, policy)
	}
	cfg.CostPolicy = policy

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the app runs in the development environment.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}
