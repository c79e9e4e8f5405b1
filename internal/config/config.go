package config

import (
	"flag"
	"os"
	"path/filepath"
)

// Dashboard is the orderdash binary's configuration.
type Dashboard struct {
	APIAddress  string
	SessionFile string
}

func NewDashboard() *Dashboard {
	cfg := &Dashboard{}

	flag.StringVar(&cfg.APIAddress, "api", "http://localhost:8080", "order API base URL")
	flag.StringVar(&cfg.SessionFile, "session", defaultSessionFile(), "session file path")
	flag.Parse()

	cfg.APIAddress = getEnv("API_ADDRESS", cfg.APIAddress)
	cfg.SessionFile = getEnv("SESSION_FILE", cfg.SessionFile)

	return cfg
}

// Stub is the mockapi binary's configuration.
type Stub struct {
	RunAddress string
	JWTSecret  string
}

func NewStub() *Stub {
	cfg := &Stub{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "server address and port")
	flag.StringVar(&cfg.JWTSecret, "s", "super-secret-jwt-key", "jwt signing key")
	flag.Parse()

	cfg.RunAddress = getEnv("RUN_ADDRESS", cfg.RunAddress)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)

	return cfg
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".orderdash/session.json"
	}
	return filepath.Join(home, ".orderdash", "session.json")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
