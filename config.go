package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and passed to every component. Nothing
// mutates it after ReadConfig returns.
type Config struct {
	Email    string
	Password string

	// TOTPSeed enables 2FA code submission during login when non-empty.
	TOTPSeed string

	// Timeout bounds every element wait.
	Timeout time.Duration

	// SleepTime is the pause between cycles in seconds. Negative means run
	// exactly once.
	SleepTime int

	LogLevel string
	LogFile  string

	// Debug runs the browser visible with a fixed window size instead of
	// headless.
	Debug bool

	CookieFile    string
	SelectorsFile string

	Selectors Selectors
}

// ReadConfig loads .env if one exists, then builds the config from the
// environment.
func ReadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Email:      os.Getenv("EMAIL"),
		Password:   os.Getenv("PASSWORD"),
		TOTPSeed:   os.Getenv("TOTP"),
		LogLevel:   strings.ToLower(envOr("LOGLEVEL", "info")),
		LogFile:    os.Getenv("LOGFILE"),
		CookieFile: "cookies.json",
	}

	_, cfg.Debug = os.LookupEnv("DEBUG")

	timeout, err := envInt("TIMEOUT", 20)
	if err != nil {
		return nil, err
	}
	cfg.Timeout = time.Duration(timeout) * time.Second

	cfg.SleepTime, err = envInt("SLEEPTIME", -1)
	if err != nil {
		return nil, err
	}

	if cfg.Email == "" || cfg.Password == "" {
		return nil, fmt.Errorf("credentials missing: EMAIL and PASSWORD must be set")
	}

	cfg.SelectorsFile = envOr("SELECTORS", "selectors.yaml")
	cfg.Selectors = DefaultSelectors()
	if _, err := os.Stat(cfg.SelectorsFile); err == nil {
		cfg.Selectors, err = LoadSelectors(cfg.SelectorsFile)
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
