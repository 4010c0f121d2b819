package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unsetEnv clears keys for the duration of the test. t.Setenv registers the
// restore; Unsetenv removes the value it just set.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func setCredentials(t *testing.T) {
	t.Helper()
	unsetEnv(t, "TIMEOUT", "SLEEPTIME", "LOGLEVEL", "LOGFILE", "TOTP", "DEBUG", "SELECTORS")
	t.Setenv("EMAIL", "user@example.com")
	t.Setenv("PASSWORD", "hunter2")
}

func TestReadConfigDefaults(t *testing.T) {
	setCredentials(t)

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig() returned error: %v", err)
	}

	if cfg.Timeout != 20*time.Second {
		t.Errorf("default timeout = %v, expected 20s", cfg.Timeout)
	}
	if cfg.SleepTime != -1 {
		t.Errorf("default sleep time = %d, expected -1", cfg.SleepTime)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log level = %q, expected info", cfg.LogLevel)
	}
	if cfg.Debug {
		t.Error("debug should default to false")
	}
	if cfg.TOTPSeed != "" {
		t.Errorf("TOTP seed should default to empty, got %q", cfg.TOTPSeed)
	}
	if cfg.CookieFile != "cookies.json" {
		t.Errorf("cookie file = %q, expected cookies.json", cfg.CookieFile)
	}
	if cfg.Selectors != DefaultSelectors() {
		t.Error("selectors should default to the built-in table")
	}
}

func TestReadConfigMissingCredentials(t *testing.T) {
	setCredentials(t)
	unsetEnv(t, "EMAIL")

	if _, err := ReadConfig(); err == nil {
		t.Error("expected an error when EMAIL is missing")
	}

	setCredentials(t)
	unsetEnv(t, "PASSWORD")

	if _, err := ReadConfig(); err == nil {
		t.Error("expected an error when PASSWORD is missing")
	}
}

func TestReadConfigOverrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("TIMEOUT", "5")
	t.Setenv("SLEEPTIME", "3600")
	t.Setenv("LOGLEVEL", "DEBUG")
	t.Setenv("TOTP", "JBSWY3DPEHPK3PXP")
	t.Setenv("DEBUG", "1")

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig() returned error: %v", err)
	}

	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, expected 5s", cfg.Timeout)
	}
	if cfg.SleepTime != 3600 {
		t.Errorf("sleep time = %d, expected 3600", cfg.SleepTime)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, expected debug (lowercased)", cfg.LogLevel)
	}
	if cfg.TOTPSeed != "JBSWY3DPEHPK3PXP" {
		t.Errorf("TOTP seed = %q", cfg.TOTPSeed)
	}
	if !cfg.Debug {
		t.Error("DEBUG presence should enable debug mode")
	}
}

func TestReadConfigDebugByPresence(t *testing.T) {
	setCredentials(t)
	// Presence toggles debug, even with an empty value.
	t.Setenv("DEBUG", "")

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig() returned error: %v", err)
	}
	if !cfg.Debug {
		t.Error("an empty DEBUG value should still enable debug mode")
	}
}

func TestReadConfigBadIntegers(t *testing.T) {
	setCredentials(t)
	t.Setenv("TIMEOUT", "twenty")
	if _, err := ReadConfig(); err == nil {
		t.Error("expected an error for a non-integer TIMEOUT")
	}

	setCredentials(t)
	t.Setenv("SLEEPTIME", "1.5")
	if _, err := ReadConfig(); err == nil {
		t.Error("expected an error for a non-integer SLEEPTIME")
	}
}

func TestReadConfigSelectorOverrideFile(t *testing.T) {
	setCredentials(t)

	path := filepath.Join(t.TempDir(), "selectors.yaml")
	if err := os.WriteFile(path, []byte("purchase_cta: \"//button[@id='buy']\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SELECTORS", path)

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig() returned error: %v", err)
	}

	if cfg.Selectors.PurchaseCTA != "//button[@id='buy']" {
		t.Errorf("selector override not applied, got %q", cfg.Selectors.PurchaseCTA)
	}
	if cfg.Selectors.FreeOffer != DefaultSelectors().FreeOffer {
		t.Error("selectors absent from the override file should keep their defaults")
	}
}
