package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// SessionCookie is one persisted authentication cookie.
type SessionCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
}

// Session wraps one live browser context plus the cookie file that lets a
// later run skip the login flow.
type Session struct {
	driver Driver
	cfg    *Config
	log    *zap.SugaredLogger
}

func NewSession(driver Driver, cfg *Config, log *zap.SugaredLogger) *Session {
	return &Session{driver: driver, cfg: cfg, log: log}
}

// LoadCookies pre-loads persisted cookies into the browser and refreshes the
// page so the site picks them up. A missing or malformed file just means the
// login flow will run; it never fails the cycle. Individual cookies the
// browser rejects are skipped.
func (s *Session) LoadCookies() {
	s.log.Debug("trying to load cookies")

	data, err := os.ReadFile(s.cfg.CookieFile)
	if err != nil {
		s.log.Errorf("cookies file not found: %v", err)
		return
	}

	var cookies []SessionCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		s.log.Errorf("cookies file not correctly formatted: %v", err)
		return
	}

	for _, c := range cookies {
		if c.Name == "" || c.Domain == "" {
			continue
		}
		if err := s.driver.SetCookie(c); err != nil {
			s.log.Debugf("skipping cookie %s: %v", c.Name, err)
		}
	}

	s.log.Debug("all cookies loaded, refreshing the page")
	if err := s.driver.Reload(); err != nil {
		s.log.Debugf("refresh after cookie load failed: %v", err)
	}
}

// SaveCookies writes the current browser cookies back to the cookie file so
// the next run can resume the session.
func (s *Session) SaveCookies() error {
	cookies, err := s.driver.Cookies()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.cfg.CookieFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}

	s.log.Debugf("saved %d cookies to %s", len(cookies), s.cfg.CookieFile)
	return nil
}

// LoggedIn reports whether the session is already authenticated, inferred
// from the logout control being present.
func (s *Session) LoggedIn() bool {
	_, found, err := s.driver.Find(s.cfg.Selectors.LogoutControl, s.cfg.Timeout)
	if err != nil {
		s.log.Debugf("logout control probe failed: %v", err)
		return false
	}
	return found
}
