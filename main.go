package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := ReadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()
	log := logger.Sugar()

	log.Debugf("started with TIMEOUT: %s, EMAIL: %s, password: %s",
		cfg.Timeout, cfg.Email, strings.Repeat("*", len(cfg.Password)))

	for {
		if err := runCycle(cfg, log); err != nil {
			if isFatal(err) {
				log.Errorf("aborting: %v", err)
				return 1
			}
			// A failed cycle still schedules the next one; the browser
			// session was discarded either way.
			log.Errorf("cycle failed: %v", err)
		}

		if cfg.SleepTime < 0 {
			return 0
		}
		log.Infof("sleeping for %d seconds", cfg.SleepTime)
		time.Sleep(time.Duration(cfg.SleepTime) * time.Second)
	}
}

// runCycle performs one full pass: fresh browser, cookie resume, login if
// needed, then enumerate and claim every free offer.
func runCycle(cfg *Config, log *zap.SugaredLogger) error {
	driver, err := newRodDriver(cfg, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	if err := driver.Navigate(freeGamesURL); err != nil {
		return err
	}

	session := NewSession(driver, cfg, log)
	session.LoadCookies()

	if session.LoggedIn() {
		log.Debug("already logged in via saved cookies")
	} else {
		auth := NewAuthenticator(driver, cfg, log)
		if err := auth.Login(); err != nil {
			return err
		}
		if err := session.SaveCookies(); err != nil {
			log.Debugf("could not persist session cookies: %v", err)
		}
	}

	claimer := NewClaimer(driver, cfg, log)
	return claimer.Run()
}
