package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
)

// fatalError marks conditions no later cycle can recover from (captcha,
// invalid credentials). The run loop terminates the process on these instead
// of scheduling another cycle.
type fatalError struct {
	msg string
}

func (e *fatalError) Error() string { return e.msg }

func fatalf(format string, args ...any) error {
	return &fatalError{msg: fmt.Sprintf(format, args...)}
}

func isFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}

// Authenticator drives the storefront login UI until the session is
// authenticated or a fatal condition is hit.
type Authenticator struct {
	driver Driver
	cfg    *Config
	log    *zap.SugaredLogger
}

func NewAuthenticator(driver Driver, cfg *Config, log *zap.SugaredLogger) *Authenticator {
	return &Authenticator{driver: driver, cfg: cfg, log: log}
}

// Login runs account menu → provider login → credentials → sign-in, then
// probes for a captcha, submits a 2FA code when a TOTP seed is configured,
// and finally probes for an invalid-credentials message. Absence of both
// probes within the bound is the success signal.
func (a *Authenticator) Login() error {
	sel := a.cfg.Selectors

	a.log.Debug("find and click on login button")
	if err := a.clickRequired(sel.AccountMenu, "account menu"); err != nil {
		return err
	}

	a.log.Debug("find and click on provider login method")
	if err := a.clickRequired(sel.ProviderLogin, "provider login button"); err != nil {
		return err
	}

	a.log.Debug("wait for email field on login page")
	email, found, err := a.driver.Find(sel.EmailField, a.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		return fatalf("unable to locate login form")
	}
	if err := email.Input(a.cfg.Email); err != nil {
		return err
	}

	password, found, err := a.driver.Find(sel.PasswordField, a.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		return fatalf("unable to locate password field")
	}
	if err := password.Input(a.cfg.Password); err != nil {
		return err
	}

	if err := a.clickRequired(sel.SignInButton, "sign-in button"); err != nil {
		return err
	}

	a.log.Debug("checking for captcha")
	_, found, err = a.driver.Find(sel.CaptchaFrame, a.cfg.Timeout)
	if err != nil {
		return err
	}
	if found {
		return fatalf("captcha found, can't proceed any further")
	}
	a.log.Debug("captcha not detected")

	if a.cfg.TOTPSeed != "" {
		if err := a.submitCode(); err != nil {
			return err
		}
	}

	a.log.Debug("search for wrong credentials message")
	_, found, err = a.driver.Find(sel.InvalidCreds, a.cfg.Timeout)
	if err != nil {
		return err
	}
	if found {
		return fatalf("failed to login into account, credentials invalid")
	}

	a.log.Debug("login succeeded")
	return nil
}

func (a *Authenticator) submitCode() error {
	sel := a.cfg.Selectors

	code, err := totp.GenerateCode(a.cfg.TOTPSeed, time.Now())
	if err != nil {
		return fatalf("failed to generate 2FA code: %v", err)
	}

	a.log.Debug("wait for 2fa field on login page")
	field, found, err := a.driver.Find(sel.CodeField, a.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		return fatalf("unable to locate 2FA code field")
	}
	if err := field.Input(code); err != nil {
		return err
	}

	a.log.Debug("logging in with 2FA")
	return a.clickRequired(sel.CodeContinue, "2FA continue button")
}

func (a *Authenticator) clickRequired(xpath, what string) error {
	el, found, err := a.driver.Find(xpath, a.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		return fatalf("unable to locate %s", what)
	}
	return el.Click()
}
