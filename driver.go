package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// Element is one located DOM node.
type Element interface {
	Click() error
	Input(text string) error
	Text() (string, error)
}

// Driver is the browser surface the login and claim flows run against.
//
// Find and FindAll wait up to timeout for a match to become visible and
// report absence explicitly: found=false means "did not appear within the
// bound", err means the session itself failed. The site cannot distinguish
// "not rendered yet" from "will never render" except by the bound, so each
// call site decides whether absence is expected (interstitials) or an error
// (required controls).
//
// Implementations never retain element handles across Navigate, Back or
// Reload. Callers must re-resolve by position after any navigation.
type Driver interface {
	Navigate(url string) error
	Reload() error
	Back() error
	SetCookie(c SessionCookie) error
	Cookies() ([]SessionCookie, error)
	Find(xpath string, timeout time.Duration) (Element, bool, error)
	FindAll(xpath string, timeout time.Duration) ([]Element, bool, error)
}

type rodDriver struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	log      *zap.SugaredLogger
}

func newRodDriver(cfg *Config, log *zap.SugaredLogger) (*rodDriver, error) {
	// Disable leakless mode on Windows to prevent deadlock
	// See: https://github.com/go-rod/rod/issues/853
	useLeakless := runtime.GOOS != "windows"

	l := launcher.New().
		Leakless(useLeakless).
		Headless(!cfg.Debug).
		Set("no-sandbox").
		Set("disable-dev-shm-usage")

	if cfg.Debug {
		// Some of the storefront's styles are viewport-dependent, so pin the
		// window size in visible mode.
		l = l.Set("window-size", "800,600")
	}

	if chromePath, ok := launcher.LookPath(); ok {
		l = l.Bin(chromePath)
		log.Debugf("using system browser at %s", chromePath)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	return &rodDriver{browser: browser, page: page, launcher: l, log: log}, nil
}

func (d *rodDriver) Close() {
	if d.page != nil {
		d.page.Close()
	}
	if d.browser != nil {
		d.browser.Close()
	}
	if d.launcher != nil {
		d.launcher.Cleanup()
	}
}

func (d *rodDriver) Navigate(url string) error {
	if err := d.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return d.page.WaitLoad()
}

func (d *rodDriver) Reload() error {
	if err := d.page.Reload(); err != nil {
		return fmt.Errorf("failed to reload page: %w", err)
	}
	return d.page.WaitLoad()
}

func (d *rodDriver) Back() error {
	if err := d.page.NavigateBack(); err != nil {
		return fmt.Errorf("failed to navigate back: %w", err)
	}
	return d.page.WaitLoad()
}

func (d *rodDriver) SetCookie(c SessionCookie) error {
	return d.page.SetCookies([]*proto.NetworkCookieParam{{
		Name:   c.Name,
		Value:  c.Value,
		Domain: c.Domain,
	}})
}

func (d *rodDriver) Cookies() ([]SessionCookie, error) {
	cookies, err := d.page.Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	out := make([]SessionCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, SessionCookie{Name: c.Name, Value: c.Value, Domain: c.Domain})
	}
	return out, nil
}

func (d *rodDriver) Find(xpath string, timeout time.Duration) (Element, bool, error) {
	el, err := d.page.Timeout(timeout).ElementX(xpath)
	if err != nil {
		return nil, false, absence(err)
	}

	if err := el.WaitVisible(); err != nil {
		return nil, false, absence(err)
	}

	return rodElement{el: el.CancelTimeout()}, true, nil
}

func (d *rodDriver) FindAll(xpath string, timeout time.Duration) ([]Element, bool, error) {
	// ElementsX does not wait, so first wait for at least one match to show
	// up, then collect the full list.
	if _, err := d.page.Timeout(timeout).ElementX(xpath); err != nil {
		return nil, false, absence(err)
	}

	els, err := d.page.ElementsX(xpath)
	if err != nil {
		return nil, false, err
	}

	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, rodElement{el: el})
	}
	return out, true, nil
}

// absence maps a deadline expiry to the nil "not found within bound" result
// and keeps every other error as a session failure.
func absence(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

type rodElement struct {
	el *rod.Element
}

func (e rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e rodElement) Input(text string) error {
	return e.el.Input(text)
}

func (e rodElement) Text() (string, error) {
	return e.el.Text()
}
