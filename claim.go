package main

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Purchase-button labels that drive the per-offer branch. Anything else is
// unrecognized and never acted on.
const (
	labelOwned    = "OWNED"
	labelGet      = "GET"
	labelEditions = "SEE EDITIONS"
)

// metadataProbe bounds the best-effort reads of title/price/expiry. Those
// elements are missing on some offers, so they get a short probe instead of
// the full wait.
const metadataProbe = time.Second

// Claimer enumerates the free offers on the promotions page and runs the
// purchase flow for each one that is claimable.
type Claimer struct {
	driver Driver
	cfg    *Config
	log    *zap.SugaredLogger
}

func NewClaimer(driver Driver, cfg *Config, log *zap.SugaredLogger) *Claimer {
	return &Claimer{driver: driver, cfg: cfg, log: log}
}

// Run processes every offer currently listed. Offers are iterated by index
// and the list is re-queried before each one: the DOM rebuilds after every
// navigation, so a handle captured here would be stale by the next pass.
func (c *Claimer) Run() error {
	sel := c.cfg.Selectors

	c.log.Debug("wait for and get all free offers available")
	offers, found, err := c.driver.FindAll(sel.FreeOffer, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		c.log.Error("no free offers found")
		return nil
	}

	// The cookie banner overlaps the purchase button, close it once up front.
	banner, found, err := c.driver.Find(sel.CookieBannerOK, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if found {
		c.log.Debug("close the cookies banner")
		if err := banner.Click(); err != nil {
			return err
		}
	} else {
		c.log.Debug("no cookies banner to close")
	}

	total := len(offers)
	for i := 0; i < total; i++ {
		if err := c.claimOffer(i); err != nil {
			return err
		}

		// Return to the promotions page so the next index starts from a
		// known location regardless of where the purchase flow ended up.
		if err := c.driver.Navigate(freeGamesURL); err != nil {
			return err
		}
	}

	c.log.Info("all offers processed")
	return nil
}

func (c *Claimer) claimOffer(i int) error {
	sel := c.cfg.Selectors

	offers, found, err := c.driver.FindAll(sel.FreeOffer, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found || i >= len(offers) {
		c.log.Warnf("offer list no longer has an entry at index %d, skipping", i)
		return nil
	}

	if err := offers[i].Click(); err != nil {
		return err
	}

	if err := c.bypassMatureGate(); err != nil {
		return err
	}

	c.log.Debug("find the purchase button")
	cta, found, err := c.driver.Find(sel.PurchaseCTA, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("purchase button did not appear for offer %d", i)
	}

	name := c.textOf(sel.OfferTitle)
	price := c.textOf(sel.OfferPrice)
	expires := c.textOf(sel.OfferExpiry)

	label, err := cta.Text()
	if err != nil {
		return err
	}

	switch strings.TrimSpace(label) {
	case labelOwned:
		c.log.Infof("%q already owned. Price was %s and %s", name, price, expires)
	case labelGet:
		c.log.Infof("obtaining %q", name)
		if err := cta.Click(); err != nil {
			return err
		}
		if err := c.purchase(); err != nil {
			return err
		}
		c.log.Infof("obtained %q. Price was %s and %s", name, price, expires)
	case labelEditions:
		return c.claimEditions(name)
	default:
		c.log.Warnf("purchase button text not recognized: %s", label)
	}

	return nil
}

// claimEditions handles an offer that lists editions and add-ons instead of
// a direct purchase. The titles are captured once, before any navigation,
// because purchasing a sub-item rebuilds the list; buttons are re-resolved
// by position on every pass.
func (c *Claimer) claimEditions(name string) error {
	sel := c.cfg.Selectors

	c.log.Debugf("processing editions for %q", name)
	titleEls, found, err := c.driver.FindAll(sel.EditionTitles, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		c.log.Warnf("%q advertises editions but none were listed", name)
		return nil
	}

	titles := make([]string, len(titleEls))
	for t, el := range titleEls {
		if titles[t], err = el.Text(); err != nil {
			return err
		}
	}

	for t := range titles {
		buttons, found, err := c.driver.FindAll(sel.EditionButtons, c.cfg.Timeout)
		if err != nil {
			return err
		}
		if !found || t >= len(buttons) {
			c.log.Warnf("edition list no longer has an entry at index %d (%q), stopping", t, titles[t])
			return nil
		}

		label, err := buttons[t].Text()
		if err != nil {
			return err
		}

		switch strings.TrimSpace(label) {
		case labelOwned:
			c.log.Infof("%q - %q already owned", name, titles[t])
		case labelGet:
			if err := buttons[t].Click(); err != nil {
				return err
			}
			if err := c.purchase(); err != nil {
				return err
			}
			c.log.Infof("obtained %q - %q", name, titles[t])

			if err := c.driver.Back(); err != nil {
				return err
			}
		default:
			c.log.Warnf("edition button text not recognized: %s", label)
		}
	}

	return nil
}

// bypassMatureGate clicks through the mature-content interstitial when one
// covers the offer page.
func (c *Claimer) bypassMatureGate() error {
	sel := c.cfg.Selectors

	c.log.Debug("bypass mature content block")
	_, found, err := c.driver.Find(sel.MatureContent, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		c.log.Debug("no mature content block to bypass")
		return nil
	}

	cont, found, err := c.driver.Find(sel.MatureContinue, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		c.log.Debug("mature content continue button never appeared")
		return nil
	}
	return cont.Click()
}

// purchase drives one item from purchase intent to confirmed owned. The
// agreement and refund interstitials only show up for some items; their
// absence within the bound is the normal case, not a failure.
func (c *Claimer) purchase() error {
	sel := c.cfg.Selectors

	c.log.Debug("find and accept license agreement")
	agree, found, err := c.driver.Find(sel.AgreementCheck, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if found {
		if err := c.acceptAgreement(agree); err != nil {
			return err
		}
	} else {
		c.log.Debug("no license agreement found")
	}

	c.log.Debug("find and click on the last purchase button")
	primary, found, err := c.driver.Find(sel.PrimaryPurchase, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("purchase confirmation button did not appear")
	}
	if err := primary.Click(); err != nil {
		return err
	}

	// The refund notice reuses the primary button style; when it shows up
	// there are at least two matches and the second one confirms it.
	all, found, err := c.driver.FindAll(sel.PrimaryPurchase, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if found && len(all) >= 2 {
		c.log.Debug("accept the conditions of refund popup")
		if err := all[1].Click(); err != nil {
			return err
		}
	} else {
		c.log.Debug("no refund conditions popup to accept")
	}

	c.log.Debug("wait for confirmation that checkout is complete")
	_, found, err = c.driver.Find(sel.PurchaseComplete, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("purchase confirmation never appeared")
	}

	return nil
}

// acceptAgreement clicks through the license interstitial: agree checkbox,
// accept button, then the purchase call-to-action again. A missing follow-up
// control is treated like the whole interstitial being absent.
func (c *Claimer) acceptAgreement(agree Element) error {
	sel := c.cfg.Selectors

	if err := agree.Click(); err != nil {
		return err
	}

	accept, found, err := c.driver.Find(sel.AgreementAccept, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		c.log.Debug("agreement accept button never appeared")
		return nil
	}
	if err := accept.Click(); err != nil {
		return err
	}

	c.log.Debug("find and click again the purchase button")
	cta, found, err := c.driver.Find(sel.PurchaseCTA, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if !found {
		c.log.Debug("purchase button not shown again after agreement")
		return nil
	}
	return cta.Click()
}

// textOf reads display text best-effort; the element is absent on some
// offers and the value is only used for logging.
func (c *Claimer) textOf(xpath string) string {
	el, found, err := c.driver.Find(xpath, metadataProbe)
	if err != nil || !found {
		return "unknown"
	}

	text, err := el.Text()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(text)
}
