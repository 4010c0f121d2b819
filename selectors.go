package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const freeGamesURL = "https://www.epicgames.com/store/en-US/free-games/"

// Selectors holds every XPath the flow touches. The storefront owns this
// markup and changes it without notice, so the whole contract lives in one
// place and any subset can be overridden from a YAML file without a rebuild.
type Selectors struct {
	AccountMenu   string `yaml:"account_menu"`
	ProviderLogin string `yaml:"provider_login"`
	EmailField    string `yaml:"email_field"`
	PasswordField string `yaml:"password_field"`
	SignInButton  string `yaml:"sign_in_button"`
	CaptchaFrame  string `yaml:"captcha_frame"`
	CodeField     string `yaml:"code_field"`
	CodeContinue  string `yaml:"code_continue"`
	InvalidCreds  string `yaml:"invalid_creds"`
	LogoutControl string `yaml:"logout_control"`

	FreeOffer        string `yaml:"free_offer"`
	CookieBannerOK   string `yaml:"cookie_banner_ok"`
	MatureContent    string `yaml:"mature_content"`
	MatureContinue   string `yaml:"mature_continue"`
	PurchaseCTA      string `yaml:"purchase_cta"`
	OfferTitle       string `yaml:"offer_title"`
	OfferPrice       string `yaml:"offer_price"`
	OfferExpiry      string `yaml:"offer_expiry"`
	EditionTitles    string `yaml:"edition_titles"`
	EditionButtons   string `yaml:"edition_buttons"`
	AgreementCheck   string `yaml:"agreement_check"`
	AgreementAccept  string `yaml:"agreement_accept"`
	PrimaryPurchase  string `yaml:"primary_purchase"`
	PurchaseComplete string `yaml:"purchase_complete"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		AccountMenu:   "//div[@id='user']",
		ProviderLogin: "//div[@id='login-with-epic']",
		EmailField:    "//input[@id='email']",
		PasswordField: "//input[@id='password']",
		SignInButton:  "//button[@id='sign-in']",
		CaptchaFrame:  "//iframe[@id='talon_frame_login_prod']",
		CodeField:     "//input[@id='code']",
		CodeContinue:  "//button[@id='continue']",
		InvalidCreds:  "//h6[contains(text(),'credentials') and contains(text(),'invalid')]",
		LogoutControl: "//a[@id='log-out']/span",

		FreeOffer:        "//a[descendant::span[text()='Free Now']]",
		CookieBannerOK:   "//div[@id='onetrust-close-btn-container']/button",
		MatureContent:    "//span[contains(text(),'mature content')]",
		MatureContinue:   "//button[contains(text(),'Continue')]",
		PurchaseCTA:      "//button[@data-testid='purchase-cta-button']",
		OfferTitle:       "//h2[contains(@class,'NavigationVertical')]",
		OfferPrice:       "//s",
		OfferExpiry:      "//span[contains(text(),'Sale ends')]",
		EditionTitles:    "//div[contains(@class,'Editions-title') or contains(@class,'AddOns-title')]",
		EditionButtons:   "//div[contains(@class,'Editions') or contains(@class,'AddOns')]//div[contains(@class,'PurchaseButton-ctaButtons')]//button",
		AgreementCheck:   "//*[@id='agree']",
		AgreementAccept:  "//button[descendant::span[text()='Accept']]",
		PrimaryPurchase:  "//button[contains(@class,'btn-primary')]",
		PurchaseComplete: "//h1/span[contains(text(),'Install')]|//span[contains(text(),'Thank you for buying')]",
	}
}

// LoadSelectors merges overrides from path on top of the defaults. Fields the
// file leaves out keep their default value.
func LoadSelectors(path string) (Selectors, error) {
	sel := DefaultSelectors()

	data, err := os.ReadFile(path)
	if err != nil {
		return sel, err
	}

	if err := yaml.Unmarshal(data, &sel); err != nil {
		return DefaultSelectors(), fmt.Errorf("failed to parse selectors file %s: %w", path, err)
	}

	return sel, nil
}
