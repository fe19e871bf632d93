package bootstrap

import (
	"github.com/nimasrn/paywise/internal/config"
	gateway "github.com/nimasrn/paywise/internal/gateways"
	"github.com/nimasrn/paywise/internal/services"
)

// Providers are the notification and payment-link collaborators. Stats lists
// the live HTTP clients only.
type Providers struct {
	SMS   services.SMSSender
	Email services.EmailSender
	Links services.PaymentLinkProvider
	Stats []gateway.StatsReporter
}

// NewProviders uses a live client for every provider whose settings are
// present and falls back to the in-process mock otherwise.
func NewProviders(cfg *config.Config) Providers {
	var p Providers
	base := gateway.Config{Timeout: cfg.ProviderTimeout}

	if cfg.SMSProviderURL != "" {
		c := base
		c.BaseURL = cfg.SMSProviderURL
		sms := gateway.NewOperatorClient(c)
		p.SMS = sms
		p.Stats = append(p.Stats, sms)
	} else {
		p.SMS = gateway.NewMockSMSSender()
	}

	if cfg.ElasticEmailAPIKey != "" && cfg.ElasticEmailFromEmail != "" {
		c := base
		c.BaseURL = cfg.ElasticEmailBaseURL
		email := gateway.NewElasticEmailClient(gateway.ElasticEmailConfig{
			Config:    c,
			APIKey:    cfg.ElasticEmailAPIKey,
			FromEmail: cfg.ElasticEmailFromEmail,
		})
		p.Email = email
		p.Stats = append(p.Stats, email)
	} else {
		p.Email = gateway.NewMockEmailSender(cfg.ElasticEmailFromEmail)
	}

	if cfg.PaymentGatewayURL != "" {
		c := base
		c.BaseURL = cfg.PaymentGatewayURL
		links := gateway.NewPaymentLinkClient(c)
		p.Links = links
		p.Stats = append(p.Stats, links)
	} else {
		p.Links = gateway.NewMockPaymentLinkProvider(cfg.PaymentLinkBaseURL)
	}

	return p
}
