package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/nimasrn/paywise/pkg/prom"
)

const DefaultPaymentLinkBase = "https://example.com/payment-link"

// MockSMSSender logs instead of sending. Used when no operator URL is configured.
type MockSMSSender struct{}

func NewMockSMSSender() *MockSMSSender {
	logger.Warn("SMS operator not configured, SMS will be mocked")
	return &MockSMSSender{}
}

func (MockSMSSender) Send(_ context.Context, phone, message string) error {
	logger.Info("MOCK SMS", "to", phone, "message", message)
	prom.ObserveNotification(ChannelSMS, true, 0)
	return nil
}

type MockEmailSender struct {
	fromEmail string
}

func NewMockEmailSender(fromEmail string) *MockEmailSender {
	logger.Warn("Elastic Email not configured, email will be mocked")
	return &MockEmailSender{fromEmail: fromEmail}
}

func (m *MockEmailSender) Send(_ context.Context, email model.Email) error {
	logger.Info("MOCK EMAIL",
		"from", FromAddress(email.FromName, m.fromEmail),
		"to", email.To,
		"subject", email.Subject,
		"body", email.HTMLBody,
	)
	prom.ObserveNotification(ChannelEmail, true, 0)
	return nil
}

// MockPaymentLinkProvider returns `<base>?ref=<uuid>` without any network call.
type MockPaymentLinkProvider struct {
	base string
}

func NewMockPaymentLinkProvider(base string) *MockPaymentLinkProvider {
	if base == "" {
		base = DefaultPaymentLinkBase
	}
	return &MockPaymentLinkProvider{base: base}
}

func (m *MockPaymentLinkProvider) Create(_ context.Context, req model.PaymentLinkRequest) (*model.PaymentLink, error) {
	start := time.Now()
	link := &model.PaymentLink{URL: m.base + "?ref=" + uuid.NewString()}
	logger.Debug("MOCK payment link", "customer_id", req.CustomerID, "url", link.URL, "took", time.Since(start))
	return link, nil
}
