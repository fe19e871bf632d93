package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFromName       = "PayWise Team"
	DefaultCurrencySymbol = "₹"

	channelSMS   = "sms"
	channelEmail = "email"
)

// Notifier delivers payment requests over SMS and email.
type Notifier struct {
	sms      SMSSender
	email    EmailSender
	fromName string
	currency string
}

func NewNotifier(sms SMSSender, email EmailSender, fromName, currency string) *Notifier {
	if fromName == "" {
		fromName = DefaultFromName
	}
	if currency == "" {
		currency = DefaultCurrencySymbol
	}
	return &Notifier{
		sms:      sms,
		email:    email,
		fromName: fromName,
		currency: currency,
	}
}

// Compose renders the payment request text shared by both channels.
func (n *Notifier) Compose(clientName string, p *model.Payment) string {
	return fmt.Sprintf("Dear %s, please complete your payment of %s%s for \"%s\" using this link: %s Due: %s",
		clientName,
		n.currency,
		model.FormatAmount(p.Amount),
		p.Description,
		p.PaymentLinkURL,
		p.DueDate.Format(model.HistoryDateLayout),
	)
}

// Notify sends the request on every channel of p.CommunicationMethod
// concurrently. Channel failures are reported in the results, never returned.
func (n *Notifier) Notify(ctx context.Context, c *model.Client, p *model.Payment) []model.NotificationResult {
	message := n.Compose(c.Name, p)

	var results []model.NotificationResult
	if p.CommunicationMethod.UsesSMS() {
		results = append(results, model.NotificationResult{Channel: channelSMS})
	}
	if p.CommunicationMethod.UsesEmail() {
		results = append(results, model.NotificationResult{Channel: channelEmail})
	}

	var g errgroup.Group
	for i := range results {
		res := &results[i]
		g.Go(func() error {
			var err error
			switch res.Channel {
			case channelSMS:
				err = n.sms.Send(ctx, c.Phone, message)
			case channelEmail:
				err = n.email.Send(ctx, model.Email{
					To:       c.Email,
					Subject:  "Payment Request: " + p.Description,
					HTMLBody: "<p>" + message + "</p><p>If you have any questions, please contact us.</p>",
					FromName: n.fromName,
				})
			}
			res.Sent = err == nil
			if err != nil {
				res.Error = err.Error()
				logger.Error("[notifier] send failed", "channel", res.Channel, "client_id", c.ID, "payment_id", p.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Summary renders the aggregate outcome, e.g.
// "Payment link created for Ada. SMS sent. Email failed."
func Summary(clientName string, results []model.NotificationResult) string {
	var b strings.Builder
	b.WriteString("Payment link created for " + clientName + ".")
	for _, r := range results {
		label := "SMS"
		if r.Channel == channelEmail {
			label = "Email"
		}
		if r.Sent {
			b.WriteString(" " + label + " sent.")
		} else {
			b.WriteString(" " + label + " failed.")
		}
	}
	return b.String()
}

func notificationWarnings(results []model.NotificationResult) []string {
	var warnings []string
	for _, r := range results {
		if !r.Sent {
			warnings = append(warnings, fmt.Sprintf("%s notification failed: %s", r.Channel, r.Error))
		}
	}
	return warnings
}

// startOfDay is midnight UTC of t's day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
