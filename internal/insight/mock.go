package insight

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nimasrn/paywise/internal/model"
)

// MockProvider derives a deterministic score and summary from the status
// counts in the payment history text. It is used when no model is configured.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (MockProvider) Name() string { return "mock" }

type statusCounts struct {
	total, paid, failed, overdue, pending int
}

func countStatuses(history string) statusCounts {
	var c statusCounts
	if history == model.NoPaymentHistory {
		return c
	}
	for _, line := range strings.Split(history, "\n") {
		idx := strings.Index(line, "Status: ")
		if idx < 0 {
			continue
		}
		status := line[idx+len("Status: "):]
		if end := strings.Index(status, ","); end >= 0 {
			status = status[:end]
		}
		c.total++
		switch model.TransactionStatus(strings.TrimSpace(status)) {
		case model.TransactionStatusPaid:
			c.paid++
		case model.TransactionStatusFailed:
			c.failed++
		case model.TransactionStatusOverdue:
			c.overdue++
		case model.TransactionStatusPending:
			c.pending++
		}
	}
	return c
}

func (MockProvider) Predict(_ context.Context, in PredictionInput) (*Prediction, error) {
	c := countStatuses(in.PaymentHistory)
	if c.total == 0 {
		return &Prediction{
			PredictionScore: 50,
			RiskFactors:     "No payment history available, risk cannot be assessed yet.",
		}, nil
	}

	weighted := float64(c.failed) + float64(c.overdue) + 0.5*float64(c.pending)
	score := math.Round(100 * weighted / float64(c.total))

	var factors []string
	if c.failed > 0 {
		factors = append(factors, fmt.Sprintf("%d failed payment(s)", c.failed))
	}
	if c.overdue > 0 {
		factors = append(factors, fmt.Sprintf("%d overdue payment(s)", c.overdue))
	}
	if c.pending > 0 {
		factors = append(factors, fmt.Sprintf("%d pending payment(s) totalling %s", c.pending, formatFloat(in.TransactionAmount)))
	}
	if len(factors) == 0 {
		factors = append(factors, fmt.Sprintf("all %d payment(s) completed", c.paid))
	}

	return &Prediction{
		PredictionScore: ClampScore(score),
		RiskFactors:     strings.Join(factors, "; "),
	}, nil
}

func (MockProvider) Summarize(_ context.Context, in SummaryInput) (*Summary, error) {
	c := countStatuses(in.PaymentHistory)
	if c.total == 0 {
		return &Summary{Summary: "The client has no recorded transactions yet."}, nil
	}
	return &Summary{Summary: fmt.Sprintf(
		"%d transaction(s) on record: %d paid, %d failed, %d overdue, %d pending.",
		c.total, c.paid, c.failed, c.overdue, c.pending)}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
