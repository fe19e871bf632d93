package insight

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/nimasrn/paywise/pkg/prom"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultTransactionAmount is sent to the predictor when nothing is outstanding.
const DefaultTransactionAmount = 100

// PredictionHorizon is how far ahead the predictor's due date is placed.
const PredictionHorizon = 30 * 24 * time.Hour

var ErrEmptyResponse = errors.New("insight provider returned an empty response")

type PredictionInput struct {
	ClientID          string  `json:"client_id"`
	PaymentHistory    string  `json:"payment_history"`
	TransactionAmount float64 `json:"transaction_amount"`
	DueDate           string  `json:"due_date"`
	ClientDetails     string  `json:"client_details"`
}

type Prediction struct {
	PredictionScore float64 `json:"predictionScore"`
	RiskFactors     string  `json:"riskFactors"`
}

type SummaryInput struct {
	ClientID       string `json:"client_id"`
	PaymentHistory string `json:"payment_history"`
}

type Summary struct {
	Summary string `json:"summary"`
}

// Provider scores a client's default risk and summarizes its history.
type Provider interface {
	Name() string
	Predict(ctx context.Context, in PredictionInput) (*Prediction, error)
	Summarize(ctx context.Context, in SummaryInput) (*Summary, error)
}

// RefreshError reports a failed AI refresh for one client.
type RefreshError struct {
	ClientID string
	Err      error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("failed to refresh AI insights for client %s: %v", e.ClientID, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

type Refresher struct {
	provider Provider
	now      func() time.Time
}

func NewRefresher(provider Provider) *Refresher {
	return &Refresher{
		provider: provider,
		now:      time.Now,
	}
}

// Provider returns the name of the backing provider.
func (r *Refresher) Provider() string {
	return r.provider.Name()
}

// Refresh runs prediction and summary concurrently. Either failing fails the
// whole refresh with a *RefreshError.
func (r *Refresher) Refresh(ctx context.Context, c *model.Client) (model.Insights, error) {
	start := time.Now()
	predictionIn := r.PredictionInput(c)
	summaryIn := SummaryInput{ClientID: c.ID, PaymentHistory: c.PaymentHistory}

	var (
		prediction *Prediction
		summary    *Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := r.provider.Predict(gctx, predictionIn)
		if err != nil {
			return fmt.Errorf("prediction: %w", err)
		}
		if p == nil {
			return fmt.Errorf("prediction: %w", ErrEmptyResponse)
		}
		prediction = p
		return nil
	})
	g.Go(func() error {
		s, err := r.provider.Summarize(gctx, summaryIn)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		if s == nil {
			return fmt.Errorf("summary: %w", ErrEmptyResponse)
		}
		summary = s
		return nil
	})

	err := g.Wait()
	prom.ObserveInsightRefresh(r.provider.Name(), err == nil, time.Since(start).Seconds())
	if err != nil {
		logger.Warn("[insight] refresh failed", "client_id", c.ID, "provider", r.provider.Name(), "error", err)
		return model.Insights{}, &RefreshError{ClientID: c.ID, Err: err}
	}

	return model.Insights{
		PredictionScore: ClampScore(prediction.PredictionScore),
		RiskFactors:     prediction.RiskFactors,
		PaymentSummary:  summary.Summary,
	}, nil
}

// PredictionInput builds the predictor request for c.
func (r *Refresher) PredictionInput(c *model.Client) PredictionInput {
	amount := model.OutstandingAmount(c.Transactions)
	if amount.IsZero() {
		amount = decimal.NewFromInt(DefaultTransactionAmount)
	}
	return PredictionInput{
		ClientID:          c.ID,
		PaymentHistory:    c.PaymentHistory,
		TransactionAmount: amount.InexactFloat64(),
		DueDate:           r.now().Add(PredictionHorizon).UTC().Format(time.RFC3339),
		ClientDetails: fmt.Sprintf("Client since %s. Email: %s, Phone: %s",
			c.CreatedAt.Format(model.HistoryDateLayout), c.Email, c.Phone),
	}
}

// ClampScore bounds a score to [0,100], NaN becomes 0.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(100, score))
}
