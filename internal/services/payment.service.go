package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/nimasrn/paywise/pkg/prom"
	"github.com/shopspring/decimal"
)

const providerPaymentLink = "payment-link"

type PaymentService struct {
	payments  PaymentRepository
	clients   ClientRepository
	audit     PaymentEventRepository
	links     PaymentLinkProvider
	notifier  *Notifier
	refresher InsightRefresher
	events    EventPublisher
	now       func() time.Time
}

func NewPaymentService(
	payments PaymentRepository,
	clients ClientRepository,
	audit PaymentEventRepository,
	links PaymentLinkProvider,
	notifier *Notifier,
	refresher InsightRefresher,
	events EventPublisher,
) *PaymentService {
	return &PaymentService{
		payments:  payments,
		clients:   clients,
		audit:     audit,
		links:     links,
		notifier:  notifier,
		refresher: refresher,
		events:    events,
		now:       time.Now,
	}
}

// Request creates a payment link, stores the payment as link_sent and
// notifies the client. Only a payment-link failure aborts the request,
// notification failures are reported per channel.
func (s *PaymentService) Request(ctx context.Context, p model.PaymentCreateRequest) (*PaymentRequestResult, error) {
	p.Description = strings.TrimSpace(p.Description)
	if err := p.Validate(); err != nil {
		prom.IncPaymentRequest("invalid")
		return nil, validationError(err)
	}

	client, err := s.clients.Get(ctx, p.ClientID)
	if err != nil {
		prom.IncPaymentRequest("client_not_found")
		return nil, mapRepoError(err)
	}

	link, err := s.links.Create(ctx, model.PaymentLinkRequest{
		Amount:      p.Amount,
		Description: p.Description,
		CustomerID:  client.ID,
	})
	if err != nil {
		prom.IncPaymentRequest("link_failed")
		return nil, &ProviderError{Provider: providerPaymentLink, Err: err}
	}

	payment, err := s.payments.Create(ctx, &model.Payment{
		ClientID:            client.ID,
		Amount:              p.Amount,
		Description:         p.Description,
		Status:              model.PaymentStatusLinkSent,
		PaymentLinkURL:      link.URL,
		DueDate:             p.DueDate.UTC(),
		CommunicationMethod: p.CommunicationMethod,
	})
	if err != nil {
		prom.IncPaymentRequest("store_failed")
		return nil, mapRepoError(err)
	}
	prom.IncPaymentRequest("created")
	publish(ctx, s.events, &model.Event{
		Type:      model.EventPaymentRequested,
		ClientID:  payment.ClientID,
		PaymentID: payment.ID,
		ToStatus:  payment.Status,
		Amount:    payment.Amount,
	})

	results := s.notifier.Notify(ctx, client, payment)
	logger.Info("[payment] requested", "payment_id", payment.ID, "client_id", client.ID, "method", payment.CommunicationMethod)

	return &PaymentRequestResult{
		Payment:       payment,
		Notifications: results,
		Message:       Summary(client.Name, results),
		Warnings:      notificationWarnings(results),
	}, nil
}

func (s *PaymentService) Get(ctx context.Context, id string) (*model.Payment, error) {
	p, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return p, nil
}

func (s *PaymentService) List(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, error) {
	if err := f.Validate(); err != nil {
		return nil, validationError(err)
	}
	return s.payments.List(ctx, f)
}

func (s *PaymentService) ListByClient(ctx context.Context, clientID string) ([]*model.Payment, error) {
	if _, err := s.clients.Get(ctx, clientID); err != nil {
		return nil, mapRepoError(err)
	}
	return s.payments.List(ctx, model.PaymentFilter{ClientID: clientID})
}

// UpdateStatus applies status unconditionally. paid and failed append a
// ledger entry to the client in the same database transaction, then refresh
// its insights best-effort.
func (s *PaymentService) UpdateStatus(ctx context.Context, id string, p model.PaymentStatusUpdateRequest) (*PaymentStatusResult, error) {
	if err := p.Validate(); err != nil {
		return nil, validationError(err)
	}

	var (
		before, after *model.Payment
		client        *model.Client
		warnings      []string
	)
	err := s.payments.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		before, after, err = s.payments.UpdateStatus(ctx, id, p.Status)
		if err != nil {
			return mapRepoError(err)
		}

		txStatus, ok := after.Status.TransactionStatus()
		if !ok {
			return nil
		}
		client, err = s.clients.AppendTransaction(ctx, after.ClientID, &model.Transaction{
			Amount:      after.Amount,
			Date:        s.now().UTC(),
			Status:      txStatus,
			Description: "Payment for request: " + after.Description,
		})
		if errors.Is(mapRepoError(err), ErrClientNotFound) {
			logger.Warn("[payment] client missing, no transaction recorded", "payment_id", after.ID, "client_id", after.ClientID)
			warnings = append(warnings, "client not found, no transaction recorded")
			return nil
		}
		if err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	prom.IncPaymentStatusChange(string(after.Status))
	s.publishStatusChange(ctx, before, after)

	result := &PaymentStatusResult{Payment: after, Client: client, Warnings: warnings}
	if client == nil {
		return result, nil
	}

	refreshed, err := refreshInsights(ctx, s.clients, s.refresher, client)
	if err != nil {
		logger.Warn("[payment] AI refresh after status update failed", "payment_id", after.ID, "client_id", client.ID, "error", err)
		result.Warnings = append(result.Warnings, err.Error())
		return result, nil
	}
	result.Client = refreshed
	return result, nil
}

// ExpireOverdue marks every link_sent payment due before today as expired.
func (s *PaymentService) ExpireOverdue(ctx context.Context) (*ExpiryResult, error) {
	cutoff := startOfDay(s.now())
	due, err := s.payments.List(ctx, model.PaymentFilter{
		Statuses:  []model.PaymentStatus{model.PaymentStatusLinkSent},
		DueBefore: &cutoff,
	})
	if err != nil {
		return nil, fmt.Errorf("list overdue payments: %w", err)
	}

	result := &ExpiryResult{Expired: make([]*model.Payment, 0, len(due))}
	for _, p := range due {
		before, after, err := s.payments.UpdateStatus(ctx, p.ID, model.PaymentStatusExpired)
		if err != nil {
			if errors.Is(mapRepoError(err), ErrPaymentNotFound) {
				continue
			}
			return result, fmt.Errorf("expire payment %s: %w", p.ID, err)
		}
		s.publishStatusChange(ctx, before, after)
		result.Expired = append(result.Expired, after)
	}

	if n := len(result.Expired); n > 0 {
		prom.AddPaymentsExpired(n)
		logger.Info("[payment] expired overdue payments", "count", n, "cutoff", cutoff)
	}
	return result, nil
}

// Events returns the audit trail of a payment.
func (s *PaymentService) Events(ctx context.Context, id string) ([]*model.PaymentEvent, error) {
	if _, err := s.payments.Get(ctx, id); err != nil {
		return nil, mapRepoError(err)
	}
	return s.audit.ListByPayment(ctx, id)
}

func (s *PaymentService) publishStatusChange(ctx context.Context, before, after *model.Payment) {
	publish(ctx, s.events, &model.Event{
		Type:       model.EventPaymentStatusChanged,
		ClientID:   after.ClientID,
		PaymentID:  after.ID,
		FromStatus: before.Status,
		ToStatus:   after.Status,
		Amount:     after.Amount,
	})
}

// Dashboard aggregates income, pending dues and the prediction score spread
// across all clients. Sums are computed in decimal.
func (s *PaymentService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	payments, err := s.payments.List(ctx, model.PaymentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	clients, err := s.clients.List(ctx, model.ClientFilter{})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	d := &model.Dashboard{ClientCount: len(clients), ScoreDistribution: model.NewScoreDistribution()}

	income, pending := decimal.Zero, decimal.Zero
	for _, p := range payments {
		switch {
		case p.Status == model.PaymentStatusPaid:
			income = income.Add(decimal.NewFromFloat(p.Amount))
		case p.Status.IsPending():
			pending = pending.Add(decimal.NewFromFloat(p.Amount))
			d.PendingPayments++
		}
	}
	d.TotalIncome = income.InexactFloat64()
	d.PendingDues = pending.InexactFloat64()

	if len(clients) == 0 {
		return d, nil
	}
	scores := decimal.Zero
	for _, c := range clients {
		var score float64
		if c.PredictionScore != nil {
			score = *c.PredictionScore
		}
		scores = scores.Add(decimal.NewFromFloat(score))
		d.ScoreDistribution[model.ScoreBucketIndex(score)].Clients++
	}
	d.AveragePredictionScore = scores.Div(decimal.NewFromInt(int64(len(clients)))).Round(2).InexactFloat64()
	return d, nil
}
