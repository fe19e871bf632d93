package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/logger"
)

type ClientService struct {
	clients   ClientRepository
	payments  PaymentRepository
	refresher InsightRefresher
	events    EventPublisher
	now       func() time.Time
}

func NewClientService(clients ClientRepository, payments PaymentRepository, refresher InsightRefresher, events EventPublisher) *ClientService {
	return &ClientService{
		clients:   clients,
		payments:  payments,
		refresher: refresher,
		events:    events,
		now:       time.Now,
	}
}

// Create stores a new client and then tries an AI refresh. A failed refresh
// leaves the client without insights and is reported as a warning.
func (s *ClientService) Create(ctx context.Context, p model.ClientCreateRequest) (*ClientResult, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	if err := p.Validate(); err != nil {
		return nil, validationError(err)
	}

	created, err := s.clients.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	publish(ctx, s.events, &model.Event{Type: model.EventClientCreated, ClientID: created.ID})

	return s.refreshBestEffort(ctx, created), nil
}

func (s *ClientService) Get(ctx context.Context, id string) (*model.Client, error) {
	c, err := s.clients.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return c, nil
}

func (s *ClientService) List(ctx context.Context, f model.ClientFilter) ([]*model.Client, error) {
	return s.clients.List(ctx, f)
}

func (s *ClientService) Update(ctx context.Context, id string, p model.ClientUpdateRequest) (*ClientResult, error) {
	if err := p.Validate(); err != nil {
		return nil, validationError(err)
	}

	updated, err := s.clients.Update(ctx, id, p)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.refreshBestEffort(ctx, updated), nil
}

// Delete removes the client together with its payments.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	var removed int64
	err := s.clients.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.payments.DeleteByClient(ctx, id)
		if err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		removed = n

		found, err := s.clients.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete client: %w", err)
		}
		if !found {
			return ErrClientNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("[client] deleted", "client_id", id, "payments_removed", removed)
	publish(ctx, s.events, &model.Event{Type: model.EventClientDeleted, ClientID: id})
	return nil
}

// RefreshAI recomputes the client's insights. Unlike the refresh that follows
// a mutation, a provider failure here is returned to the caller.
func (s *ClientService) RefreshAI(ctx context.Context, id string) (*model.Client, error) {
	c, err := s.clients.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return refreshInsights(ctx, s.clients, s.refresher, c)
}

// AddTransaction appends a manual ledger entry and refreshes insights best-effort.
func (s *ClientService) AddTransaction(ctx context.Context, id string, p model.TransactionCreateRequest) (*ClientResult, error) {
	p.Description = strings.TrimSpace(p.Description)
	if err := p.Validate(); err != nil {
		return nil, validationError(err)
	}

	date := s.now().UTC()
	if p.Date != nil {
		date = p.Date.UTC()
	}
	updated, err := s.clients.AppendTransaction(ctx, id, &model.Transaction{
		Amount:      p.Amount,
		Date:        date,
		Status:      p.Status,
		Description: p.Description,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.refreshBestEffort(ctx, updated), nil
}

func (s *ClientService) refreshBestEffort(ctx context.Context, c *model.Client) *ClientResult {
	refreshed, err := refreshInsights(ctx, s.clients, s.refresher, c)
	if err != nil {
		logger.Warn("[client] AI refresh skipped", "client_id", c.ID, "error", err)
		return &ClientResult{Client: c, Warnings: []string{err.Error()}}
	}
	return &ClientResult{Client: refreshed}
}

// refreshInsights runs the refresher for c and stores the result.
func refreshInsights(ctx context.Context, clients ClientRepository, refresher InsightRefresher, c *model.Client) (*model.Client, error) {
	in, err := refresher.Refresh(ctx, c)
	if err != nil {
		return nil, err
	}
	updated, err := clients.SetInsights(ctx, c.ID, in)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return updated, nil
}
