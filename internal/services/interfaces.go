package services

import (
	"context"

	"github.com/nimasrn/paywise/internal/model"
)

type ClientRepository interface {
	Create(ctx context.Context, p model.ClientCreateRequest) (*model.Client, error)
	Get(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context, f model.ClientFilter) ([]*model.Client, error)
	Update(ctx context.Context, id string, p model.ClientUpdateRequest) (*model.Client, error)
	Delete(ctx context.Context, id string) (bool, error)
	AppendTransaction(ctx context.Context, clientID string, txn *model.Transaction) (*model.Client, error)
	SetInsights(ctx context.Context, id string, in model.Insights) (*model.Client, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) (*model.Payment, error)
	Get(ctx context.Context, id string) (*model.Payment, error)
	List(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, error)
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) (before, after *model.Payment, err error)
	DeleteByClient(ctx context.Context, clientID string) (int64, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type PaymentEventRepository interface {
	ListByPayment(ctx context.Context, paymentID string) ([]*model.PaymentEvent, error)
}

type InsightRefresher interface {
	Refresh(ctx context.Context, c *model.Client) (model.Insights, error)
}

// EventPublisher pushes domain events to the event stream. A nil publisher
// disables publishing.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *model.Event) error
}

type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

type EmailSender interface {
	Send(ctx context.Context, email model.Email) error
}

type PaymentLinkProvider interface {
	Create(ctx context.Context, req model.PaymentLinkRequest) (*model.PaymentLink, error)
}
