package repository

import (
	"context"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/pg"
	"gorm.io/gorm/clause"
)

type PaymentEventRepository struct {
	*pg.DB
}

func NewPaymentEventRepository(db *pg.DB) *PaymentEventRepository {
	return &PaymentEventRepository{
		db,
	}
}

// Create records ev once, a second row with the same event id returns ErrDuplicateEvent.
func (r *PaymentEventRepository) Create(ctx context.Context, ev *model.PaymentEvent) (*model.PaymentEvent, error) {
	entity := toPaymentEventEntity(ev)
	res := r.Write(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(entity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicateEvent
	}
	return toPaymentEventModel(entity), nil
}

// ListByPayment returns the audit trail of one payment, oldest first.
func (r *PaymentEventRepository) ListByPayment(ctx context.Context, paymentID string) ([]*model.PaymentEvent, error) {
	var entities []*PaymentEventEntity
	err := r.Read(ctx).
		Where("payment_id = ?", paymentID).
		Order("occurred_at ASC, created_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	events := make([]*model.PaymentEvent, len(entities))
	for i, e := range entities {
		events[i] = toPaymentEventModel(e)
	}
	return events, nil
}
