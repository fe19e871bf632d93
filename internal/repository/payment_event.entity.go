package repository

import (
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/pg"
)

type PaymentEventEntity struct {
	pg.Model
	EventID    string    `gorm:"column:event_id;type:varchar(64);not null;uniqueIndex"`
	PaymentID  string    `gorm:"column:payment_id;type:varchar(36);not null;index:idx_payment_event_payment_id,priority:1"`
	ClientID   string    `gorm:"column:client_id;type:varchar(36);not null"`
	Type       string    `gorm:"column:type;type:varchar(32);not null"`
	FromStatus string    `gorm:"column:from_status;type:varchar(16);not null;default:''"`
	ToStatus   string    `gorm:"column:to_status;type:varchar(16);not null;default:''"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index:idx_payment_event_payment_id,priority:2"`
}

func (PaymentEventEntity) TableName() string {
	return "payment_event"
}

func toPaymentEventEntity(m *model.PaymentEvent) *PaymentEventEntity {
	if m == nil {
		return nil
	}
	return &PaymentEventEntity{
		Model:      pg.Model{ID: m.ID},
		EventID:    m.EventID,
		PaymentID:  m.PaymentID,
		ClientID:   m.ClientID,
		Type:       string(m.Type),
		FromStatus: string(m.FromStatus),
		ToStatus:   string(m.ToStatus),
		OccurredAt: m.OccurredAt,
	}
}

func toPaymentEventModel(e *PaymentEventEntity) *model.PaymentEvent {
	if e == nil {
		return nil
	}
	return &model.PaymentEvent{
		ID:         e.ID,
		EventID:    e.EventID,
		PaymentID:  e.PaymentID,
		ClientID:   e.ClientID,
		Type:       model.EventType(e.Type),
		FromStatus: model.PaymentStatus(e.FromStatus),
		ToStatus:   model.PaymentStatus(e.ToStatus),
		OccurredAt: e.OccurredAt,
	}
}
