package repository

import (
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/pg"
	"github.com/shopspring/decimal"
)

type PaymentEntity struct {
	pg.Model
	ClientID            string          `gorm:"column:client_id;type:varchar(36);not null;index"`
	ClientName          string          `gorm:"column:client_name;not null"`
	Amount              decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Description         string          `gorm:"column:description;not null"`
	Status              string          `gorm:"column:status;type:varchar(16);not null;index:idx_payment_status_due,priority:1"`
	PaymentLinkURL      string          `gorm:"column:payment_link_url;not null;default:''"`
	DueDate             time.Time       `gorm:"column:due_date;not null;index:idx_payment_status_due,priority:2"`
	CommunicationMethod string          `gorm:"column:communication_method;type:varchar(8);not null"`
}

func (PaymentEntity) TableName() string {
	return "payment"
}

func toPaymentEntity(m *model.Payment) *PaymentEntity {
	if m == nil {
		return nil
	}
	return &PaymentEntity{
		Model:               pg.Model{ID: m.ID, CreatedAt: m.CreatedAt},
		ClientID:            m.ClientID,
		ClientName:          m.ClientName,
		Amount:              decimal.NewFromFloat(m.Amount),
		Description:         m.Description,
		Status:              string(m.Status),
		PaymentLinkURL:      m.PaymentLinkURL,
		DueDate:             m.DueDate,
		CommunicationMethod: string(m.CommunicationMethod),
	}
}

func toPaymentModel(e *PaymentEntity) *model.Payment {
	if e == nil {
		return nil
	}
	return &model.Payment{
		ID:                  e.ID,
		ClientID:            e.ClientID,
		ClientName:          e.ClientName,
		Amount:              e.Amount.InexactFloat64(),
		Description:         e.Description,
		Status:              model.PaymentStatus(e.Status),
		PaymentLinkURL:      e.PaymentLinkURL,
		CreatedAt:           e.CreatedAt,
		DueDate:             e.DueDate,
		CommunicationMethod: model.CommunicationMethod(e.CommunicationMethod),
	}
}

func toPaymentModels(entities []*PaymentEntity) []*model.Payment {
	models := make([]*model.Payment, len(entities))
	for i, e := range entities {
		models[i] = toPaymentModel(e)
	}
	return models
}
