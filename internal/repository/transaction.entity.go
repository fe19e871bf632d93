package repository

import (
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/pg"
	"github.com/shopspring/decimal"
)

type TransactionEntity struct {
	pg.Model
	ClientID    string          `gorm:"column:client_id;type:varchar(36);not null;uniqueIndex:idx_client_transaction_position,priority:1"`
	Position    int             `gorm:"column:position;not null;uniqueIndex:idx_client_transaction_position,priority:2"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Date        time.Time       `gorm:"column:date;not null"`
	Status      string          `gorm:"column:status;type:varchar(16);not null"`
	Description string          `gorm:"column:description;not null;default:''"`
}

func (TransactionEntity) TableName() string {
	return "client_transaction"
}

func toTransactionEntity(clientID string, position int, m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		Model:       pg.Model{ID: m.ID},
		ClientID:    clientID,
		Position:    position,
		Amount:      decimal.NewFromFloat(m.Amount),
		Date:        m.Date,
		Status:      string(m.Status),
		Description: m.Description,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:          e.ID,
		Amount:      e.Amount.InexactFloat64(),
		Date:        e.Date,
		Status:      model.TransactionStatus(e.Status),
		Description: e.Description,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
