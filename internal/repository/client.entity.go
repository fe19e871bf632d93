package repository

import (
	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/pg"
)

type ClientEntity struct {
	pg.Model
	Name            string               `gorm:"column:name;not null"`
	Email           string               `gorm:"column:email;not null"`
	Phone           string               `gorm:"column:phone;not null"`
	PaymentHistory  string               `gorm:"column:payment_history;not null"`
	PredictionScore *float64             `gorm:"column:prediction_score"`
	RiskFactors     *string              `gorm:"column:risk_factors"`
	PaymentSummary  *string              `gorm:"column:payment_summary"`
	Transactions    []*TransactionEntity `gorm:"foreignKey:ClientID"`
}

func (ClientEntity) TableName() string {
	return "client"
}

func toClientEntity(m *model.Client) *ClientEntity {
	if m == nil {
		return nil
	}
	return &ClientEntity{
		Model:           pg.Model{ID: m.ID, CreatedAt: m.CreatedAt},
		Name:            m.Name,
		Email:           m.Email,
		Phone:           m.Phone,
		PaymentHistory:  m.PaymentHistory,
		PredictionScore: m.PredictionScore,
		RiskFactors:     m.RiskFactors,
		PaymentSummary:  m.PaymentSummary,
	}
}

func toClientModel(e *ClientEntity) *model.Client {
	if e == nil {
		return nil
	}
	txs := toTransactionModels(e.Transactions)
	return &model.Client{
		ID:              e.ID,
		Name:            e.Name,
		Email:           e.Email,
		Phone:           e.Phone,
		PaymentHistory:  e.PaymentHistory,
		Transactions:    txs,
		PredictionScore: e.PredictionScore,
		RiskFactors:     e.RiskFactors,
		PaymentSummary:  e.PaymentSummary,
		CreatedAt:       e.CreatedAt,
	}
}

func toClientModels(entities []*ClientEntity) []*model.Client {
	models := make([]*model.Client, len(entities))
	for i, e := range entities {
		models[i] = toClientModel(e)
	}
	return models
}
