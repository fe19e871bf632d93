package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/pg"
	"gorm.io/gorm"
)

type ClientRepository struct {
	*pg.DB
	transactions *TransactionRepository
}

func NewClientRepository(db *pg.DB) *ClientRepository {
	return &ClientRepository{
		DB:           db,
		transactions: NewTransactionRepository(db),
	}
}

func withOrderedTransactions(db *gorm.DB) *gorm.DB {
	return db.Preload("Transactions", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	})
}

// Create stores a new client with an empty ledger.
func (r *ClientRepository) Create(ctx context.Context, p model.ClientCreateRequest) (*model.Client, error) {
	entity := &ClientEntity{
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		PaymentHistory: model.NoPaymentHistory,
	}
	if err := r.Write(ctx).Omit("Transactions").Create(entity).Error; err != nil {
		return nil, err
	}
	return toClientModel(entity), nil
}

func (r *ClientRepository) Get(ctx context.Context, id string) (*model.Client, error) {
	var entity ClientEntity
	err := withOrderedTransactions(r.Read(ctx)).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return toClientModel(&entity), nil
}

// List returns the clients matching f in creation order.
func (r *ClientRepository) List(ctx context.Context, f model.ClientFilter) ([]*model.Client, error) {
	q := withOrderedTransactions(r.Read(ctx))
	if term := strings.ToLower(strings.TrimSpace(f.Query)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var entities []*ClientEntity
	if err := q.Order("created_at ASC, id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toClientModels(entities), nil
}

// Update merges the provided contact fields.
func (r *ClientRepository) Update(ctx context.Context, id string, p model.ClientUpdateRequest) (*model.Client, error) {
	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}

	if len(updates) > 0 {
		res := r.Write(ctx).Model(&ClientEntity{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrClientNotFound
		}
	}
	return r.Get(ctx, id)
}

// Delete removes the client and its ledger. found is false when no client had the id.
func (r *ClientRepository) Delete(ctx context.Context, id string) (found bool, err error) {
	err = r.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.transactions.DeleteByClient(ctx, id); err != nil {
			return err
		}
		res := r.Write(ctx).Where("id = ?", id).Delete(&ClientEntity{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	return found, err
}

// AppendTransaction adds txn at the end of the client's ledger and
// regenerates the payment history in the same database transaction.
func (r *ClientRepository) AppendTransaction(ctx context.Context, clientID string, txn *model.Transaction) (*model.Client, error) {
	var client *model.Client
	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		var exists int64
		if err := r.Write(ctx).Model(&ClientEntity{}).Where("id = ?", clientID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrClientNotFound
		}

		if _, err := r.transactions.Append(ctx, clientID, txn); err != nil {
			return err
		}
		txs, err := r.transactions.ListByClient(ctx, clientID)
		if err != nil {
			return err
		}

		err = r.Write(ctx).Model(&ClientEntity{}).
			Where("id = ?", clientID).
			Update("payment_history", model.FormatPaymentHistory(txs)).Error
		if err != nil {
			return err
		}

		client, err = r.Get(ctx, clientID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// SetInsights stores the result of an AI refresh.
func (r *ClientRepository) SetInsights(ctx context.Context, id string, in model.Insights) (*model.Client, error) {
	res := r.Write(ctx).Model(&ClientEntity{}).Where("id = ?", id).Updates(map[string]any{
		"prediction_score": in.PredictionScore,
		"risk_factors":     in.RiskFactors,
		"payment_summary":  in.PaymentSummary,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrClientNotFound
	}
	return r.Get(ctx, id)
}
