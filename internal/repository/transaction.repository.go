package repository

import (
	"context"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/pg"
)

// TransactionRepository stores the append-only client ledger.
type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

// Append stores txn as the last entry of the client's ledger.
func (r *TransactionRepository) Append(ctx context.Context, clientID string, txn *model.Transaction) (*model.Transaction, error) {
	var count int64
	if err := r.Write(ctx).Model(&TransactionEntity{}).Where("client_id = ?", clientID).Count(&count).Error; err != nil {
		return nil, err
	}

	entity := toTransactionEntity(clientID, int(count), txn)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTransactionModel(entity), nil
}

// ListByClient returns the ledger in stored order.
func (r *TransactionRepository) ListByClient(ctx context.Context, clientID string) ([]*model.Transaction, error) {
	var entities []*TransactionEntity
	err := r.Read(ctx).
		Where("client_id = ?", clientID).
		Order("position ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toTransactionModels(entities), nil
}

func (r *TransactionRepository) DeleteByClient(ctx context.Context, clientID string) error {
	return r.Write(ctx).Where("client_id = ?", clientID).Delete(&TransactionEntity{}).Error
}
