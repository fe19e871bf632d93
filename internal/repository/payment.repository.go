package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/pg"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	*pg.DB
}

func NewPaymentRepository(db *pg.DB) *PaymentRepository {
	return &PaymentRepository{
		db,
	}
}

// Create stores p. The referenced client must exist, its current name is
// copied into the payment.
func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	var created *model.Payment
	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		var client ClientEntity
		err := r.Write(ctx).Select("id", "name").Where("id = ?", p.ClientID).First(&client).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		if err != nil {
			return err
		}

		entity := toPaymentEntity(p)
		entity.ClientName = client.Name
		if entity.Status == "" {
			entity.Status = string(model.PaymentStatusLinkSent)
		}
		if err := r.Write(ctx).Create(entity).Error; err != nil {
			return err
		}
		created = toPaymentModel(entity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (*model.Payment, error) {
	var entity PaymentEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return toPaymentModel(&entity), nil
}

// List returns payments matching f in creation order.
func (r *PaymentRepository) List(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, error) {
	q := r.Read(ctx).Model(&PaymentEntity{})

	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.DueBefore != nil {
		q = q.Where("due_date < ?", *f.DueBefore)
	}

	var entities []*PaymentEntity
	if err := q.Order("created_at ASC, id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toPaymentModels(entities), nil
}

// UpdateStatus sets the status unconditionally and returns the payment as it
// was before the change together with the updated one.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) (before, after *model.Payment, err error) {
	err = r.WithinTransaction(ctx, func(ctx context.Context) error {
		var entity PaymentEntity
		err := r.Write(ctx).Where("id = ?", id).First(&entity).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		if err != nil {
			return err
		}
		before = toPaymentModel(&entity)

		if err := r.Write(ctx).Model(&entity).Update("status", string(status)).Error; err != nil {
			return err
		}
		entity.Status = string(status)
		after = toPaymentModel(&entity)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// DeleteByClient removes every payment of the client and reports how many were removed.
func (r *PaymentRepository) DeleteByClient(ctx context.Context, clientID string) (int64, error) {
	res := r.Write(ctx).Where("client_id = ?", clientID).Delete(&PaymentEntity{})
	return res.RowsAffected, res.Error
}
