package repository

import (
	"context"

	"github.com/nimasrn/paywise/pkg/pg"
)

// AutoMigrate creates the tables on the sqlite store. Postgres deployments
// run the goose migrations from cmd/cli instead.
func AutoMigrate(ctx context.Context, db *pg.DB) error {
	return db.Write(ctx).AutoMigrate(
		&ClientEntity{},
		&TransactionEntity{},
		&PaymentEntity{},
		&PaymentEventEntity{},
	)
}
