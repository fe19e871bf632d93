package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nimasrn/paywise/pkg/pg"
	"github.com/stretchr/testify/require"
)

// NewTestDB returns a migrated in-memory sqlite store private to t.
func NewTestDB(t testing.TB) *pg.DB {
	t.Helper()
	gdb, err := pg.CreateSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)

	db := pg.New(gdb)
	require.NoError(t, AutoMigrate(context.Background(), db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}
