package database

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestMigrateSQLiteUpAndDown(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, MigrateUp(ctx, db.DB, DialectSQLite))

	statuses, err := MigrationStatuses(ctx, db.DB, DialectSQLite)
	require.NoError(t, err)
	require.NotEmpty(t, statuses)
	for _, s := range statuses {
		assert.True(t, s.Applied, "migration %d not applied", s.Version)
	}

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM custom_orders"))
	assert.Zero(t, count)

	require.NoError(t, MigrateDown(ctx, db.DB, DialectSQLite))
	_, err = db.Exec("SELECT COUNT(*) FROM custom_orders")
	assert.Error(t, err)
}

func TestConversationCheckConstraint(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, MigrateUp(context.Background(), db.DB, DialectSQLite))

	_, err = db.Exec("INSERT INTO conversations (order_id, custom_order_id, created_at) VALUES (NULL, NULL, CURRENT_TIMESTAMP)")
	assert.Error(t, err)
}

func TestUnsupportedDialect(t *testing.T) {
	_, err := newProvider(nil, Dialect("oracle"))
	assert.Error(t, err)
}
