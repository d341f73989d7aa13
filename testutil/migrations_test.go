package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrek/planner/backend/migrations"
	"github.com/novatrek/planner/backend/testutil"
)

// TestMigrations applies every migration, checks the planner tables and the
// constraints the scheduling code relies on, then rolls everything back.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")

	// Another package's TestMain may have migrated this shared database
	// already; start from zero so the test is order-independent.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.Len(t, results, 4)

	for _, table := range testutil.Tables {
		assert.True(t, tableExists(t, db, table), "table %q after up", table)
	}
	assert.True(t, constraintExists(t, db, "days", "days_trip_date_key"), "one day per trip and date")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")

	for _, table := range testutil.Tables {
		assert.False(t, tableExists(t, db, table), "table %q after reset", table)
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}

func constraintExists(t *testing.T, db *sql.DB, table, name string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.table_constraints
			WHERE table_schema = 'public' AND table_name = $1 AND constraint_name = $2
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table, name).Scan(&exists))
	return exists
}
