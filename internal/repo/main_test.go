package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/novatrek/planner/backend/migrations"
	"github.com/novatrek/planner/backend/testutil"
)

// TestMain migrates the test database once for the whole package. Each test
// then works inside its own rolled-back transaction (testutil.BeginTx).
// Without TEST_DATABASE_URL every test skips itself.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(m.Run())
	}

	db := testutil.MustOpenSQLDB(dsn)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		log.Fatalf("repo TestMain: goose provider: %v", err)
	}
	res, err := provider.Up(context.Background())
	if err != nil {
		log.Fatalf("repo TestMain: migrate: %v", err)
	}
	log.Printf("repo TestMain: applied %d migrations", len(res))
	db.Close()

	os.Exit(m.Run())
}
