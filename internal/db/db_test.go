package db

import (
	"context"
	"os"
	"testing"
	"time"
)

// testDB connects to the database named by TEST_DATABASE_URL and ensures
// the schema exists. Tests that need a real database skip when the
// variable is unset, so the unit suite stays runnable without Postgres.
func testDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := New(ctx, url)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(database.Close)

	if err := database.InitSchema(ctx); err != nil {
		t.Fatalf("initializing schema: %v", err)
	}
	return database
}
