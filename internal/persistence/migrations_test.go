package persistence

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func TestRunMigrationsWithoutPool(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, t.TempDir(), zap.NewNop()); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
}

func TestRunMigrationsEmptyDir(t *testing.T) {
	// pool connects lazily; an empty dir must return before any statement runs
	pool, err := pgxpool.New(context.Background(), "postgres://127.0.0.1:1/none")
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	defer pool.Close()

	if err := RunMigrations(context.Background(), pool, t.TempDir(), zap.NewNop()); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
}
