package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // database/sql driver used by goose
	"github.com/pressly/goose/v3"

	"github.com/quillpost/quillpost/migrations"
)

const migrationDialect = "postgres"

// Migrate applies all pending schema migrations.
func Migrate(ctx context.Context, databaseURL string) error {
	return withMigrationDB(ctx, databaseURL, func(db *sql.DB) error {
		if err := goose.UpContext(ctx, db, "."); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		return nil
	})
}

// ResetSchema rolls back every migration and applies them again.
// Intended for tests against a disposable database.
func ResetSchema(ctx context.Context, databaseURL string) error {
	return withMigrationDB(ctx, databaseURL, func(db *sql.DB) error {
		if err := goose.ResetContext(ctx, db, "."); err != nil {
			return fmt.Errorf("reset migrations: %w", err)
		}
		if err := goose.UpContext(ctx, db, "."); err != nil {
			return fmt.Errorf("reapply migrations: %w", err)
		}
		return nil
	})
}

func withMigrationDB(ctx context.Context, databaseURL string, fn func(db *sql.DB) error) error {
	db, err := sql.Open(migrationDialect, databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping migration connection: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(migrationDialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	return fn(db)
}
