// Package migrator lists and applies the embedded schema migrations with the
// goose provider API.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/fintab/internal/server/migrations"
	"github.com/dmitrijs2005/fintab/internal/server/models"
)

// Migrator is what the migration endpoints and the admin CLI depend on.
type Migrator interface {
	ListPending(ctx context.Context) ([]models.Migration, error)
	RunPending(ctx context.Context) ([]models.Migration, error)
}

type provider interface {
	Status(ctx context.Context) ([]*goose.MigrationStatus, error)
	Up(ctx context.Context) ([]*goose.MigrationResult, error)
}

// newProvider is a seam for tests.
var newProvider = func(db *sql.DB, fsys fs.FS) (provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, fsys)
}

// GooseMigrator runs the embedded migrations against a PostgreSQL pool.
type GooseMigrator struct {
	db   *sql.DB
	fsys fs.FS
}

func New(db *sql.DB) *GooseMigrator {
	return &GooseMigrator{db: db, fsys: migrations.Migrations}
}

func toMigration(src *goose.Source) models.Migration {
	return models.Migration{
		Path:      src.Path,
		Name:      path.Base(src.Path),
		Timestamp: src.Version,
	}
}

// ListPending returns the migrations not yet applied, in version order.
func (m *GooseMigrator) ListPending(ctx context.Context) ([]models.Migration, error) {
	p, err := newProvider(m.db, m.fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}

	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}

	pending := make([]models.Migration, 0, len(statuses))
	for _, st := range statuses {
		if st.State == goose.StatePending {
			pending = append(pending, toMigration(st.Source))
		}
	}
	return pending, nil
}

// RunPending applies every pending migration and returns those applied.
// An empty result means the schema was already current.
func (m *GooseMigrator) RunPending(ctx context.Context) ([]models.Migration, error) {
	p, err := newProvider(m.db, m.fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}

	applied := make([]models.Migration, 0, len(results))
	for _, r := range results {
		applied = append(applied, toMigration(r.Source))
	}
	return applied, nil
}

// Nop is the Migrator for stores without a schema.
type Nop struct{}

func (Nop) ListPending(context.Context) ([]models.Migration, error) { return []models.Migration{}, nil }
func (Nop) RunPending(context.Context) ([]models.Migration, error)  { return []models.Migration{}, nil }
