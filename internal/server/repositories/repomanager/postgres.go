// Package repomanager binds the Postgres repositories to a DBTX and owns
// the connection pool and schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/dbx"
	"github.com/dmitrijs2005/gridplanner/internal/server/migrations"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/comments"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/containers"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/items"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/shares"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Pool limits. Reorders issue one short statement per item, so a small
// pool with idle recycling is enough.
const (
	maxOpenConns    = 16
	maxIdleConns    = 4
	connMaxIdleTime = 5 * time.Minute
)

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Containers(db dbx.DBTX) containers.Repository {
	return containers.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Items(db dbx.DBTX) items.Repository {
	return items.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Shares(db dbx.DBTX) shares.Repository {
	return shares.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Comments(db dbx.DBTX) comments.Repository {
	return comments.NewPostgresRepository(db)
}

// migrateUp is swapped in tests.
var migrateUp = func(ctx context.Context, db *sql.DB) ([]*goose.MigrationResult, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Migrations)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return p.Up(ctx)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) ([]int64, error) {
	results, err := migrateUp(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}

// OpenDB opens a pgx-backed pool and checks connectivity.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}
