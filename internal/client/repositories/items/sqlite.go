package items

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/dbx"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s.String)
}

// Replace swaps the stored rows of one container for items in a single
// transaction.
func (r *SQLiteRepository) Replace(ctx context.Context, containerID string, items []grid.Item, syncedAt time.Time) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE container_id = ?`, containerID); err != nil {
			return fmt.Errorf("failed to clear items of %s: %w", containerID, err)
		}
		for _, it := range items {
			payload, err := json.Marshal(it.Payload)
			if err != nil {
				return fmt.Errorf("failed to encode payload of %s: %w", it.ID, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO items (container_id, id, position, payload, created_at, updated_at, synced_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, containerID, it.ID, it.Position, string(payload), formatTime(it.CreatedAt), formatTime(it.UpdatedAt), formatTime(syncedAt))
			if err != nil {
				return fmt.Errorf("failed to store item %s: %w", it.ID, err)
			}
		}
		return nil
	})
}

// List returns the stored items ordered by position.
func (r *SQLiteRepository) List(ctx context.Context, containerID string) ([]grid.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, position, payload, created_at, updated_at
		FROM items WHERE container_id = ? ORDER BY position, id
	`, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var out []grid.Item
	for rows.Next() {
		var (
			it               = grid.Item{ContainerID: containerID}
			payload          string
			created, updated sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.Position, &payload, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &it.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload of %s: %w", it.ID, err)
		}
		if it.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("bad created_at of %s: %w", it.ID, err)
		}
		if it.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, fmt.Errorf("bad updated_at of %s: %w", it.ID, err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item rows: %w", err)
	}
	return out, nil
}

// SyncedAt reports when the container was last mirrored. ok is false when
// nothing is stored for it.
func (r *SQLiteRepository) SyncedAt(ctx context.Context, containerID string) (time.Time, bool, error) {
	var s sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT MAX(synced_at) FROM items WHERE container_id = ?`, containerID).Scan(&s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read sync time: %w", err)
	}
	if !s.Valid {
		return time.Time{}, false, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad synced_at: %w", err)
	}
	return t, true, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	return nil
}
