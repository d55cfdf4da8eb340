package items

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/dbx"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/pgerr"
)

const positionConstraint = "items_container_position_key"

const columns = `container_id, id, position, payload, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (grid.Item, error) {
	var it grid.Item
	var raw []byte
	if err := s.Scan(&it.ContainerID, &it.ID, &it.Position, &raw, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return grid.Item{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &it.Payload); err != nil {
			return grid.Item{}, fmt.Errorf("decode payload of %s: %w", it.ID, err)
		}
	}
	return it, nil
}

// mapWriteErr turns driver errors into the common sentinels.
func mapWriteErr(err error, containerID, itemID string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("item %s/%s: %w", containerID, itemID, common.ErrorNotFound)
	}
	if name, ok := pgerr.UniqueViolation(err); ok {
		if name == positionConstraint {
			return fmt.Errorf("item %s/%s: %w", containerID, itemID, common.ErrConstraintViolation)
		}
		return fmt.Errorf("item %s/%s: %w", containerID, itemID, common.ErrAlreadyExists)
	}
	if pgerr.ForeignKeyViolation(err) {
		return fmt.Errorf("container %s: %w", containerID, common.ErrorNotFound)
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) ListByContainer(ctx context.Context, containerID string) ([]grid.Item, error) {
	query := `SELECT ` + columns + `
		FROM items
		WHERE container_id = $1
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, containerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []grid.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, containerID, itemID string) (grid.Item, error) {
	query := `SELECT ` + columns + `
		FROM items
		WHERE container_id = $1 AND id = $2`

	it, err := scanItem(r.db.QueryRowContext(ctx, query, containerID, itemID))
	if err != nil {
		return grid.Item{}, mapWriteErr(err, containerID, itemID)
	}
	return it, nil
}

func (r *PostgresRepository) Create(ctx context.Context, item grid.Item) (grid.Item, error) {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return grid.Item{}, fmt.Errorf("encode payload: %w", err)
	}

	query := `INSERT INTO items (container_id, id, position, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + columns

	it, err := scanItem(r.db.QueryRowContext(ctx, query, item.ContainerID, item.ID, item.Position, payload))
	if err != nil {
		return grid.Item{}, mapWriteErr(err, item.ContainerID, item.ID)
	}
	return it, nil
}

func (r *PostgresRepository) UpdatePosition(ctx context.Context, containerID, itemID string, position int) (grid.Item, error) {
	query := `UPDATE items
		SET position = $3, updated_at = now()
		WHERE container_id = $1 AND id = $2
		RETURNING ` + columns

	it, err := scanItem(r.db.QueryRowContext(ctx, query, containerID, itemID, position))
	if err != nil {
		return grid.Item{}, mapWriteErr(err, containerID, itemID)
	}
	return it, nil
}

func (r *PostgresRepository) UpdatePayload(ctx context.Context, containerID, itemID string, payload grid.Payload) (grid.Item, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return grid.Item{}, fmt.Errorf("encode payload: %w", err)
	}

	query := `UPDATE items
		SET payload = $3, updated_at = now()
		WHERE container_id = $1 AND id = $2
		RETURNING ` + columns

	it, err := scanItem(r.db.QueryRowContext(ctx, query, containerID, itemID, raw))
	if err != nil {
		return grid.Item{}, mapWriteErr(err, containerID, itemID)
	}
	return it, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, containerID, itemID string) error {
	query := `DELETE FROM items WHERE container_id = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query, containerID, itemID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %s/%s: %w", containerID, itemID, common.ErrorNotFound)
	}
	return nil
}
