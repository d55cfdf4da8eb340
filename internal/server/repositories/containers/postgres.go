package containers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/dbx"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Container) (*models.Container, error) {
	query := `
		INSERT INTO containers (id, owner_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query, c.ID, c.OwnerID, c.Name).Scan(&c.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.Permission = models.PermissionOwner
	return c, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]models.Container, error) {
	query := `
		SELECT c.id, c.owner_id, c.name, c.created_at,
		       CASE WHEN c.owner_id = $1 THEN 'owner' ELSE s.permission END
		FROM containers c
		LEFT JOIN shares s ON s.container_id = c.id AND s.grantee_id = $1
		WHERE c.owner_id = $1 OR s.grantee_id IS NOT NULL
		ORDER BY c.created_at, c.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Container
	for rows.Next() {
		var c models.Container
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt, &c.Permission); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Permission(ctx context.Context, containerID, userID string) (string, error) {
	query := `
		SELECT c.owner_id, s.permission
		FROM containers c
		LEFT JOIN shares s ON s.container_id = c.id AND s.grantee_id = $2
		WHERE c.id = $1
	`
	var ownerID string
	var shared sql.NullString
	if err := r.db.QueryRowContext(ctx, query, containerID, userID).Scan(&ownerID, &shared); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("container %s: %w", containerID, common.ErrorNotFound)
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	switch {
	case ownerID == userID:
		return models.PermissionOwner, nil
	case shared.Valid:
		return shared.String, nil
	default:
		return "", nil
	}
}
