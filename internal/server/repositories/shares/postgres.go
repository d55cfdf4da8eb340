package shares

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/dbx"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/pgerr"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, s *models.Share) (*models.Share, error) {
	query := `
		INSERT INTO shares (container_id, grantee_id, permission)
		VALUES ($1, $2, $3)
		ON CONFLICT (container_id, grantee_id) DO UPDATE SET permission = EXCLUDED.permission
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query, s.ContainerID, s.GranteeID, s.Permission).Scan(&s.CreatedAt); err != nil {
		if pgerr.ForeignKeyViolation(err) {
			return nil, fmt.Errorf("share %s/%s: %w", s.ContainerID, s.GranteeID, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, containerID, granteeID string) error {
	query := `
		DELETE FROM shares
		WHERE container_id = $1 AND grantee_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, containerID, granteeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByContainer(ctx context.Context, containerID string) ([]models.Share, error) {
	query := `
		SELECT s.container_id, s.grantee_id, u.username, s.permission, s.created_at
		FROM shares s
		JOIN users u ON u.id = s.grantee_id
		WHERE s.container_id = $1
		ORDER BY u.username
	`
	rows, err := r.db.QueryContext(ctx, query, containerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Share
	for rows.Next() {
		var s models.Share
		if err := rows.Scan(&s.ContainerID, &s.GranteeID, &s.GranteeName, &s.Permission, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
