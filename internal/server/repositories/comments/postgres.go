package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

const selectComment = `
		SELECT c.id, c.container_id, c.item_id, c.author_id, u.username, c.content, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
`

func scanComment(s interface{ Scan(...any) error }) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.Scan(&c.ID, &c.ContainerID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	query := `
		INSERT INTO comments (id, container_id, item_id, author_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.ContainerID, c.ItemID, c.AuthorID, c.Content, c.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.UpdatedAt = c.CreatedAt
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, selectComment+`WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment %s: %w", id, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByItem(ctx context.Context, containerID, itemID string) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, selectComment+`WHERE c.container_id = $1 AND c.item_id = $2 ORDER BY c.id`, containerID, itemID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, authorID, content string, at time.Time) (*models.Comment, error) {
	query := `
		UPDATE comments SET content = $3, updated_at = $4
		WHERE id = $1 AND author_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, authorID, content, at)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("comment %s: %w", id, common.ErrorNotFound)
	}
	return r.Get(ctx, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, authorID string) error {
	query := `DELETE FROM comments WHERE id = $1 AND author_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, authorID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", err)
	} else if n == 0 {
		return fmt.Errorf("comment %s: %w", id, common.ErrorNotFound)
	}
	return nil
}
