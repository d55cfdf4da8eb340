package shares

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestUpsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+shares.*ON\s+CONFLICT\s+\(container_id,\s*grantee_id\)\s+DO\s+UPDATE`).
		WithArgs("c1", "u2", "read").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	got, err := repo.Upsert(context.Background(), &models.Share{ContainerID: "c1", GranteeID: "u2", Permission: "read"})
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_MissingContainer(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`INSERT\s+INTO\s+shares`).WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Upsert(context.Background(), &models.Share{ContainerID: "c1", GranteeID: "u2", Permission: "read"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)DELETE\s+FROM\s+shares\s+WHERE\s+container_id\s*=\s*\$1\s+AND\s+grantee_id\s*=\s*\$2`

	mock.ExpectExec(q).WithArgs("c1", "u2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("c1", "u2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "c1", "u2"))
	require.NoError(t, repo.Delete(context.Background(), "c1", "u2"))
}

func TestDelete_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`DELETE\s+FROM\s+shares`).WillReturnError(errors.New("down"))

	assert.ErrorContains(t, repo.Delete(context.Background(), "c1", "u2"), "db error: down")
}

func TestListByContainer(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"container_id", "grantee_id", "username", "permission", "created_at"}).
		AddRow("c1", "u2", "bob", "read", now).
		AddRow("c1", "u3", "carol", "read", now)
	mock.ExpectQuery(`(?s)FROM\s+shares\s+s\s+JOIN\s+users\s+u`).WithArgs("c1").WillReturnRows(rows)

	got, err := repo.ListByContainer(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].GranteeName)
	assert.Equal(t, "u3", got[1].GranteeID)
}
