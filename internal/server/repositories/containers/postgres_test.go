package containers

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
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

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+containers\s*\(id,\s*owner_id,\s*name\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+created_at\s*$`).
		WithArgs("c1", "u1", "Spring").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	got, err := repo.Create(context.Background(), &models.Container{ID: "c1", OwnerID: "u1", Name: "Spring"})
	require.NoError(t, err)
	assert.Equal(t, models.PermissionOwner, got.Permission)
	assert.True(t, got.CreatedAt.Equal(now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`INSERT\s+INTO\s+containers`).WillReturnError(errors.New("down"))

	_, err := repo.Create(context.Background(), &models.Container{ID: "c1", OwnerID: "u1"})
	assert.ErrorContains(t, err, "db error: down")
}

func TestListForUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at", "permission"}).
		AddRow("c1", "u1", "Mine", now, "owner").
		AddRow("c2", "u2", "Theirs", now, "read")
	mock.ExpectQuery(`(?s)FROM\s+containers\s+c\s+LEFT\s+JOIN\s+shares`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := repo.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "owner", got[0].Permission)
	assert.Equal(t, "read", got[1].Permission)
	assert.Equal(t, "u2", got[1].OwnerID)
}

func TestPermission(t *testing.T) {
	q := `(?s)^\s*SELECT\s+c\.owner_id,\s*s\.permission\s+FROM\s+containers\s+c`

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		want    string
		wantErr error
	}{
		{name: "owner", rows: sqlmock.NewRows([]string{"owner_id", "permission"}).AddRow("u1", nil), want: models.PermissionOwner},
		{name: "grantee", rows: sqlmock.NewRows([]string{"owner_id", "permission"}).AddRow("u2", "read"), want: models.PermissionRead},
		{name: "stranger", rows: sqlmock.NewRows([]string{"owner_id", "permission"}).AddRow("u2", nil), want: ""},
		{name: "missing", err: sql.ErrNoRows, wantErr: common.ErrorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			exp := mock.ExpectQuery(q).WithArgs("c1", "u1")
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			got, err := repo.Permission(context.Background(), "c1", "u1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
