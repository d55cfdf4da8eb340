package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gridplanner/internal/dbx"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/comments"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/containers"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/items"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/shares"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repositories inside and outside a transaction.
type RepositoryManager interface {
	// RunMigrations applies pending migrations and returns their versions.
	RunMigrations(context.Context, *sql.DB) ([]int64, error)
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Containers(db dbx.DBTX) containers.Repository
	Items(db dbx.DBTX) items.Repository
	Shares(db dbx.DBTX) shares.Repository
	Comments(db dbx.DBTX) comments.Repository
}
