// Package services contains the application services behind the gridplanner
// CLI. Each service composes the remote client with local state.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gridplanner/internal/client/client"
	"github.com/dmitrijs2005/gridplanner/internal/client/repositories/items"
	"github.com/dmitrijs2005/gridplanner/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/dbx"
)

// AuthService manages the signed in session.
//
// Contract:
//   - Login: authenticate and persist the username and token pair.
//   - Restore: load a persisted session into the client; without one it
//     fails with client.ErrUnauthorized.
//   - Logout: forget tokens and every mirrored container.
type AuthService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (string, error)
	SaveTokens(ctx context.Context, access, refresh string) error
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", fmt.Errorf("username and password are required: %w", common.ErrorValidation)
	}
	return username, nil
}

func (a *authService) Register(ctx context.Context, username, password string) error {
	username, err := validateCredentials(username, password)
	if err != nil {
		return err
	}
	if _, err := a.client.Register(ctx, username, password); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, username, password string) error {
	username, err := validateCredentials(username, password)
	if err != nil {
		return err
	}
	if err := a.client.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	access, refresh := a.client.Tokens()
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetStrings(ctx, map[string]string{
			metadata.KeyUsername:     username,
			metadata.KeyAccessToken:  access,
			metadata.KeyRefreshToken: refresh,
		})
	})
}

// SaveTokens persists a refreshed token pair.
func (a *authService) SaveTokens(ctx context.Context, access, refresh string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetStrings(ctx, map[string]string{
			metadata.KeyAccessToken:  access,
			metadata.KeyRefreshToken: refresh,
		})
	})
}

func (a *authService) Restore(ctx context.Context) (string, error) {
	session, err := a.getMetadataRepo().GetStrings(ctx, metadata.SessionKeys...)
	if err != nil {
		return "", err
	}
	username := session[metadata.KeyUsername]
	access, refresh := session[metadata.KeyAccessToken], session[metadata.KeyRefreshToken]
	if username == "" || (access == "" && refresh == "") {
		return "", fmt.Errorf("not logged in: %w", client.ErrUnauthorized)
	}

	a.client.SetTokens(access, refresh)
	return username, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetTokens("", "")
	if err := a.getMetadataRepo().Clear(ctx); err != nil {
		return err
	}
	return items.NewSQLiteRepository(a.db).Clear(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
