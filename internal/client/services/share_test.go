package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/stretchr/testify/require"
)

func TestShare_GrantListRevoke(t *testing.T) {
	svc := NewShareService(newFakeClient())
	ctx := context.Background()

	sh, err := svc.Grant(ctx, "c1", " olivia ")
	require.NoError(t, err)
	require.Equal(t, "olivia", sh.GranteeName)

	list, err := svc.List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Revoke(ctx, "c1", "olivia"))
	require.NoError(t, svc.Revoke(ctx, "c1", "olivia"))

	list, err = svc.List(ctx, "c1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestShare_Validation(t *testing.T) {
	svc := NewShareService(newFakeClient())

	_, err := svc.Grant(context.Background(), "c1", "  ")
	require.ErrorIs(t, err, common.ErrorValidation)
	require.ErrorIs(t, svc.Revoke(context.Background(), "", "olivia"), common.ErrorValidation)
}
