package client

import (
	"errors"

	"github.com/dmitrijs2005/gridplanner/internal/common"
)

// Transport errors share identity with the common sentinels so callers can
// match on either.
var (
	ErrUnavailable           = common.ErrUnavailable
	ErrUnauthorized          = common.ErrorUnauthorized
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
