package grid

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gridplanner/internal/common"
)

var (
	ErrItemNotFound      = fmt.Errorf("item %w", common.ErrorNotFound)
	ErrCrossContainer    = errors.New("items belong to different containers")
	ErrDuplicateTarget   = errors.New("item listed more than once in target order")
	ErrDuplicatePosition = errors.New("duplicate position in container")
	ErrEmptyItemID       = errors.New("item ID cannot be empty")
)

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}
