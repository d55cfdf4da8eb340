package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainer_IsOwner(t *testing.T) {
	assert.True(t, Container{Permission: "owner"}.IsOwner())
	assert.False(t, Container{Permission: "read"}.IsOwner())
	assert.False(t, Container{}.IsOwner())
}
