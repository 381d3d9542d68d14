package omitnilpointers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOmitNilPointers(t *testing.T) {
	position := 12.5
	var url *string

	got := OmitNilPointers(map[string]any{
		"position": &position,
		"url":      url,
		"kind":     "youtube",
		"missing":  nil,
	})

	assert.Equal(t, map[string]any{
		"position": 12.5,
		"kind":     "youtube",
	}, got)
}
