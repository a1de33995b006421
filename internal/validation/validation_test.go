package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct(t *testing.T) {
	type sample struct {
		Name   string `validate:"required"`
		Status string `validate:"oneof='em andamento' resolvida"`
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Struct(sample{Name: "x", Status: "em andamento"}))
	})

	t.Run("collects every failed field", func(t *testing.T) {
		err := Struct(sample{Status: "other"})
		require.Error(t, err)
		var verr *Error
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 2)
		assert.Equal(t, "sample.Name", verr.Fields[0].Field)
		assert.Equal(t, "required", verr.Fields[0].Tag)
		assert.Equal(t, "oneof", verr.Fields[1].Tag)
		assert.Contains(t, err.Error(), "validation failed")
	})
}

func TestRequired(t *testing.T) {
	err := Required("text")
	assert.Equal(t, "validation failed: text failed required", err.Error())
}
