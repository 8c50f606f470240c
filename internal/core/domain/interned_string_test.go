package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/interpose/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("Calculator.Add")
	b := domain.NewInternedString("Calculator." + "Add")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, domain.NewInternedString("Calculator.Sum"))
	assert.Equal(t, "Calculator.Add", a.String())
	assert.False(t, a.IsZero())

	var zero domain.InternedString
	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())
}

func TestInternedString_MarshalText(t *testing.T) {
	data, err := json.Marshal(struct {
		Name domain.InternedString `json:"name"`
	}{Name: domain.NewInternedString("Find")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Find"}`, string(data))
}
