package domain_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/interpose/internal/core/domain"
)

func describe[T any](b *Base, v T) string {
	return fmt.Sprintf("%s%T:%v", b.prefix, v, v)
}

func TestInstanceSet(t *testing.T) {
	set := domain.NewInstanceSet("Describe", 1).
		Add(describe[int], reflect.TypeFor[int]()).
		Add(describe[string], reflect.TypeFor[string]())
	assert.Equal(t, 2, set.Len())

	def := set.Definition()
	assert.Equal(t, "Describe", def.Name)
	assert.Equal(t, 1, def.Arity)

	fn, ok := def.Instantiate([]reflect.Type{reflect.TypeFor[string]()})
	require.True(t, ok)
	out := fn.Call([]reflect.Value{reflect.ValueOf(&Base{prefix: ">"}), reflect.ValueOf("x")})
	assert.Equal(t, ">string:x", out[0].String())

	_, ok = def.Instantiate([]reflect.Type{reflect.TypeFor[bool]()})
	assert.False(t, ok)
}

func TestInstanceSet_AddPanics(t *testing.T) {
	assert.Panics(t, func() {
		domain.NewInstanceSet("Describe", 1).Add("not a func", reflect.TypeFor[int]())
	})
	assert.Panics(t, func() {
		domain.NewInstanceSet("Describe", 1).Add(describe[int])
	})
}
