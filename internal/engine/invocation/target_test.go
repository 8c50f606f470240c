package invocation_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/interpose/internal/adapters/resolver"
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports/mocks"
	"go.trai.ch/interpose/internal/engine/invocation"
	"go.uber.org/mock/gomock"
)

type Counter struct {
	n int
}

func (c *Counter) Inc(by int) int {
	c.n += by
	return c.n
}

// countingProxy overrides Inc the way a generated overriding proxy would.
type countingProxy struct {
	*Counter
	overrides int
}

func (p *countingProxy) Inc(by int) int {
	p.overrides++
	return -1
}

var incMethod = domain.MustMethodOf(reflect.TypeFor[*Counter](), "Inc")

func overridingCall(t *testing.T, proxy any, m *domain.MethodDescriptor, args ...any) invocation.Call {
	t.Helper()
	res, err := resolver.New()
	require.NoError(t, err)
	return invocation.Call{
		Context:  context.Background(),
		Proxy:    proxy,
		Method:   m,
		Args:     args,
		Resolver: res,
		Strategy: invocation.Overriding(proxy),
	}
}

func TestOverriding_DispatchesToBase(t *testing.T) {
	proxy := &countingProxy{Counter: &Counter{}}

	var log []string
	inv, err := invocation.New(overridingCall(t, proxy, incMethod, 3), []invocation.Interceptor{logging(&log, "A")}, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())

	assert.Equal(t, []any{3}, inv.Results())
	assert.Equal(t, 3, proxy.n)
	assert.Zero(t, proxy.overrides, "the override must not be re-entered")
	assert.Same(t, proxy, inv.Target())
	assert.Equal(t, reflect.TypeFor[*Counter](), inv.ConcreteMethod().Owner())
	assert.Equal(t, []int{0}, inv.ConcreteMethod().Path())
}

func TestOverriding_NilBase(t *testing.T) {
	proxy := &countingProxy{}

	inv, err := invocation.New(overridingCall(t, proxy, incMethod, 1), nil, nil)
	require.NoError(t, err)

	err = inv.Run()
	assert.True(t, errors.Is(err, domain.ErrInvariantViolated))
	assert.Zero(t, proxy.overrides)
}

func TestOverriding_Validation(t *testing.T) {
	proxy := &countingProxy{Counter: &Counter{}}

	t.Run("interface method", func(t *testing.T) {
		_, err := invocation.New(overridingCall(t, &calc{}, addMethod, 1, 2), nil, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidOverride))
	})

	t.Run("bound to another proxy", func(t *testing.T) {
		call := overridingCall(t, proxy, incMethod, 1)
		call.Strategy = invocation.Overriding(&countingProxy{Counter: &Counter{}})
		_, err := invocation.New(call, nil, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidOverride))
	})

	t.Run("nil proxy", func(t *testing.T) {
		call := overridingCall(t, proxy, incMethod, 1)
		call.Strategy = invocation.Overriding(nil)
		_, err := invocation.New(call, nil, nil)
		assert.True(t, errors.Is(err, domain.ErrNoTarget))
	})

	t.Run("target not changeable", func(t *testing.T) {
		inv, err := invocation.New(overridingCall(t, proxy, incMethod, 1), nil, nil)
		require.NoError(t, err)
		assert.True(t, errors.Is(inv.ChangeInvocationTarget(&Counter{}), domain.ErrTargetNotChangeable))
	})
}

type recordingSetter struct {
	targets []any
}

func (s *recordingSetter) SetTarget(target any) error {
	s.targets = append(s.targets, target)
	return nil
}

func TestDelegating_ChangeInvocationTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	original, replacement := &calc{}, &calc{}
	expectResolve(t, res, addMethod, replacement)

	swap := invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
		if err := inv.ChangeInvocationTarget(replacement); err != nil {
			return err
		}
		return inv.Proceed()
	})

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, original, addMethod, 1, 2), []invocation.Interceptor{swap}, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())

	assert.Zero(t, original.calls)
	assert.Equal(t, 1, replacement.calls)
	assert.Same(t, replacement, inv.Target())
}

func TestDelegating_ChangeInvocationTargetRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	proxy := &calc{}

	inv, err := invocation.New(delegatingCall(res, proxy, &calc{}, addMethod, 1, 2), nil, nil)
	require.NoError(t, err)

	assert.True(t, errors.Is(inv.ChangeInvocationTarget(nil), domain.ErrNoTarget))
	assert.True(t, errors.Is(inv.ChangeInvocationTarget(proxy), domain.ErrTargetAliasesProxy))
	assert.NotSame(t, proxy, inv.Target())
}

func TestDelegating_ChangeProxyTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	replacement := &calc{}
	expectResolve(t, res, addMethod, replacement)

	setter := &recordingSetter{}
	swap := invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
		if err := inv.ChangeProxyTarget(replacement); err != nil {
			return err
		}
		return inv.Proceed()
	})

	call := delegatingCall(res, &calcProxy{}, &calc{}, addMethod, 1, 2)
	call.Setter = setter
	inv, err := invocation.New(call, []invocation.Interceptor{swap}, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())

	assert.Equal(t, []any{replacement}, setter.targets)
	assert.Equal(t, 1, replacement.calls)
}

func TestDelegating_ChangeProxyTargetWithoutSetter(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, &calc{}, addMethod, 1, 2), nil, nil)
	require.NoError(t, err)
	assert.True(t, errors.Is(inv.ChangeProxyTarget(&calc{}), domain.ErrTargetNotChangeable))
}

func TestDelegating_TargetOverrideWins(t *testing.T) {
	res, err := resolver.New()
	require.NoError(t, err)

	target := &countingProxy{Counter: &Counter{}}
	inv, err := invocation.New(invocation.Call{
		Context:  context.Background(),
		Proxy:    &calcProxy{},
		Method:   incMethod,
		Args:     []any{3},
		Resolver: res,
		Strategy: invocation.Delegating(target),
	}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())

	assert.Equal(t, []any{-1}, inv.Results())
	assert.Equal(t, 1, target.overrides)
	assert.Zero(t, target.n)
	assert.Equal(t, reflect.TypeFor[*countingProxy](), inv.ConcreteMethod().Owner())
}

type taggedProxy struct {
	tag any
}

func TestStrategies_UncomparableProxyValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	proxy := taggedProxy{tag: []int{1}}

	require.NotPanics(t, func() {
		_, err := invocation.New(delegatingCall(res, proxy, proxy, addMethod, 1, 2), nil, nil)
		assert.False(t, errors.Is(err, domain.ErrTargetAliasesProxy))
	})

	require.NotPanics(t, func() {
		call := delegatingCall(res, proxy, nil, incMethod, 1)
		call.Strategy = invocation.Overriding(proxy)
		_, err := invocation.New(call, nil, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidOverride))
	})
}
