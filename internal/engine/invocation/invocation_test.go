package invocation_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports/mocks"
	"go.trai.ch/interpose/internal/engine/invocation"
	"go.uber.org/mock/gomock"
)

var errDivideByZero = errors.New("divide by zero")

type Calculator interface {
	Add(a, b int) int
	Div(a, b int) (int, error)
	Sum(xs ...int) int
	Reset()
}

type calc struct {
	log   *[]string
	calls int
}

func (c *calc) Add(a, b int) int {
	c.calls++
	if c.log != nil {
		*c.log = append(*c.log, "<target>")
	}
	return a + b
}

func (c *calc) Div(a, b int) (int, error) {
	c.calls++
	if b == 0 {
		return 0, errDivideByZero
	}
	return a / b, nil
}

func (c *calc) Sum(xs ...int) int {
	c.calls++
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func (c *calc) Reset() { c.calls = 0 }

// calcProxy stands in for a generated delegating proxy.
type calcProxy struct{}

var (
	addMethod   = domain.MustMethodOf(reflect.TypeFor[Calculator](), "Add")
	divMethod   = domain.MustMethodOf(reflect.TypeFor[Calculator](), "Div")
	sumMethod   = domain.MustMethodOf(reflect.TypeFor[Calculator](), "Sum")
	resetMethod = domain.MustMethodOf(reflect.TypeFor[Calculator](), "Reset")
)

func concreteFor(t *testing.T, declared *domain.MethodDescriptor, target any) *domain.ConcreteMethod {
	t.Helper()
	typ := reflect.TypeOf(target)
	m, ok := typ.MethodByName(declared.Name())
	require.True(t, ok)
	return domain.NewConcreteMethod(declared, typ, typ, nil, m.Func)
}

func expectResolve(t *testing.T, res *mocks.MockMethodResolver, declared *domain.MethodDescriptor, target any) {
	t.Helper()
	res.EXPECT().
		Resolve(declared, reflect.TypeOf(target), domain.DispatchVirtual).
		Return(concreteFor(t, declared, target), nil)
}

func logging(log *[]string, name string) invocation.Interceptor {
	return invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
		*log = append(*log, name)
		return inv.Proceed()
	})
}

func delegatingCall(res *mocks.MockMethodResolver, proxy, target any, m *domain.MethodDescriptor, args ...any) invocation.Call {
	return invocation.Call{
		Context:  context.Background(),
		Proxy:    proxy,
		Method:   m,
		Args:     args,
		Resolver: res,
		Strategy: invocation.Delegating(target),
	}
}

func TestInvocation_InterceptorOrdering(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	var log []string
	target := &calc{log: &log}
	expectResolve(t, res, addMethod, target)

	interceptors := []invocation.Interceptor{logging(&log, "A"), logging(&log, "B"), logging(&log, "C")}
	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, target, addMethod, 2, 3), interceptors, nil)
	require.NoError(t, err)

	require.NoError(t, inv.Run())
	assert.Equal(t, []string{"A", "B", "C", "<target>"}, log)

	v, err := inv.ReturnValue()
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, domain.InvocationCompleted, inv.State())
	assert.NotNil(t, inv.ConcreteMethod())
	assert.NoError(t, inv.Fault())
}

func TestInvocation_ShortCircuit(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl) // no expectations: resolution must not happen

	var log []string
	target := &calc{log: &log}
	interceptors := []invocation.Interceptor{
		logging(&log, "A"),
		invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
			log = append(log, "B")
			inv.SetReturnValue(42)
			return nil
		}),
		logging(&log, "C"),
	}

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, target, addMethod, 1, 1), interceptors, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())

	assert.Equal(t, []string{"A", "B"}, log)
	assert.Zero(t, target.calls)
	assert.Nil(t, inv.ConcreteMethod())

	v, err := inv.ReturnValue()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, []any{42}, inv.Results())
}

func TestInvocation_ShortCircuitWithoutValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	skip := invocation.InterceptorFunc(func(*invocation.Invocation) error { return nil })
	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, &calc{}, divMethod, 1, 0), []invocation.Interceptor{skip}, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())

	_, err = inv.ReturnValue()
	assert.True(t, errors.Is(err, domain.ErrReturnValueNotAvailable))
	assert.True(t, errors.Is(err, domain.ErrProtocolMisuse))
	assert.Equal(t, []any{0}, inv.Results(), "zero values, trailing error left out")
}

func TestInvocation_AliasProtectionBeforeInterceptors(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	proxy := &calc{}
	ran := false
	spy := invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
		ran = true
		return inv.Proceed()
	})

	_, err := invocation.New(delegatingCall(res, proxy, proxy, addMethod, 1, 2), []invocation.Interceptor{spy}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTargetAliasesProxy))
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	_, err = invocation.NewSelected(delegatingCall(res, proxy, proxy, addMethod, 1, 2), []invocation.Interceptor{spy})
	assert.True(t, errors.Is(err, domain.ErrTargetAliasesProxy))
	assert.False(t, ran)
}

func TestInvocation_EmbeddedTargetDoesNotAlias(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	type wrapper struct {
		calc
	}
	w := &wrapper{}
	expectResolve(t, res, resetMethod, &w.calc)

	inv, err := invocation.New(delegatingCall(res, w, &w.calc, resetMethod), nil, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())
}

func TestInvocation_NoTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	t.Run("fails at terminal dispatch", func(t *testing.T) {
		inv, err := invocation.New(delegatingCall(res, &calcProxy{}, nil, addMethod, 1, 2), nil, nil)
		require.NoError(t, err)
		err = inv.Run()
		assert.True(t, errors.Is(err, domain.ErrNoTarget))
		assert.Equal(t, domain.InvocationFaulted, inv.State())
		assert.Equal(t, err, inv.Fault())
	})

	t.Run("typed nil pointer", func(t *testing.T) {
		inv, err := invocation.New(delegatingCall(res, &calcProxy{}, (*calc)(nil), addMethod, 1, 2), nil, nil)
		require.NoError(t, err)
		assert.True(t, errors.Is(inv.Run(), domain.ErrNoTarget))
	})

	t.Run("short circuit never needs a target", func(t *testing.T) {
		answer := invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
			inv.SetReturnValue(7)
			return nil
		})
		inv, err := invocation.New(delegatingCall(res, &calcProxy{}, nil, addMethod, 1, 2), []invocation.Interceptor{answer}, nil)
		require.NoError(t, err)
		require.NoError(t, inv.Run())
		assert.Equal(t, []any{7}, inv.Results())
	})
}

func TestInvocation_ProceedAfterTerminalDispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	target := &calc{}
	expectResolve(t, res, addMethod, target)

	var second error
	retry := invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
		if err := inv.Proceed(); err != nil {
			return err
		}
		second = inv.Proceed()
		return nil
	})

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, target, addMethod, 1, 2), []invocation.Interceptor{retry}, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())

	assert.True(t, errors.Is(second, domain.ErrProceedAfterCompletion))
	assert.Equal(t, 1, target.calls)

	assert.True(t, errors.Is(inv.Proceed(), domain.ErrProceedAfterCompletion), "retained invocation")
	assert.True(t, errors.Is(inv.Run(), domain.ErrProceedAfterCompletion))
	assert.Equal(t, 1, target.calls)
}

func TestInvocation_ReturnValueVisibility(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	target := &calc{}
	expectResolve(t, res, addMethod, target)

	var before, after error
	var seen any
	observe := invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
		_, before = inv.ReturnValue()
		if err := inv.Proceed(); err != nil {
			return err
		}
		seen, after = inv.ReturnValue()
		inv.SetReturnValue(seen.(int) * 10)
		return nil
	})

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, target, addMethod, 2, 2), []invocation.Interceptor{observe}, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())

	assert.True(t, errors.Is(before, domain.ErrReturnValueNotAvailable))
	require.NoError(t, after)
	assert.Equal(t, 4, seen)
	assert.Equal(t, []any{40}, inv.Results())
}

func TestInvocation_ArgumentMutation(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	target := &calc{}
	expectResolve(t, res, addMethod, target)

	var seenByB any
	a := invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
		if err := inv.SetArgument(0, 10); err != nil {
			return err
		}
		return inv.Proceed()
	})
	b := invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
		seenByB, _ = inv.Argument(0)
		inv.Arguments()[1] = 5
		return inv.Proceed()
	})

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, target, addMethod, 1, 1), []invocation.Interceptor{a, b}, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())

	assert.Equal(t, 10, seenByB)
	v, err := inv.ReturnValue()
	require.NoError(t, err)
	assert.Equal(t, 15, v)
}

func TestInvocation_ArgumentErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, &calc{}, addMethod, 1, 2), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.NumArguments())

	_, err = inv.Argument(2)
	assert.True(t, errors.Is(err, domain.ErrArgumentIndex))
	assert.True(t, errors.Is(inv.SetArgument(-1, 1), domain.ErrArgumentIndex))
	assert.True(t, errors.Is(inv.SetArgument(0, "one"), domain.ErrArgumentType))
	require.NoError(t, inv.SetArgument(0, nil))

	_, err = invocation.New(delegatingCall(res, &calcProxy{}, &calc{}, addMethod, 1), nil, nil)
	assert.True(t, errors.Is(err, domain.ErrArgumentIndex))
}

func TestInvocation_ArgumentConversion(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	target := &calc{}
	expectResolve(t, res, addMethod, target)
	expectResolve(t, res, sumMethod, target)

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, target, addMethod, nil, 4), nil, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())
	assert.Equal(t, []any{4}, inv.Results())

	inv, err = invocation.New(delegatingCall(res, &calcProxy{}, target, sumMethod, []int{1, 2, 3}), nil, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())
	assert.Equal(t, []any{6}, inv.Results())
}

func TestInvocation_TargetErrorPropagatesVerbatim(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	target := &calc{}
	expectResolve(t, res, divMethod, target)

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, target, divMethod, 1, 0), nil, nil)
	require.NoError(t, err)

	err = inv.Run()
	assert.Same(t, errDivideByZero, err)
	assert.Same(t, errDivideByZero, inv.Fault())
	assert.Equal(t, domain.InvocationFaulted, inv.State())
	assert.True(t, inv.HasReturnValue())
	assert.Equal(t, []any{0}, inv.Results())
}

func TestInvocation_InterceptorErrorStopsChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	boom := errors.New("boom")

	var log []string
	failing := invocation.InterceptorFunc(func(*invocation.Invocation) error { return boom })
	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, &calc{}, addMethod, 1, 2),
		[]invocation.Interceptor{logging(&log, "A"), failing, logging(&log, "C")}, nil)
	require.NoError(t, err)

	assert.Same(t, boom, inv.Run())
	assert.Equal(t, []string{"A"}, log)
}

func TestInvocation_ResolutionFailureIsDistinct(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	res.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrResolutionFailed)

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, &calc{}, addMethod, 1, 2), nil, nil)
	require.NoError(t, err)

	err = inv.Run()
	assert.True(t, errors.Is(err, domain.ErrResolution))
	assert.False(t, errors.Is(err, domain.ErrConfiguration))
}

func TestInvocation_States(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	target := &calc{}
	expectResolve(t, res, addMethod, target)

	var during, afterProceed domain.InvocationState
	spy := invocation.InterceptorFunc(func(inv *invocation.Invocation) error {
		during = inv.State()
		err := inv.Proceed()
		afterProceed = inv.State()
		return err
	})

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, target, addMethod, 1, 2), []invocation.Interceptor{spy}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.InvocationCreated, inv.State())

	require.NoError(t, inv.Run())
	assert.Equal(t, domain.InvocationRunning, during)
	assert.Equal(t, domain.InvocationCompleted, afterProceed)
	assert.Equal(t, domain.InvocationCompleted, inv.State())
}

func TestInvocation_Metadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	proxy := &calcProxy{}
	target := &calc{}
	ic := logging(new([]string), "A")

	call := delegatingCall(res, proxy, target, addMethod, 1, 2)
	call.Context = ctx
	inv, err := invocation.New(call, []invocation.Interceptor{ic}, nil)
	require.NoError(t, err)

	assert.Same(t, addMethod, inv.Method())
	assert.Same(t, proxy, inv.Proxy())
	assert.Same(t, target, inv.Target())
	assert.Equal(t, reflect.TypeFor[*calc](), inv.TargetType())
	assert.Equal(t, "v", inv.Context().Value(ctxKey{}))
	assert.Len(t, inv.Interceptors(), 1)

	call.Context = nil
	inv, err = invocation.New(call, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, inv.Context())
}

func TestInvocation_InvalidCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)

	call := delegatingCall(res, &calcProxy{}, &calc{}, addMethod, 1, 2)
	call.Method = nil
	_, err := invocation.New(call, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	call = delegatingCall(res, &calcProxy{}, &calc{}, addMethod, 1, 2)
	call.Resolver = nil
	_, err = invocation.New(call, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	call = delegatingCall(res, &calcProxy{}, &calc{}, addMethod, 1, 2)
	call.Strategy = nil
	_, err = invocation.NewSelected(call, nil)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestStandardInterceptor(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	var log []string
	target := &calc{log: &log}
	expectResolve(t, res, addMethod, target)

	std := &invocation.StandardInterceptor{
		PreProceed: func(*invocation.Invocation) error {
			log = append(log, "pre")
			return nil
		},
		PostProceed: func(inv *invocation.Invocation) error {
			log = append(log, "post")
			v, err := inv.ReturnValue()
			if err != nil {
				return err
			}
			inv.SetReturnValue(v.(int) + 1)
			return nil
		},
	}

	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, target, addMethod, 1, 2), []invocation.Interceptor{std}, nil)
	require.NoError(t, err)
	require.NoError(t, inv.Run())

	assert.Equal(t, []string{"pre", "<target>", "post"}, log)
	assert.Equal(t, []any{4}, inv.Results())
}

func TestStandardInterceptor_PreProceedErrorSkipsCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mocks.NewMockMethodResolver(ctrl)
	denied := errors.New("denied")
	target := &calc{}

	std := &invocation.StandardInterceptor{
		PreProceed: func(*invocation.Invocation) error { return denied },
	}
	inv, err := invocation.New(delegatingCall(res, &calcProxy{}, target, addMethod, 1, 2), []invocation.Interceptor{std}, nil)
	require.NoError(t, err)

	assert.Same(t, denied, inv.Run())
	assert.Zero(t, target.calls)
}
