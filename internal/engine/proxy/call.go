package proxy

import (
	"context"
	"reflect"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/zerr"
)

// Call0 calls a method without value results.
func Call0(ctx context.Context, p *Proxy, method *domain.MethodDescriptor, args ...any) error {
	_, err := p.Call(ctx, method, args...)
	return err
}

// Call1 calls a method with one value result.
// A result that is not an R fails with ErrArgumentType.
func Call1[R any](ctx context.Context, p *Proxy, method *domain.MethodDescriptor, args ...any) (R, error) {
	out, err := p.Call(ctx, method, args...)
	r, rerr := result[R](method, out, 0)
	if err != nil {
		return r, err
	}
	return r, rerr
}

// Call2 calls a method with two value results.
// A result that is not of its type parameter fails with ErrArgumentType.
func Call2[R1, R2 any](ctx context.Context, p *Proxy, method *domain.MethodDescriptor, args ...any) (R1, R2, error) {
	out, err := p.Call(ctx, method, args...)
	r1, err1 := result[R1](method, out, 0)
	r2, err2 := result[R2](method, out, 1)
	switch {
	case err != nil:
		return r1, r2, err
	case err1 != nil:
		return r1, r2, err1
	default:
		return r1, r2, err2
	}
}

func result[R any](method *domain.MethodDescriptor, out []any, i int) (R, error) {
	var zero R
	if i >= len(out) || out[i] == nil {
		return zero, nil
	}
	if v, ok := out[i].(R); ok {
		return v, nil
	}

	err := zerr.With(zerr.Wrap(domain.ErrArgumentType, "result type mismatch"), "index", i)
	err = zerr.With(err, "want", domain.TypeName(reflect.TypeFor[R]()))
	err = zerr.With(err, "got", domain.TypeName(reflect.TypeOf(out[i])))
	if method != nil {
		err = zerr.With(err, "method", method.String())
	}
	return zero, err
}
