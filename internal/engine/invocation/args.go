package invocation

import (
	"reflect"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/zerr"
)

var errorType = reflect.TypeFor[error]()

// Arguments returns the argument slice of the call. Interceptors may rewrite
// elements in place before calling Proceed.
func (inv *Invocation) Arguments() []any { return inv.args }

// NumArguments returns the number of arguments.
func (inv *Invocation) NumArguments() int { return len(inv.args) }

// Argument returns the i-th argument.
func (inv *Invocation) Argument(i int) (any, error) {
	if err := inv.checkIndex(i); err != nil {
		return nil, err
	}
	return inv.args[i], nil
}

// SetArgument replaces the i-th argument. The value must be assignable to the
// declared parameter type; nil stands for the zero value.
func (inv *Invocation) SetArgument(i int, v any) error {
	if err := inv.checkIndex(i); err != nil {
		return err
	}
	if p := inv.method.Param(i); p != nil && v != nil && !reflect.TypeOf(v).AssignableTo(p) {
		return inv.argTypeError(i, p, v)
	}
	inv.args[i] = v
	return nil
}

func (inv *Invocation) checkIndex(i int) error {
	if i < 0 || i >= len(inv.args) {
		err := zerr.With(zerr.Wrap(domain.ErrArgumentIndex, "no such argument"), "method", inv.method.String())
		return zerr.With(err, "index", i)
	}
	return nil
}

func (inv *Invocation) argTypeError(i int, want reflect.Type, got any) error {
	err := zerr.With(zerr.Wrap(domain.ErrArgumentType, "argument not assignable"), "method", inv.method.String())
	err = zerr.With(err, "index", i)
	err = zerr.With(err, "want", domain.TypeName(want))
	return zerr.With(err, "got", domain.TypeName(reflect.TypeOf(got)))
}

// callArgs converts the current arguments to the parameter types of cm.
func (inv *Invocation) callArgs(cm *domain.ConcreteMethod) ([]reflect.Value, error) {
	ft := cm.Func().Type()
	in := make([]reflect.Value, len(inv.args))
	for i, a := range inv.args {
		// In(0) is the receiver.
		p := ft.In(i + 1)
		if a == nil {
			in[i] = reflect.Zero(p)
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(p) {
			return nil, inv.argTypeError(i, p, a)
		}
		in[i] = v
	}
	return in, nil
}

// splitResults separates a trailing error result, which is the call's fault.
func splitResults(out []reflect.Value) ([]any, error) {
	var fault error
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			fault = out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}

	values := make([]any, len(out))
	for i, v := range out {
		values[i] = v.Interface()
	}
	return values, fault
}

// SetReturnValue writes the return slot. Terminal dispatch writes it once;
// interceptors may replace it on the way out or fill it when short-circuiting.
// A trailing error result is not part of the slot.
func (inv *Invocation) SetReturnValue(values ...any) {
	inv.returnValues = append([]any(nil), values...)
	inv.hasReturn = true
}

// ReturnValue returns the first value of the return slot, nil for methods without results.
func (inv *Invocation) ReturnValue() (any, error) {
	values, err := inv.ReturnValues()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// ReturnValues returns a copy of the return slot.
// It fails with ErrReturnValueNotAvailable until the slot was written.
func (inv *Invocation) ReturnValues() ([]any, error) {
	if !inv.hasReturn {
		return nil, zerr.With(zerr.Wrap(domain.ErrReturnValueNotAvailable, "return slot not written"), "method", inv.method.String())
	}
	return append([]any(nil), inv.returnValues...), nil
}

// HasReturnValue reports whether the return slot was written.
func (inv *Invocation) HasReturnValue() bool { return inv.hasReturn }

// Results returns the return slot shaped to the declared results: missing
// values become zero values and a trailing error result is left out.
func (inv *Invocation) Results() []any {
	types := ValueResults(inv.method)
	out := make([]any, max(len(types), len(inv.returnValues)))
	for i := range out {
		switch {
		case i < len(inv.returnValues) && inv.returnValues[i] != nil:
			out[i] = inv.returnValues[i]
		case i < len(types):
			out[i] = zeroOf(types[i])
		}
	}
	return out
}

// ValueResults returns the declared result types without a trailing error.
func ValueResults(m *domain.MethodDescriptor) []reflect.Type {
	results := m.Results()
	if n := len(results); n > 0 && results[n-1] == errorType {
		results = results[:n-1]
	}
	return results
}

func zeroOf(t reflect.Type) any {
	if t == nil {
		return nil
	}
	return reflect.Zero(t).Interface()
}
