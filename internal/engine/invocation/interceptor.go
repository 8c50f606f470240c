package invocation

// Interceptor is a unit of cross-cutting behavior around an intercepted call.
// It continues the chain by calling inv.Proceed and short-circuits by returning
// without calling it. Errors are returned to the caller of the proxy verbatim.
type Interceptor interface {
	Intercept(inv *Invocation) error
}

// InterceptorFunc adapts a function to the Interceptor interface.
type InterceptorFunc func(inv *Invocation) error

// Intercept calls f(inv).
func (f InterceptorFunc) Intercept(inv *Invocation) error {
	return f(inv)
}

// StandardInterceptor splits interception into three optional hooks.
// Use it by pointer so selectors can compare it by identity.
type StandardInterceptor struct {
	// PreProceed runs before the chain continues. An error stops the call.
	PreProceed func(inv *Invocation) error
	// PerformProceed continues the chain. Defaults to inv.Proceed.
	PerformProceed func(inv *Invocation) error
	// PostProceed runs after the chain returned without error.
	PostProceed func(inv *Invocation) error
}

// Intercept runs the hooks in order.
func (s *StandardInterceptor) Intercept(inv *Invocation) error {
	if s.PreProceed != nil {
		if err := s.PreProceed(inv); err != nil {
			return err
		}
	}

	perform := s.PerformProceed
	if perform == nil {
		perform = (*Invocation).Proceed
	}
	if err := perform(inv); err != nil {
		return err
	}

	if s.PostProceed != nil {
		return s.PostProceed(inv)
	}
	return nil
}
