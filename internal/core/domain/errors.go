package domain

import "go.trai.ch/zerr"

// Error categories. Every concrete error below wraps exactly one of them so
// callers can tell a broken proxy apart from a failing call with errors.Is.
var (
	// ErrConfiguration groups errors caused by how a proxy or call was set up.
	ErrConfiguration = zerr.New("configuration error")

	// ErrResolution groups internal-consistency failures between a proxy and the type it wraps.
	ErrResolution = zerr.New("resolution error")

	// ErrProtocolMisuse groups programming errors against the invocation protocol.
	ErrProtocolMisuse = zerr.New("invocation protocol misuse")
)

var (
	// ErrNoTarget is returned when a delegating call reaches terminal dispatch without a target.
	ErrNoTarget = zerr.Wrap(ErrConfiguration, "no target configured")

	// ErrTargetAliasesProxy is returned when a delegating proxy would forward to itself.
	ErrTargetAliasesProxy = zerr.Wrap(ErrConfiguration, "target aliases proxy")

	// ErrInvalidSelection is returned when a selector returns interceptors outside the full set.
	ErrInvalidSelection = zerr.Wrap(ErrConfiguration, "selector returned an invalid subset")

	// ErrInvalidOverride is returned when an overriding proxy is asked to dispatch an interface method.
	ErrInvalidOverride = zerr.Wrap(ErrConfiguration, "overriding dispatch requires a base type method")

	// ErrTargetNotChangeable is returned when the target of an overriding invocation is changed.
	ErrTargetNotChangeable = zerr.Wrap(ErrConfiguration, "invocation target cannot be changed")

	// ErrMethodNotDeclared is returned when a descriptor names a method its type does not declare.
	ErrMethodNotDeclared = zerr.Wrap(ErrConfiguration, "method not declared")

	// ErrInvalidConfig is returned when the engine configuration fails validation.
	ErrInvalidConfig = zerr.Wrap(ErrConfiguration, "invalid engine configuration")
)

var (
	// ErrResolutionFailed is returned when no concrete method fulfils a declared method.
	ErrResolutionFailed = zerr.Wrap(ErrResolution, "no concrete method found")

	// ErrInvariantViolated is returned when the concrete type cannot fulfil the declaring type at all.
	ErrInvariantViolated = zerr.Wrap(ErrResolution, "invariant violated")
)

var (
	// ErrProceedAfterCompletion is returned when Proceed is called after terminal dispatch already ran.
	ErrProceedAfterCompletion = zerr.Wrap(ErrProtocolMisuse, "proceed called after terminal dispatch")

	// ErrReturnValueNotAvailable is returned when the return slot is read before it was written.
	ErrReturnValueNotAvailable = zerr.Wrap(ErrProtocolMisuse, "return value not yet available")

	// ErrArgumentIndex is returned when an argument index is out of range.
	ErrArgumentIndex = zerr.Wrap(ErrProtocolMisuse, "argument index out of range")

	// ErrArgumentType is returned when an argument cannot be passed as the declared parameter type.
	ErrArgumentType = zerr.Wrap(ErrProtocolMisuse, "argument type mismatch")
)
