package domain

import "strings"

// InvocationState represents the lifecycle state of a single intercepted call.
type InvocationState string

const (
	// InvocationCreated indicates the invocation was built but Proceed was not called yet.
	InvocationCreated InvocationState = "created"
	// InvocationRunning indicates interceptors are executing.
	InvocationRunning InvocationState = "running"
	// InvocationDispatching indicates the terminal dispatch is calling the concrete method.
	InvocationDispatching InvocationState = "dispatching"
	// InvocationCompleted indicates the call returned without a fault.
	InvocationCompleted InvocationState = "completed"
	// InvocationFaulted indicates an interceptor, the target or the engine returned an error.
	InvocationFaulted InvocationState = "faulted"
)

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLogLevel converts a configuration string to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// IsTerminal checks if a state is final (Completed or Faulted).
func (s InvocationState) IsTerminal() bool {
	switch s {
	case InvocationCompleted, InvocationFaulted:
		return true
	default:
		return false
	}
}

// String returns the state name.
func (s InvocationState) String() string {
	return string(s)
}

// NormalizeInvocationState converts a string to an InvocationState, defaulting to created if unknown.
func NormalizeInvocationState(s string) InvocationState {
	switch strings.ToLower(s) {
	case string(InvocationRunning):
		return InvocationRunning
	case string(InvocationDispatching):
		return InvocationDispatching
	case string(InvocationCompleted):
		return InvocationCompleted
	case string(InvocationFaulted):
		return InvocationFaulted
	default:
		return InvocationCreated
	}
}
