package ports

// Logger defines the interface for logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(err error)
}

// NopLogger discards every message.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string) {}

// Info implements Logger.
func (NopLogger) Info(string) {}

// Warn implements Logger.
func (NopLogger) Warn(string) {}

// Error implements Logger.
func (NopLogger) Error(error) {}
