package global

import "go.uber.org/zap"

// NewLogger builds a JSON production logger for ENV=production and a console development logger otherwise
func NewLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// LoggerOrNop lets constructors accept a nil logger
func LoggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
