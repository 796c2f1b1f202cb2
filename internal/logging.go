package internal

import "go.uber.org/zap"

// NewLogger returns a development logger when verbose is set, otherwise a
// no-op logger so normal CLI output stays clean.
func NewLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
