package services

import "go.uber.org/zap"

// NewLogger returns a json production logger, or a human readable development
// logger when debug is set.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
