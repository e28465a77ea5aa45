// Package logger builds the application's zap logger. Production mode
// emits JSON; anything else uses the human-friendly development encoder.
package logger

import "go.uber.org/zap"

func New(env string) (*zap.Logger, error) {
	if env == "prod" || env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
