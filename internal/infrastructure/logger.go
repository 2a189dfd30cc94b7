package infrastructure

import (
	"go.uber.org/zap"
)

// NewLogger builds the application logger. Development mode switches
// to the console encoder with debug level.
func NewLogger(devMode bool) (*zap.Logger, error) {
	var zapConfig zap.Config
	if devMode {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
