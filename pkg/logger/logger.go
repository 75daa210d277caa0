package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It starts as a no-op so packages can
// log before InitLogger runs (tests never call it); main replaces it at
// startup.
var Log = zap.NewNop()

// InitLogger builds the global logger. Release mode emits production
// JSON; anything else gets the colored development console output.
func InitLogger(mode string) {
	var cfg zap.Config
	if mode == "release" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.OutputPaths = []string{"stdout"}

	l, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	Log = l
	zap.ReplaceGlobals(Log)
}

// Sync flushes buffered entries. Called on shutdown.
func Sync() {
	_ = Log.Sync()
}
