package logsink

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the run logger on top of s. Entries below warn go to the
// sink's stdout, warn and above to its stderr. Entries carry no timestamp;
// the log sheet title records when the run happened.
func NewLogger(s *Sink, level string) (*zap.Logger, error) {
	floor := zapcore.InfoLevel
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		floor = lvl
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	enc := zapcore.NewConsoleEncoder(cfg)

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= floor && l < zapcore.WarnLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= floor && l >= zapcore.WarnLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(s.Stdout()), low),
		zapcore.NewCore(enc, zapcore.AddSync(s.Stderr()), high),
	)
	return zap.New(core), nil
}
