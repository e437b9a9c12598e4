package encryption

import (
	"go.uber.org/zap"
)

// Options control a single Encrypt or Decrypt call. None of them is retained after the call.
type Options struct {
	// Progress, if set, is notified after every chunk.
	Progress Reporter

	// DeleteSource removes the source file after success. Failure to delete is logged, not returned.
	DeleteSource bool

	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}

	return o.Logger
}

func (o Options) report(progress float64) {
	if o.Progress != nil {
		o.Progress.Report(progress)
	}
}
