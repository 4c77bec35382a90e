package notify

import "go.uber.org/zap"

// LogSink writes notices to a zap logger. Used where stdout is taken,
// e.g. by the MCP stdio server.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("notice")}
}

func (l *LogSink) Show(n Notice) {
	l.logger.Info(n.Title,
		zap.String("message", n.Message),
		zap.String("severity", string(n.Severity)),
	)
}
