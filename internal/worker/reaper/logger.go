package reaper

import (
	"fmt"
	"strings"
)

// cronLogger адаптирует Logger к cron.Logger
type cronLogger struct {
	logger Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	// cron пишет в Info каждое срабатывание, это слишком шумно
	if msg == "skip" {
		l.logger.Warn("Cron: previous run still in progress, skipping %s", formatKV(keysAndValues))
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("Cron: %s %s: %v", msg, formatKV(keysAndValues), err)
}

func formatKV(keysAndValues []interface{}) string {
	var sb strings.Builder
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	return sb.String()
}
