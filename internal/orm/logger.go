package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// EngineLoggerName is the logger prefix for SQL statement logging.
const EngineLoggerName = "orm.engine"

// engineLogger adapts a [log.Logger] to gorm's logger interface.
// Every statement is logged at info, slow statements at warn, failures at error.
type engineLogger struct {
	l     *log.Logger
	level glogger.LogLevel
	slow  time.Duration
}

func newEngineLogger(l *log.Logger) *engineLogger {
	if l == nil {
		l = log.Default()
	}
	return &engineLogger{l: l.WithPrefix(EngineLoggerName), level: glogger.Info, slow: 200 * time.Millisecond}
}

// LogMode implements [glogger.Interface].
func (e *engineLogger) LogMode(level glogger.LogLevel) glogger.Interface {
	c := *e
	c.level = level
	return &c
}

// Info implements [glogger.Interface].
func (e *engineLogger) Info(_ context.Context, msg string, data ...any) {
	if e.level >= glogger.Info {
		e.l.Info(fmt.Sprintf(msg, data...))
	}
}

// Warn implements [glogger.Interface].
func (e *engineLogger) Warn(_ context.Context, msg string, data ...any) {
	if e.level >= glogger.Warn {
		e.l.Warn(fmt.Sprintf(msg, data...))
	}
}

// Error implements [glogger.Interface].
func (e *engineLogger) Error(_ context.Context, msg string, data ...any) {
	if e.level >= glogger.Error {
		e.l.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace implements [glogger.Interface].
func (e *engineLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if e.level <= glogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && e.level >= glogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		e.l.Error(sql, "rows", rows, "elapsed", elapsed, "err", err)
	case e.slow > 0 && elapsed > e.slow && e.level >= glogger.Warn:
		sql, rows := fc()
		e.l.Warn(sql, "rows", rows, "elapsed", elapsed, "slow", true)
	case e.level >= glogger.Info:
		sql, rows := fc()
		e.l.Info(sql, "rows", rows, "elapsed", elapsed)
	}
}
