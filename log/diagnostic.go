package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

var (
	diagLogger     *zap.Logger
	diagLoggerOnce sync.Once
	diagLoggerMu   sync.RWMutex
)

// Logger returns the logger used for host diagnostic events.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	diagLoggerOnce.Do(func() {
		diagLoggerMu.Lock()
		if diagLogger == nil {
			diagLogger = zap.NewNop()
		}
		diagLoggerMu.Unlock()
	})
	diagLoggerMu.RLock()
	defer diagLoggerMu.RUnlock()
	return diagLogger
}

// SetLogger replaces the diagnostic logger. A nil logger restores the no-op
// logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Logger()
	diagLoggerMu.Lock()
	diagLogger = l
	diagLoggerMu.Unlock()
}

// NewDiagnosticListener returns an error observer that records every host
// diagnostic event on logger, or on Logger() when logger is nil. Fatal kinds
// are logged at error level, warnings at warn, deprecations and notices at
// info.
//
//	exception.RegisterErrorObserver(host, log.NewDiagnosticListener(zapLogger))
func NewDiagnosticListener(logger *zap.Logger) ports.ErrorObserver {
	return func(kind entities.ErrorType, file *entities.ZendStr, line uint32, message *entities.ZendStr) {
		l := logger
		if l == nil {
			l = Logger()
		}
		if ce := l.Check(diagnosticLevel(kind), message.String()); ce != nil {
			ce.Write(
				zap.String("type", kind.String()),
				zap.String("file", file.String()),
				zap.Uint32("line", line),
			)
		}
	}
}

func diagnosticLevel(kind entities.ErrorType) zapcore.Level {
	switch {
	case kind.IsFatal():
		return zapcore.ErrorLevel
	case kind&(entities.EWarning|entities.ECoreWarning|entities.ECompileWarning|entities.EUserWarning) != 0:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
