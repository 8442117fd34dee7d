package ports

// Syslog priorities passed to HostLogger, as used by the host's log callback.
const (
	SyslogErr     = 3
	SyslogWarning = 4
	SyslogNotice  = 5
	SyslogInfo    = 6
	SyslogDebug   = 7
)

// HostLogger writes a line to the host's log sink.
type HostLogger interface {
	LogMessage(message string, syslogType int)
}

// HostLoggerFunc adapts a plain function, such as a SAPI log callback, to HostLogger.
type HostLoggerFunc func(message string, syslogType int)

// LogMessage implements HostLogger.
func (f HostLoggerFunc) LogMessage(message string, syslogType int) {
	f(message, syslogType)
}
