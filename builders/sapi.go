package builders

import (
	"io/fs"
	"strconv"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
)

// SapiStartupFunc is called when the host starts the SAPI.
type SapiStartupFunc func(sapi *SapiModule) int

// SapiShutdownFunc is called when the host stops the SAPI.
type SapiShutdownFunc func(sapi *SapiModule) int

// SapiActivateFunc is called at the start of every request.
type SapiActivateFunc func() int

// SapiDeactivateFunc is called at the end of every request.
type SapiDeactivateFunc func() int

// SapiUbWriteFunc writes script output and returns the number of bytes consumed.
type SapiUbWriteFunc func(str []byte) int

// SapiFlushFunc flushes buffered output.
type SapiFlushFunc func(serverContext any)

// SapiGetStatFunc returns the stat of the executing script.
type SapiGetStatFunc func() (fs.FileInfo, bool)

// SapiGetEnvFunc looks up an environment variable for the current request.
type SapiGetEnvFunc func(name string) (string, bool)

// SapiErrorFunc reports an error raised by the SAPI layer itself.
type SapiErrorFunc func(kind entities.ErrorType, message string)

// SapiHeaderHandlerFunc is offered every header operation before it is applied.
type SapiHeaderHandlerFunc func(header *SapiHeader, op HeaderOp, headers *SapiHeaders) int

// SapiSendHeadersFunc sends the complete header block.
type SapiSendHeadersFunc func(headers *SapiHeaders) int

// SapiSendHeaderFunc sends one header line. A nil header marks the end of the block.
type SapiSendHeaderFunc func(header *SapiHeader, serverContext any)

// SapiReadPostFunc fills buf with request body bytes and returns the count.
type SapiReadPostFunc func(buf []byte) int

// SapiReadCookiesFunc returns the raw Cookie header.
type SapiReadCookiesFunc func() string

// SapiRegisterServerVariablesFunc populates $_SERVER.
type SapiRegisterServerVariablesFunc func(vars TrackVars)

// SapiLogMessageFunc writes a line to the SAPI log.
type SapiLogMessageFunc func(message string, syslogType int)

// SapiRequestTimeFunc reports the request start time in seconds.
type SapiRequestTimeFunc func() (float64, bool)

// SapiTerminateProcessFunc is called when the host must kill the process.
type SapiTerminateProcessFunc func()

// SapiGetUIDFunc reports the uid the request runs as.
type SapiGetUIDFunc func() (uint32, bool)

// SapiGetGIDFunc reports the gid the request runs as.
type SapiGetGIDFunc func() (uint32, bool)

// SapiPostReaderFunc reads the request body using the read_post callback.
type SapiPostReaderFunc func(read SapiReadPostFunc) []byte

// SapiTreatDataFunc splits raw input into variables.
type SapiTreatDataFunc func(source InputSource, data []byte, vars TrackVars)

// SapiInputFilterFunc may rewrite or reject each incoming variable.
type SapiInputFilterFunc func(source InputSource, name string, value []byte) ([]byte, bool)

// SapiInputFilterInitFunc initialises the input filter and returns its flags.
type SapiInputFilterInitFunc func() uint32

// SapiIniDefaultsFunc seeds configuration defaults before INI files are read.
type SapiIniDefaultsFunc func(defaults map[string]string)

// SapiGetFdFunc returns the client socket descriptor.
type SapiGetFdFunc func() (int, bool)

// SapiForceHTTP10Func forces an HTTP/1.0 response.
type SapiForceHTTP10Func func() int

// SapiHeader is one response header line.
type SapiHeader struct {
	Header string
}

// HeaderOp is the operation applied by a header handler.
type HeaderOp int

const (
	HeaderReplace HeaderOp = iota
	HeaderAdd
	HeaderDelete
	HeaderDeleteAll
	HeaderSetStatus
)

// SapiHeaders is the header state of the current response.
type SapiHeaders struct {
	Headers          []SapiHeader
	HTTPResponseCode int
	MimeType         string
	HTTPStatusLine   string
}

// InputSource identifies the origin of request variables.
type InputSource int

const (
	ParsePost InputSource = iota
	ParseGet
	ParseCookie
	ParseString
	ParseEnv
	ParseServer
	ParseSession
)

// TrackVars receives variables produced by treat_data and
// register_server_variables.
type TrackVars interface {
	Register(name string, value []byte)
}

// SapiModule is the finished SAPI record. Field order follows the host layout.
type SapiModule struct {
	name       entities.HostString
	prettyName entities.HostString

	startup    SapiStartupFunc
	shutdown   SapiShutdownFunc
	activate   SapiActivateFunc
	deactivate SapiDeactivateFunc

	ubWrite SapiUbWriteFunc
	flush   SapiFlushFunc
	getStat SapiGetStatFunc
	getEnv  SapiGetEnvFunc

	sapiError SapiErrorFunc

	headerHandler SapiHeaderHandlerFunc
	sendHeaders   SapiSendHeadersFunc
	sendHeader    SapiSendHeaderFunc

	readPost                SapiReadPostFunc
	readCookies             SapiReadCookiesFunc
	registerServerVariables SapiRegisterServerVariablesFunc
	logMessage              SapiLogMessageFunc
	getRequestTime          SapiRequestTimeFunc
	terminateProcess        SapiTerminateProcessFunc

	phpIniPathOverride entities.HostString
	defaultPostReader  SapiPostReaderFunc
	treatData          SapiTreatDataFunc
	executableLocation entities.HostString

	phpIniIgnore    bool
	phpIniIgnoreCwd bool

	getFd         SapiGetFdFunc
	forceHTTP10   SapiForceHTTP10Func
	getTargetUID  SapiGetUIDFunc
	getTargetGID  SapiGetGIDFunc
	inputFilter   SapiInputFilterFunc
	iniDefaults   SapiIniDefaultsFunc
	phpinfoAsText bool

	iniEntries          entities.HostString
	additionalFunctions []*FunctionEntry
	inputFilterInit     SapiInputFilterInitFunc
}

// Name returns the SAPI name as a host string.
func (s *SapiModule) Name() entities.HostString { return s.name }

// PrettyName returns the display name as a host string.
func (s *SapiModule) PrettyName() entities.HostString { return s.prettyName }

// Startup returns the SAPI startup callback, or nil.
func (s *SapiModule) Startup() SapiStartupFunc { return s.startup }

// Shutdown returns the shutdown callback, or nil.
func (s *SapiModule) Shutdown() SapiShutdownFunc { return s.shutdown }

// Activate returns the activate callback, or nil.
func (s *SapiModule) Activate() SapiActivateFunc { return s.activate }

// Deactivate returns the deactivate callback, or nil.
func (s *SapiModule) Deactivate() SapiDeactivateFunc { return s.deactivate }

// UbWrite returns the unbuffered output writer, or nil.
func (s *SapiModule) UbWrite() SapiUbWriteFunc { return s.ubWrite }

// Flush returns the flush callback, or nil.
func (s *SapiModule) Flush() SapiFlushFunc { return s.flush }

// GetStat returns the script stat callback, or nil.
func (s *SapiModule) GetStat() SapiGetStatFunc { return s.getStat }

// GetEnv returns the environment lookup, or nil.
func (s *SapiModule) GetEnv() SapiGetEnvFunc { return s.getEnv }

// SapiError returns the error callback. It defaults to DefaultSapiError.
func (s *SapiModule) SapiError() SapiErrorFunc { return s.sapiError }

// HeaderHandler returns the header handler callback, or nil.
func (s *SapiModule) HeaderHandler() SapiHeaderHandlerFunc { return s.headerHandler }

// SendHeaders returns the send headers callback, or nil.
func (s *SapiModule) SendHeaders() SapiSendHeadersFunc { return s.sendHeaders }

// SendHeader returns the single-header callback. It defaults to NoopSendHeader.
func (s *SapiModule) SendHeader() SapiSendHeaderFunc { return s.sendHeader }

// ReadPost returns the request body read callback, or nil.
func (s *SapiModule) ReadPost() SapiReadPostFunc { return s.readPost }

// ReadCookies returns the read cookies callback, or nil.
func (s *SapiModule) ReadCookies() SapiReadCookiesFunc { return s.readCookies }

// LogMessage returns the log message callback, or nil.
func (s *SapiModule) LogMessage() SapiLogMessageFunc { return s.logMessage }

// GetRequestTime returns the request start time callback, or nil.
func (s *SapiModule) GetRequestTime() SapiRequestTimeFunc { return s.getRequestTime }

// TerminateProcess returns the terminate process callback, or nil.
func (s *SapiModule) TerminateProcess() SapiTerminateProcessFunc { return s.terminateProcess }

// PhpIniPathOverride returns the ini path override, or the null string.
func (s *SapiModule) PhpIniPathOverride() entities.HostString { return s.phpIniPathOverride }

// DefaultPostReader returns the request body reader. It defaults to DefaultPostReader.
func (s *SapiModule) DefaultPostReader() SapiPostReaderFunc { return s.defaultPostReader }

// TreatData returns the input parsing callback. It defaults to DefaultTreatData.
func (s *SapiModule) TreatData() SapiTreatDataFunc { return s.treatData }

// ExecutableLocation returns the executable path, or the null string.
func (s *SapiModule) ExecutableLocation() entities.HostString { return s.executableLocation }

// PhpIniIgnore reports whether ini files are skipped.
func (s *SapiModule) PhpIniIgnore() bool { return s.phpIniIgnore }

// PhpIniIgnoreCwd reports whether the working directory is left out of the ini search.
func (s *SapiModule) PhpIniIgnoreCwd() bool { return s.phpIniIgnoreCwd }

// GetFd returns the connection descriptor callback, or nil.
func (s *SapiModule) GetFd() SapiGetFdFunc { return s.getFd }

// ForceHTTP10 returns the callback that forces HTTP/1.0 responses, or nil.
func (s *SapiModule) ForceHTTP10() SapiForceHTTP10Func { return s.forceHTTP10 }

// GetTargetUID returns the target user id callback, or nil.
func (s *SapiModule) GetTargetUID() SapiGetUIDFunc { return s.getTargetUID }

// GetTargetGID returns the target group id callback, or nil.
func (s *SapiModule) GetTargetGID() SapiGetGIDFunc { return s.getTargetGID }

// InputFilter returns the input filter. It defaults to DefaultInputFilter.
func (s *SapiModule) InputFilter() SapiInputFilterFunc { return s.inputFilter }

// IniDefaults returns the ini defaults callback, or nil.
func (s *SapiModule) IniDefaults() SapiIniDefaultsFunc { return s.iniDefaults }

// PhpinfoAsText reports whether phpinfo renders plain text.
func (s *SapiModule) PhpinfoAsText() bool { return s.phpinfoAsText }

// IniEntries returns the ini block applied at startup, or the null string.
func (s *SapiModule) IniEntries() entities.HostString { return s.iniEntries }

// InputFilterInit returns the input filter init callback, or nil.
func (s *SapiModule) InputFilterInit() SapiInputFilterInitFunc { return s.inputFilterInit }

// RegisterServerVariables returns the server variable callback, or nil.
func (s *SapiModule) RegisterServerVariables() SapiRegisterServerVariablesFunc {
	return s.registerServerVariables
}

// AdditionalFunctions returns the functions the SAPI registers globally.
func (s *SapiModule) AdditionalFunctions() []*FunctionEntry {
	return append([]*FunctionEntry(nil), s.additionalFunctions...)
}

// SapiBuilder builds a SapiModule.
//
//	sapi, err := builders.NewSapiBuilder(allocator, "embed", "Embedded host").
//		UbWriteFunction(func(p []byte) int { return out.Write(p) }).
//		Build()
type SapiBuilder struct {
	seal
	alloc StringAllocator

	name               string
	prettyName         string
	phpIniPathOverride *string
	executableLocation *string
	ini                *IniBuilder

	module SapiModule
}

// NewSapiBuilder creates a builder seeded with the host defaults: the default
// error callback, post reader, treat_data and input filter.
func NewSapiBuilder(alloc StringAllocator, name, prettyName string) *SapiBuilder {
	return &SapiBuilder{
		alloc:      alloc,
		name:       name,
		prettyName: prettyName,
		module: SapiModule{
			sapiError:         DefaultSapiError,
			defaultPostReader: DefaultPostReader,
			treatData:         DefaultTreatData,
			inputFilter:       DefaultInputFilter,
		},
	}
}

// StartupFunction sets the startup callback.
func (b *SapiBuilder) StartupFunction(f SapiStartupFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.startup = f
	}
	return b
}

// ShutdownFunction sets the shutdown callback.
func (b *SapiBuilder) ShutdownFunction(f SapiShutdownFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.shutdown = f
	}
	return b
}

// ActivateFunction sets the per-request activation callback.
func (b *SapiBuilder) ActivateFunction(f SapiActivateFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.activate = f
	}
	return b
}

// DeactivateFunction sets the per-request deactivation callback.
func (b *SapiBuilder) DeactivateFunction(f SapiDeactivateFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.deactivate = f
	}
	return b
}

// UbWriteFunction sets the output write callback.
func (b *SapiBuilder) UbWriteFunction(f SapiUbWriteFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.ubWrite = f
	}
	return b
}

// FlushFunction sets the output flush callback.
func (b *SapiBuilder) FlushFunction(f SapiFlushFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.flush = f
	}
	return b
}

// GetStatFunction sets the script stat callback.
func (b *SapiBuilder) GetStatFunction(f SapiGetStatFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.getStat = f
	}
	return b
}

// GetEnvFunction sets the environment lookup callback.
func (b *SapiBuilder) GetEnvFunction(f SapiGetEnvFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.getEnv = f
	}
	return b
}

// SapiErrorFunction replaces the default error callback.
func (b *SapiBuilder) SapiErrorFunction(f SapiErrorFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.sapiError = f
	}
	return b
}

// HeaderHandlerFunction sets the header operation hook.
func (b *SapiBuilder) HeaderHandlerFunction(f SapiHeaderHandlerFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.headerHandler = f
	}
	return b
}

// SendHeadersFunction sets the header block callback.
func (b *SapiBuilder) SendHeadersFunction(f SapiSendHeadersFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.sendHeaders = f
	}
	return b
}

// SendHeaderFunction sets the per-line header callback.
func (b *SapiBuilder) SendHeaderFunction(f SapiSendHeaderFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.sendHeader = f
	}
	return b
}

// ReadPostFunction sets the request body reader.
func (b *SapiBuilder) ReadPostFunction(f SapiReadPostFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.readPost = f
	}
	return b
}

// ReadCookiesFunction sets the cookie reader.
func (b *SapiBuilder) ReadCookiesFunction(f SapiReadCookiesFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.readCookies = f
	}
	return b
}

// RegisterServerVariablesFunction sets the $_SERVER population callback.
func (b *SapiBuilder) RegisterServerVariablesFunction(f SapiRegisterServerVariablesFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.registerServerVariables = f
	}
	return b
}

// LogMessageFunction sets the log callback.
func (b *SapiBuilder) LogMessageFunction(f SapiLogMessageFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.logMessage = f
	}
	return b
}

// GetRequestTimeFunction sets the request time callback.
func (b *SapiBuilder) GetRequestTimeFunction(f SapiRequestTimeFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.getRequestTime = f
	}
	return b
}

// TerminateProcessFunction sets the process termination callback.
func (b *SapiBuilder) TerminateProcessFunction(f SapiTerminateProcessFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.terminateProcess = f
	}
	return b
}

// GetTargetUIDFunction sets the uid callback.
func (b *SapiBuilder) GetTargetUIDFunction(f SapiGetUIDFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.getTargetUID = f
	}
	return b
}

// GetTargetGIDFunction sets the gid callback.
func (b *SapiBuilder) GetTargetGIDFunction(f SapiGetGIDFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.getTargetGID = f
	}
	return b
}

// GetFdFunction sets the client socket callback.
func (b *SapiBuilder) GetFdFunction(f SapiGetFdFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.getFd = f
	}
	return b
}

// ForceHTTP10Function sets the HTTP/1.0 downgrade callback.
func (b *SapiBuilder) ForceHTTP10Function(f SapiForceHTTP10Func) *SapiBuilder {
	if !b.consumed() {
		b.module.forceHTTP10 = f
	}
	return b
}

// DefaultPostReaderFunction replaces the default post reader.
func (b *SapiBuilder) DefaultPostReaderFunction(f SapiPostReaderFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.defaultPostReader = f
	}
	return b
}

// TreatDataFunction replaces the default treat_data callback.
func (b *SapiBuilder) TreatDataFunction(f SapiTreatDataFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.treatData = f
	}
	return b
}

// InputFilterFunction replaces the default input filter.
func (b *SapiBuilder) InputFilterFunction(f SapiInputFilterFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.inputFilter = f
	}
	return b
}

// InputFilterInitFunction sets the input filter initialiser.
func (b *SapiBuilder) InputFilterInitFunction(f SapiInputFilterInitFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.inputFilterInit = f
	}
	return b
}

// IniDefaultsFunction sets the configuration defaults callback.
func (b *SapiBuilder) IniDefaultsFunction(f SapiIniDefaultsFunc) *SapiBuilder {
	if !b.consumed() {
		b.module.iniDefaults = f
	}
	return b
}

// PhpIniPathOverride sets the php.ini path the host reads instead of searching.
func (b *SapiBuilder) PhpIniPathOverride(path string) *SapiBuilder {
	if !b.consumed() {
		b.phpIniPathOverride = &path
	}
	return b
}

// PhpIniIgnore stops the host from reading any php.ini.
func (b *SapiBuilder) PhpIniIgnore(ignore bool) *SapiBuilder {
	if !b.consumed() {
		b.module.phpIniIgnore = ignore
	}
	return b
}

// PhpIniIgnoreCwd stops the host from looking for php.ini in the working directory.
func (b *SapiBuilder) PhpIniIgnoreCwd(ignore bool) *SapiBuilder {
	if !b.consumed() {
		b.module.phpIniIgnoreCwd = ignore
	}
	return b
}

// ExecutableLocation sets the path reported as the host binary.
func (b *SapiBuilder) ExecutableLocation(location string) *SapiBuilder {
	if !b.consumed() {
		b.executableLocation = &location
	}
	return b
}

// PhpinfoAsText renders phpinfo() as plain text.
func (b *SapiBuilder) PhpinfoAsText(text bool) *SapiBuilder {
	if !b.consumed() {
		b.module.phpinfoAsText = text
	}
	return b
}

// IniEntries attaches an INI block. The INI builder is finished, and so
// consumed, when the SAPI builder is built.
func (b *SapiBuilder) IniEntries(ini *IniBuilder) *SapiBuilder {
	if !b.consumed() {
		b.ini = ini
	}
	return b
}

// AdditionalFunctions registers functions available to every script.
func (b *SapiBuilder) AdditionalFunctions(fns ...*FunctionEntry) *SapiBuilder {
	if !b.consumed() {
		b.module.additionalFunctions = append(b.module.additionalFunctions, fns...)
	}
	return b
}

// Build seals the builder and returns the finished SAPI record.
func (b *SapiBuilder) Build() (*SapiModule, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}

	for i, fn := range b.module.additionalFunctions {
		if fn == nil {
			return nil, constraint("sapi", "additional_functions", "nil function entry at index "+strconv.Itoa(i))
		}
	}

	strs := newHostStrings(b.alloc)
	module := b.module
	module.name = strs.dup("name", b.name)
	module.prettyName = strs.dup("pretty_name", b.prettyName)
	module.phpIniPathOverride = strs.optional("php_ini_path_override", b.phpIniPathOverride)
	module.executableLocation = strs.optional("executable_location", b.executableLocation)
	if err := strs.finish(); err != nil {
		return nil, err
	}

	if b.ini != nil {
		entries, err := b.ini.Finish()
		if err != nil {
			strs.rollback()
			return nil, err
		}
		module.iniEntries = entries
	}

	if module.sendHeader == nil {
		module.sendHeader = NoopSendHeader
	}
	module.additionalFunctions = append([]*FunctionEntry(nil), b.module.additionalFunctions...)

	return &module, nil
}
