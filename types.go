// Package sdk is the entry point of the extension SDK. It carries the
// free-form extension configuration helpers and manifest validation; the
// building blocks live in alloc, builders, exception and hostfuncs.
package sdk

const (
	// Version of the SDK
	Version = "0.1.0-alpha"
	// MinModuleAPINo is the oldest engine module API the builders target.
	MinModuleAPINo = 20230831
)

// Config is the free-form "config" section of an extension manifest, decoded
// from YAML. Nested sections are maps; keys may be addressed with dots.
type Config map[string]interface{}
