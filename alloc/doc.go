// Package alloc routes extension memory through the host engine's request
// allocator so the host's arena accounting and the extension agree on every
// live byte.
//
// The host exposes two incompatible primitive sets depending on how it was
// compiled. Release engines take only sizes and pointers; debug engines also
// take the allocation site. The set used by this package is chosen at build
// time with the hostdebug build tag:
//
//	go build -tags hostdebug ./...
//
// Memory returned by Emalloc must be released with Efree from the same
// Allocator, never by anything else. Host allocator exhaustion is not an error
// value: like the host, the allocator does not return from it and panics with
// an *errors.AllocationError instead.
package alloc
