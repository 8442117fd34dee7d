// Package hostfuncs dispatches host calls to the Go handlers behind an
// extension's functions.
//
// A HandlerRegistry is built once from finished function records. Invoke
// checks the argument count against the record, runs the handler through the
// middleware chain and turns any returned error, or recovered panic, into an
// exception raised in the host.
package hostfuncs
