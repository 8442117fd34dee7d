// Package builders constructs the fixed-layout records the host engine reads
// at registration time: module entries, class entries, function entries, SAPI
// modules and INI blocks.
//
// Every builder follows the same protocol. New* seeds the host-mandated
// defaults, chained setters record values without validating them, and
// Build (Finish for INI) seals the builder and returns the finished record.
// All string fields are copied into host memory at that point; if any of them
// cannot be converted, or a cross-field rule is broken, Build returns an error,
// releases whatever it had already copied and produces no record. A builder on
// which Build is never called has no effect on the host.
//
// Finished records are opaque. They expose read accessors only, so a record
// cannot change after the host has been handed its address.
package builders
