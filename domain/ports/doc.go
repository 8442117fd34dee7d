// Package ports defines the host engine boundary and the infrastructure
// interfaces the SDK depends on. Domain logic depends on these abstractions;
// host adapters (a real engine, the wazero adapter, the in-memory test engine)
// implement them.
package ports
