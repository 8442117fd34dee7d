// Package host boots a host engine compiled to WebAssembly and binds it to the
// SDK.
//
// An Executor owns a wazero runtime. It instantiates the "zendext" host
// module, then the engine itself, and attaches the two so the allocator,
// exception and observer ports reach the engine's exports. Error observers
// registered through WithObserver are installed once the engine is attached.
package host
