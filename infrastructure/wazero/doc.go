// Package wazero runs a WebAssembly build of the host engine under the wazero
// runtime and exposes it through the SDK ports.
//
// The engine module must export its memory and the allocator and exception
// primitives:
//
//	emalloc(size i32) i32
//	efree(ptr i32)
//	estrdup(src i32) i32
//	zend_throw_exception_ex(class i32, code i64, format i32, message i32)
//	zend_throw_exception_object(handle i32)
//
// Debug builds of the engine export _emalloc, _efree and _estrdup instead,
// each taking the extra file, line, original file and original line arguments.
// Optional exports are zend_lookup_class(name i32) i32, used to resolve
// exception classes by name, and php_log_err_with_severity(message i32, type i32).
//
// The engine imports from the "zendext" host module:
//
//	error_observer(type i32, file i32, line i32, message i32)
//	sapi_log_message(message i64, type i32)
//
// where sapi_log_message receives a packed pointer and length. Listeners may
// replace the file or message of an error_observer event; a replacement is
// written back into the engine's buffer only when it fits there.
//
// # Basic Usage
//
//	runtime := wazero.NewRuntime(ctx)
//	engine, err := zwazero.NewEngine(ctx, runtime)
//	if err != nil {
//	    return err
//	}
//	mod, err := runtime.Instantiate(ctx, engineWasm)
//	if err != nil {
//	    return err
//	}
//	if err := engine.Attach(mod); err != nil {
//	    return err
//	}
//	allocator := alloc.New(engine)
//	exception.RegisterErrorObserver(engine, log.NewDiagnosticListener(log.Logger()))
package wazero
