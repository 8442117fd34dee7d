// Package testutil holds fixtures shared by the SDK's tests.
package testutil

const (
	valI32 = 0x7f
	valI64 = 0x7e
)

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func vec(items ...[]byte) []byte {
	return concat(uleb(uint64(len(items))), concat(items...))
}

func name(s string) []byte {
	return concat(uleb(uint64(len(s))), []byte(s))
}

func section(id byte, body []byte) []byte {
	return concat([]byte{id}, uleb(uint64(len(body))), body)
}

func funcType(params, results []byte) []byte {
	return concat([]byte{0x60}, uleb(uint64(len(params))), params, uleb(uint64(len(results))), results)
}

func code(locals []byte, body ...byte) []byte {
	fn := concat(locals, body)
	return concat(uleb(uint64(len(fn))), fn)
}

func global(valType byte, init []byte) []byte {
	return concat([]byte{valType, 0x01}, init, []byte{0x0b})
}

func export(n string, kind byte, idx uint64) []byte {
	return concat(name(n), []byte{kind}, uleb(idx))
}

// Addresses of the file and message strings trigger_error passes to
// error_observer ("a.php" and "boom").
const (
	ObserverFileAddr = 16
	ObserverMsgAddr  = 32
)

const (
	logAddr = 48
	logText = "disk full"
)

// Function indices: imports first.
const (
	fnErrorObserver = iota
	fnSapiLog
	fnEmalloc
	fnEfree
	fnEstrdup
	fnThrowEx
	fnThrowObject
	fnLookupClass
	fnTrigger
	fnLogSeverity
	fnLogTrigger
)

// Global indices.
const (
	gHeap = iota
	gLastClass
	gLastCode
	gLastMsg
	gLastObject
	gFrees
	gLastLog
	gLastLogType
	gLastFormat
)

// EngineModule returns a minimal engine module assembled by hand. It exports
// the release allocator entry points, bump-allocating from 1024 and counting
// frees. Throw and log calls record their arguments in exported globals
// (heap, last_class, last_code, last_msg, last_object, frees, last_log,
// last_log_type, last_format). trigger_error and trigger_log call back into
// the "zendext" host module.
func EngineModule() []byte {
	types := section(1, vec(
		funcType([]byte{valI32}, []byte{valI32}),              // 0: (i32) -> i32
		funcType([]byte{valI32}, nil),                         // 1: (i32) -> ()
		funcType([]byte{valI32, valI64, valI32, valI32}, nil), // 2: throw_ex
		funcType([]byte{valI32, valI32, valI32, valI32}, nil), // 3: error_observer
		funcType(nil, nil),                                    // 4: () -> ()
		funcType([]byte{valI32, valI32}, nil),                 // 5: log with severity
		funcType([]byte{valI64, valI32}, nil),                 // 6: sapi_log_message
	))

	imports := section(2, vec(
		concat(name("zendext"), name("error_observer"), []byte{0x00}, uleb(3)),
		concat(name("zendext"), name("sapi_log_message"), []byte{0x00}, uleb(6)),
	))

	functions := section(3, vec(
		uleb(0), // emalloc
		uleb(1), // efree
		uleb(0), // estrdup
		uleb(2), // zend_throw_exception_ex
		uleb(1), // zend_throw_exception_object
		uleb(0), // zend_lookup_class
		uleb(4), // trigger_error
		uleb(5), // php_log_err_with_severity
		uleb(4), // trigger_log
	))

	memory := section(5, vec([]byte{0x00, 0x01}))

	globals := section(6, vec(
		global(valI32, concat([]byte{0x41}, sleb(1024))),
		global(valI32, []byte{0x41, 0x00}),
		global(valI64, []byte{0x42, 0x00}),
		global(valI32, []byte{0x41, 0x00}),
		global(valI32, []byte{0x41, 0x00}),
		global(valI32, []byte{0x41, 0x00}),
		global(valI32, []byte{0x41, 0x00}),
		global(valI32, []byte{0x41, 0x00}),
		global(valI32, []byte{0x41, 0x00}),
	))

	exports := section(7, vec(
		export("memory", 0x02, 0),
		export("emalloc", 0x00, fnEmalloc),
		export("efree", 0x00, fnEfree),
		export("estrdup", 0x00, fnEstrdup),
		export("zend_throw_exception_ex", 0x00, fnThrowEx),
		export("zend_throw_exception_object", 0x00, fnThrowObject),
		export("zend_lookup_class", 0x00, fnLookupClass),
		export("trigger_error", 0x00, fnTrigger),
		export("php_log_err_with_severity", 0x00, fnLogSeverity),
		export("trigger_log", 0x00, fnLogTrigger),
		export("heap", 0x03, gHeap),
		export("last_class", 0x03, gLastClass),
		export("last_code", 0x03, gLastCode),
		export("last_msg", 0x03, gLastMsg),
		export("last_object", 0x03, gLastObject),
		export("frees", 0x03, gFrees),
		export("last_log", 0x03, gLastLog),
		export("last_log_type", 0x03, gLastLogType),
		export("last_format", 0x03, gLastFormat),
	))

	noLocals := []byte{0x00}
	packedLog := int64(logAddr)<<32 | int64(len(logText))

	codes := section(10, vec(
		// emalloc: sizes of 64 KiB or more fail, otherwise bump by size rounded up to 8.
		code(noLocals,
			0x20, 0x00, 0x41, 0x80, 0x80, 0x04, 0x4f,   // local.get 0; i32.const 65536; i32.ge_u
			0x04, valI32,                               // if (result i32)
			0x41, 0x00,                                 // i32.const 0
			0x05,                                       // else
			0x23, gHeap, 0x23, gHeap, 0x20, 0x00, 0x6a, // heap; heap + size
			0x41, 0x07, 0x6a, 0x41, 0x78, 0x71,         // (+7) & -8
			0x24, gHeap,                                // global.set heap
			0x0b,                                       // end if
			0x0b,
		),
		// efree: frees++
		code(noLocals, 0x23, gFrees, 0x41, 0x01, 0x6a, 0x24, gFrees, 0x0b),
		// estrdup: len = strlen(src); dst = emalloc(len+1); memory.copy(dst, src, len+1)
		code([]byte{0x01, 0x02, valI32},
			0x02, 0x40,                                                // block
			0x03, 0x40,                                                // loop
			0x20, 0x00, 0x20, 0x01, 0x6a, 0x2d, 0x00, 0x00, 0x45,      // load8_u(src+len) == 0
			0x0d, 0x01,                                                // br_if 1
			0x20, 0x01, 0x41, 0x01, 0x6a, 0x21, 0x01,                  // len++
			0x0c, 0x00,                                                // br 0
			0x0b, 0x0b,                                                // end loop, end block
			0x20, 0x01, 0x41, 0x01, 0x6a, 0x10, fnEmalloc, 0x22, 0x02, // local.tee dst
			0x20, 0x00, 0x20, 0x01, 0x41, 0x01, 0x6a,                  // src, len+1
			0xfc, 0x0a, 0x00, 0x00,                                    // memory.copy
			0x20, 0x02,
			0x0b,
		),
		// zend_throw_exception_ex: record class, code, format and message.
		code(noLocals,
			0x20, 0x00, 0x24, gLastClass,
			0x20, 0x01, 0x24, gLastCode,
			0x20, 0x02, 0x24, gLastFormat,
			0x20, 0x03, 0x24, gLastMsg,
			0x0b,
		),
		// zend_throw_exception_object: record the handle.
		code(noLocals, 0x20, 0x00, 0x24, gLastObject, 0x0b),
		// zend_lookup_class: 1000 + first byte of the name.
		code(noLocals, 0x20, 0x00, 0x2d, 0x00, 0x00, 0x41, 0xe8, 0x07, 0x6a, 0x0b),
		// trigger_error: error_observer(E_WARNING, "a.php", 7, "boom")
		code(noLocals,
			0x41, 0x02, 0x41, ObserverFileAddr, 0x41, 0x07, 0x41, ObserverMsgAddr,
			0x10, fnErrorObserver,
			0x0b,
		),
		// php_log_err_with_severity: record message and type.
		code(noLocals, 0x20, 0x00, 0x24, gLastLog, 0x20, 0x01, 0x24, gLastLogType, 0x0b),
		// trigger_log: sapi_log_message(packed(logAddr, len), LOG_ERR)
		code(noLocals, concat([]byte{0x42}, sleb(packedLog), []byte{0x41, 0x03, 0x10, fnSapiLog, 0x0b})...),
	))

	data := section(11, vec(
		concat([]byte{0x00, 0x41, ObserverFileAddr, 0x0b}, name("a.php\x00")),
		concat([]byte{0x00, 0x41, ObserverMsgAddr, 0x0b}, name("boom\x00")),
		concat([]byte{0x00, 0x41, logAddr, 0x0b}, name(logText)),
	))

	return concat(
		[]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		types, imports, functions, memory, globals, exports, codes, data,
	)
}
