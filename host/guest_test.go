package host

// guestWasm assembles a minimal guest module. It imports the four bridge
// functions from moduleName, re-exports each of them through a wrapper
// function under the same name, and exports one page of memory as "memory".
// Calls made through the wrappers reach the bridge with the guest as the
// caller, exactly as compiled guest code would.
func guestWasm(moduleName string) []byte {
	const (
		i32 = 0x7f
		i64 = 0x7e
	)
	funcs := []struct {
		name   string
		params int
		result byte
	}{
		{"construct", 2, i64},
		{"scan", 5, i64},
		{"reserve", 1, i64},
		{"release", 2, i32},
	}

	var types, imports, decls, exports, code []byte

	types = append(types, uleb(len(funcs))...)
	imports = append(imports, uleb(len(funcs))...)
	decls = append(decls, uleb(len(funcs))...)
	exports = append(exports, uleb(len(funcs)+1)...)
	exports = append(exports, wasmName("memory")...)
	exports = append(exports, 0x02, 0x00)
	code = append(code, uleb(len(funcs))...)

	for i, f := range funcs {
		types = append(types, 0x60)
		types = append(types, uleb(f.params)...)
		for p := 0; p < f.params; p++ {
			types = append(types, i32)
		}
		types = append(types, 0x01, f.result)

		imports = append(imports, wasmName(moduleName)...)
		imports = append(imports, wasmName(f.name)...)
		imports = append(imports, 0x00)
		imports = append(imports, uleb(i)...)

		decls = append(decls, uleb(i)...)

		// Imported functions take indices 0..3, wrappers follow.
		exports = append(exports, wasmName(f.name)...)
		exports = append(exports, 0x00)
		exports = append(exports, uleb(len(funcs)+i)...)

		body := []byte{0x00} // no locals
		for p := 0; p < f.params; p++ {
			body = append(body, 0x20) // local.get
			body = append(body, uleb(p)...)
		}
		body = append(body, 0x10) // call
		body = append(body, uleb(i)...)
		body = append(body, 0x0b) // end
		code = append(code, uleb(len(body))...)
		code = append(code, body...)
	}

	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	mod = append(mod, wasmSection(1, types)...)
	mod = append(mod, wasmSection(2, imports)...)
	mod = append(mod, wasmSection(3, decls)...)
	mod = append(mod, wasmSection(5, []byte{0x01, 0x00, 0x01})...) // one memory, min 1 page
	mod = append(mod, wasmSection(7, exports)...)
	mod = append(mod, wasmSection(10, code)...)
	return mod
}

func wasmSection(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(len(payload))...)
	return append(out, payload...)
}

func wasmName(s string) []byte {
	return append(uleb(len(s)), s...)
}

func uleb(n int) []byte {
	v := uint32(n) //nolint:gosec // G115: small test values
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
