//go:build wasip1

package kernel

import "unsafe"

//go:wasmimport extism:host/env input_length
func extismInputLength() uint64

//go:wasmimport extism:host/env input_load_u8
func extismInputLoadU8(offset, length uint64, buf uint32)

//go:wasmimport extism:host/env output_set
func extismOutputSet(data uint32, length uint64)

//go:wasmimport extism:host/env error_set
func extismErrorSet(data uint32, length uint64)

//go:wasmimport extism:host/env alloc
func extismAlloc(n uint64) uint64

//go:wasmimport extism:host/env free
func extismFree(addr uint64)

//go:wasmimport extism:host/env length
func extismLength(addr uint64) uint64

//go:wasmimport extism:host/env store_u8
func extismStoreU8(addr, offset uint64, data uint32, length uint64)

//go:wasmimport extism:host/env load_u8
func extismLoadU8(addr, offset, length uint64, buf uint32)

//go:wasmimport extism:host/env http_request
func extismHTTPRequest(req uint64, out uint32) int32

//go:wasmimport extism:host/env http_status_code
func extismHTTPStatusCode(response uint64) int32

//go:wasmimport extism:host/env config_get
func extismConfigGet(key uint32, keyLength uint64) uint64

//go:wasmimport extism:host/env var_get
func extismVarGet(name uint32, nameLength uint64) uint64

//go:wasmimport extism:host/env var_set
func extismVarSet(name uint32, nameLength uint64, value uint32, valueLength uint64)

//go:wasmimport extism:host/env log_info
func extismLogInfo(msg uint32, length uint64)

//go:wasmimport extism:host/env log_debug
func extismLogDebug(msg uint32, length uint64)

//go:wasmimport extism:host/env log_warn
func extismLogWarn(msg uint32, length uint64)

//go:wasmimport extism:host/env log_error
func extismLogError(msg uint32, length uint64)

// ptr returns the linear memory address of b's backing array, or 0 if b is empty.
func ptr(b []byte) uint32 {
	if len(b) == 0 {
		return 0
	}
	//nolint:gosec // G103: linear memory addresses fit in 32 bits on wasm
	return uint32(uintptr(unsafe.Pointer(unsafe.SliceData(b))))
}

type extism struct{}

func defaultKernel() Kernel { return extism{} }

func (extism) InputLength() uint64 { return extismInputLength() }

func (extism) InputLoad(offset uint64, buf []byte) {
	extismInputLoadU8(offset, uint64(len(buf)), ptr(buf))
}

func (extism) OutputSet(data []byte) { extismOutputSet(ptr(data), uint64(len(data))) }

func (extism) ErrorSet(data []byte) { extismErrorSet(ptr(data), uint64(len(data))) }

func (extism) Alloc(n uint64) uint64 { return extismAlloc(n) }

func (extism) Free(addr uint64) { extismFree(addr) }

func (extism) Length(addr uint64) uint64 { return extismLength(addr) }

func (extism) Store(addr, offset uint64, data []byte) {
	extismStoreU8(addr, offset, ptr(data), uint64(len(data)))
}

func (extism) Load(addr, offset uint64, buf []byte) {
	extismLoadU8(addr, offset, uint64(len(buf)), ptr(buf))
}

func (extism) HTTPRequest(req uint64) (int32, uint64) {
	var response uint64
	//nolint:gosec // G103: out-pointer into linear memory
	status := extismHTTPRequest(req, uint32(uintptr(unsafe.Pointer(&response))))
	return status, response
}

func (extism) HTTPStatusCode(response uint64) int32 { return extismHTTPStatusCode(response) }

func (extism) ConfigGet(key []byte) uint64 { return extismConfigGet(ptr(key), uint64(len(key))) }

func (extism) VarGet(name []byte) uint64 { return extismVarGet(ptr(name), uint64(len(name))) }

func (extism) VarSet(name, value []byte) {
	extismVarSet(ptr(name), uint64(len(name)), ptr(value), uint64(len(value)))
}

func (extism) LogInfo(msg []byte) { extismLogInfo(ptr(msg), uint64(len(msg))) }
func (extism) LogDebug(msg []byte) { extismLogDebug(ptr(msg), uint64(len(msg))) }
func (extism) LogWarn(msg []byte) { extismLogWarn(ptr(msg), uint64(len(msg))) }
func (extism) LogError(msg []byte) { extismLogError(ptr(msg), uint64(len(msg))) }
