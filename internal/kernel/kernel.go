// Package kernel binds the Extism host ABI (`extism:host/env`).
//
// Every method mirrors exactly one host import. Host addresses are opaque u64
// handles into host-owned memory; guest buffers are passed by pointer and length.
// Nothing here allocates, validates or frees on the caller's behalf.
package kernel

import "sync"

// Kernel is the set of host functions a plugin can call.
type Kernel interface {
	// InputLength returns the byte length of the invocation input.
	InputLength() uint64
	// InputLoad copies len(buf) input bytes starting at offset into buf.
	InputLoad(offset uint64, buf []byte)
	// OutputSet installs data as the invocation output.
	OutputSet(data []byte)
	// ErrorSet installs data as the invocation error.
	ErrorSet(data []byte)

	Alloc(n uint64) uint64
	Free(addr uint64)
	Length(addr uint64) uint64
	Store(addr, offset uint64, data []byte)
	Load(addr, offset uint64, buf []byte)

	// HTTPRequest runs the request described by the request:* variables.
	// A nonzero status means no response handle was produced.
	HTTPRequest(req uint64) (status int32, response uint64)
	HTTPStatusCode(response uint64) int32

	// ConfigGet and VarGet return 0 when the key is unset. A nonzero result
	// is an allocation owned by the caller.
	ConfigGet(key []byte) uint64
	VarGet(name []byte) uint64
	VarSet(name, value []byte)

	LogInfo(msg []byte)
	LogDebug(msg []byte)
	LogWarn(msg []byte)
	LogError(msg []byte)
}

var (
	mu      sync.RWMutex
	current Kernel = defaultKernel()
)

// Get returns the active kernel.
func Get() Kernel {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Use makes k the active kernel and returns a func restoring the previous one.
func Use(k Kernel) (restore func()) {
	mu.Lock()
	prev := current
	current = k
	mu.Unlock()

	return func() {
		mu.Lock()
		current = prev
		mu.Unlock()
	}
}
