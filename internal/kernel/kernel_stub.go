//go:build !wasip1

package kernel

const unavailable = "extism kernel is only available when compiled for wasip1"

// native stands in for the host in native builds. Tests install a simulated
// host with Use.
type native struct{}

func defaultKernel() Kernel { return native{} }

func (native) InputLength() uint64 { panic(unavailable) }
func (native) InputLoad(uint64, []byte) { panic(unavailable) }
func (native) OutputSet([]byte) { panic(unavailable) }
func (native) ErrorSet([]byte) { panic(unavailable) }
func (native) Alloc(uint64) uint64 { panic(unavailable) }
func (native) Free(uint64) { panic(unavailable) }
func (native) Length(uint64) uint64 { panic(unavailable) }
func (native) Store(uint64, uint64, []byte) { panic(unavailable) }
func (native) Load(uint64, uint64, []byte) { panic(unavailable) }
func (native) HTTPRequest(uint64) (int32, uint64) { panic(unavailable) }
func (native) HTTPStatusCode(uint64) int32 { panic(unavailable) }
func (native) ConfigGet([]byte) uint64 { panic(unavailable) }
func (native) VarGet([]byte) uint64 { panic(unavailable) }
func (native) VarSet([]byte, []byte) { panic(unavailable) }
func (native) LogInfo([]byte) { panic(unavailable) }
func (native) LogDebug([]byte) { panic(unavailable) }
func (native) LogWarn([]byte) { panic(unavailable) }
func (native) LogError([]byte) { panic(unavailable) }
