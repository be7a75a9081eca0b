package pdk

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/extism/go-pdk/internal/kernel"
)

// noCopy may be embedded into structs which must not be copied after first use.
// See https://golang.org/issues/8005#issuecomment-190753527 for details.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Memory owns exactly one block of host memory. The block is released by
// Free, which is normally deferred right after the block is obtained:
//
//	mem := pdk.AllocateString("hello")
//	defer mem.Free()
//
// A Memory must not be copied; pass *Memory around instead.
type Memory struct {
	_ noCopy

	offset uint64
	freed  bool
}

// Allocate requests n bytes from the host. n may be zero.
func Allocate(n uint64) *Memory {
	return &Memory{offset: kernel.Get().Alloc(n)}
}

// NewMemory takes ownership of a block the host handed to the guest.
func NewMemory(offset uint64) *Memory {
	return &Memory{offset: offset}
}

// AllocateBytes allocates exactly len(data) bytes and stores data at offset 0.
func AllocateBytes(data []byte) *Memory {
	mem := Allocate(uint64(len(data)))
	mem.StoreFromStart(data)
	return mem
}

// AllocateString allocates exactly len(s) bytes and stores s at offset 0.
func AllocateString(s string) *Memory {
	return AllocateBytes([]byte(s))
}

// AllocateJSON encodes v as JSON and stores the result in a new block.
func AllocateJSON(v any) (*Memory, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, newEncodeError(err)
	}
	return AllocateBytes(data), nil
}

// Offset returns the host address of the block.
func (m *Memory) Offset() uint64 {
	return m.offset
}

// Len asks the host for the current length of the block.
func (m *Memory) Len() uint64 {
	return kernel.Get().Length(m.offset)
}

// IsEmpty reports whether the block has zero length.
func (m *Memory) IsEmpty() bool {
	return m.Len() == 0
}

// Store writes data into the block starting at offset. The host decides what
// happens when offset+len(data) exceeds Len.
func (m *Memory) Store(data []byte, offset uint64) {
	if len(data) == 0 {
		return
	}
	kernel.Get().Store(m.offset, offset, data)
}

// StoreFromStart writes data at offset 0.
func (m *Memory) StoreFromStart(data []byte) {
	m.Store(data, 0)
}

// Load copies length bytes starting at offset into a new slice.
func (m *Memory) Load(offset, length uint64) []byte {
	buf := make([]byte, length)
	if length > 0 {
		kernel.Get().Load(m.offset, offset, buf)
	}
	return buf
}

// ReadBytes copies the whole block into a new slice.
func (m *Memory) ReadBytes() []byte {
	return m.Load(0, m.Len())
}

// ReadString returns the block as a string, failing with a *DecodeError if it
// is not valid UTF-8.
func (m *Memory) ReadString() (string, error) {
	data := m.ReadBytes()
	if !utf8.Valid(data) {
		return "", newDecodeError(errInvalidUTF8)
	}
	return string(data), nil
}

// ReadJSON decodes the block into v.
func (m *Memory) ReadJSON(v any) error {
	data := m.ReadBytes()
	if !utf8.Valid(data) {
		return newDecodeError(errInvalidUTF8)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return newDecodeError(err)
	}
	return nil
}

// Free releases the block. Only the first call reaches the host.
func (m *Memory) Free() {
	if m == nil || m.freed {
		return
	}
	m.freed = true
	kernel.Get().Free(m.offset)
}
