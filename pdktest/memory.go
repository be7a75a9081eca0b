package pdktest

import "fmt"

const pageSize = 65536

func align(n uint64) uint64 {
	return (n + 7) &^ 7
}

func (h *Host) Alloc(n uint64) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alloc(n)
}

// alloc bumps the allocation pointer, growing the linear memory as needed.
// Zero-length blocks still get a unique address. Callers hold h.mu.
func (h *Host) alloc(n uint64) uint64 {
	reserve := n
	if reserve == 0 {
		reserve = 1
	}

	offset := h.next
	end := offset + reserve
	if size := uint64(h.memory.Size()); end > size {
		pages := (end - size + pageSize - 1) / pageSize
		if _, ok := h.memory.Grow(uint32(pages)); !ok {
			panic(fmt.Sprintf("out of host memory allocating %d bytes", n))
		}
	}

	h.next = align(end)
	h.blocks[offset] = n
	return offset
}

func (h *Host) Free(addr uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if addr == 0 {
		return
	}

	if _, ok := h.blocks[addr]; !ok {
		h.fault("free of unknown or already freed address %d", addr)
		return
	}

	delete(h.blocks, addr)
	delete(h.responses, addr)
}

func (h *Host) Length(addr uint64) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.blocks[addr]
}

func (h *Host) Store(addr, offset uint64, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.checkBounds("store", addr, offset, uint64(len(data)))
	if ok := h.memory.Write(uint32(addr+offset), data); !ok {
		panic(fmt.Sprintf("could not write %d bytes at address %d", len(data), addr+offset))
	}
}

func (h *Host) Load(addr, offset uint64, buf []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.checkBounds("load", addr, offset, uint64(len(buf)))
	view, ok := h.memory.Read(uint32(addr+offset), uint32(len(buf)))
	if !ok {
		panic(fmt.Sprintf("could not read %d bytes at address %d", len(buf), addr+offset))
	}
	copy(buf, view)
}

// checkBounds aborts the plugin on accesses outside a live block, the way a
// real host traps. Callers hold h.mu.
func (h *Host) checkBounds(op string, addr, offset, length uint64) {
	size, ok := h.blocks[addr]
	if !ok {
		panic(fmt.Sprintf("%s on unknown address %d", op, addr))
	}
	if offset+length > size {
		panic(fmt.Sprintf("%s out of bounds: address %d, offset %d, length %d, block %d", op, addr, offset, length, size))
	}
}

// writeBytes copies data into a fresh block and returns its address.
// Callers hold h.mu.
func (h *Host) writeBytes(data []byte) uint64 {
	offset := h.alloc(uint64(len(data)))
	if len(data) > 0 {
		if ok := h.memory.Write(uint32(offset), data); !ok {
			panic("Failed to write to memory.")
		}
	}
	return offset
}

// ReadBytes returns a copy of a live block, for assertions in tests.
func (h *Host) ReadBytes(addr uint64) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	size, ok := h.blocks[addr]
	if !ok {
		return nil, fmt.Errorf("invalid memory block %d", addr)
	}

	view, ok := h.memory.Read(uint32(addr), uint32(size))
	if !ok {
		return nil, fmt.Errorf("invalid memory block %d", addr)
	}
	return append([]byte(nil), view...), nil
}
