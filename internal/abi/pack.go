// Package abi provides memory management for the WASM linear memory and the
// pointer/length packing shared by guest and host.
package abi

import (
	"fmt"
	"sync"

	"github.com/warden-dev/policy-sdk-go/domain/errors"
)

// MaxTotalAllocations is the maximum total memory that can be allocated by the SDK.
// This prevents unbounded memory growth in WASM linear memory.
const MaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// PtrHighBits is the shift applied to the pointer half of a packed value.
const PtrHighBits = 32

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its original pointer and length.
// Panics if ptr is 0 and length > 0, indicating an invalid packed value.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> PtrHighBits)
	length = uint32(packed)
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid unpack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return ptr, length
}

// tracker keeps a reference to every buffer handed out through allocate so
// the Go GC cannot collect memory the host is still reading or writing.
type tracker struct {
	sync.Mutex
	bufs  map[uint32][]byte // ptr -> slice reference
	total int               // Total bytes currently allocated
	limit int
}

func newTracker(limit int) *tracker {
	return &tracker{bufs: make(map[uint32][]byte), limit: limit}
}

// reserve checks the limit before a buffer of size bytes is created.
func (t *tracker) reserve(size int) error {
	t.Lock()
	defer t.Unlock()
	if t.total+size > t.limit {
		return &errors.MemoryError{Requested: size, Current: t.total, Limit: t.limit}
	}
	return nil
}

// pin records buf under ptr.
func (t *tracker) pin(ptr uint32, buf []byte) {
	t.Lock()
	defer t.Unlock()
	t.bufs[ptr] = buf
	t.total += len(buf)
}

// release forgets ptr. Accounting uses the stored length, not a caller
// supplied size, and untracked pointers are ignored.
func (t *tracker) release(ptr uint32) {
	t.Lock()
	defer t.Unlock()
	buf, ok := t.bufs[ptr]
	if !ok {
		return
	}
	delete(t.bufs, ptr)
	t.total -= len(buf)
	if t.total < 0 {
		t.total = 0
	}
}

func (t *tracker) reset() {
	t.Lock()
	defer t.Unlock()
	clear(t.bufs)
	t.total = 0
}

func (t *tracker) stats() (count, total int) {
	t.Lock()
	defer t.Unlock()
	return len(t.bufs), t.total
}

var memoryManager = newTracker(MaxTotalAllocations)

// Stats reports the number of live allocations and their total size.
func Stats() (count, totalBytes int) {
	return memoryManager.stats()
}

// FreeAllTracked frees all memory currently tracked by the SDK.
// Entry points call it once a reply has been handed to the host.
func FreeAllTracked() {
	memoryManager.reset()
}
