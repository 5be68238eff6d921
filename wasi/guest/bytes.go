//go:build wasip1

package guest

import (
	"unsafe"
)

// Buffers handed out to the host through alloc_bytes, keyed by address so
// they can be released once their contents have been copied.
var byteHandles = map[uint32][]byte{}

//go:wasmexport alloc_bytes
func AllocBytes(size uint32) uint64 {
	if size == 0 {
		return 0
	}
	bytes := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&bytes[0])))
	byteHandles[ptr] = bytes
	return uint64(ptr)<<32 | uint64(ptr)
}

//go:wasmexport free_bytes
func FreeBytes(handle uint32) {
	delete(byteHandles, handle)
}

// takeBytes copies a host-written buffer and releases it.
func takeBytes(ptr uint32, size int32) []byte {
	if size <= 0 || ptr == 0 {
		return nil
	}
	src, ok := byteHandles[ptr]
	if !ok {
		return nil
	}
	result := make([]byte, size)
	copy(result, src)
	FreeBytes(ptr)
	return result
}
