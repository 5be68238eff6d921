package host

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// readBytes copies byteCount bytes at offset out of the guest's memory.
func readBytes(m api.Module, offset, byteCount uint32) []byte {
	buf, ok := m.Memory().Read(offset, byteCount)
	if !ok {
		panic(fmt.Sprintf("Memory.Read(%d, %d) out of range", offset, byteCount))
	}
	return append([]byte(nil), buf...)
}

// writeResult hands data to the guest. The buffer is allocated by the guest's
// alloc_bytes export, its address is stored at destPtr and its size is
// returned. The guest owns the buffer afterwards and frees it with
// free_bytes. Empty data allocates nothing and stores a zero address.
func writeResult(ctx context.Context, m api.Module, data []byte, destPtr uint32) int32 {
	if len(data) == 0 {
		if !m.Memory().WriteUint32Le(destPtr, 0) {
			panic(fmt.Sprintf("Memory.WriteUint32Le(%d) out of range", destPtr))
		}
		return 0
	}

	alloc := m.ExportedFunction("alloc_bytes")
	if alloc == nil {
		panic("guest does not export alloc_bytes")
	}
	result, err := alloc.Call(ctx, uint64(len(data)))
	if err != nil {
		panic(fmt.Sprintf("alloc_bytes(%d) failed: %v", len(data), err))
	}
	ptr := uint32(result[0])

	if !m.Memory().Write(ptr, data) {
		panic(fmt.Sprintf("Memory.Write(%d, %d) out of range", ptr, len(data)))
	}
	if !m.Memory().WriteUint32Le(destPtr, ptr) {
		panic(fmt.Sprintf("Memory.WriteUint32Le(%d) out of range", destPtr))
	}
	return int32(len(data))
}
