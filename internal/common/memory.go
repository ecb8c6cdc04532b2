package common

import (
	"fmt"
	"runtime"
)

// MemoryStats is the subset of runtime.MemStats the benchmarks report.
type MemoryStats struct {
	Alloc      uint64
	TotalAlloc uint64
	Mallocs    uint64
	HeapInuse  uint64
	NumGC      uint32
}

// GetMemoryStats samples the runtime allocator.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Mallocs:    m.Mallocs,
		HeapInuse:  m.HeapInuse,
		NumGC:      m.NumGC,
	}
}

// AllocatedSince returns the bytes allocated between before and m.
func (m MemoryStats) AllocatedSince(before MemoryStats) uint64 {
	if m.TotalAlloc < before.TotalAlloc {
		return 0
	}
	return m.TotalAlloc - before.TotalAlloc
}

func (m MemoryStats) String() string {
	return fmt.Sprintf("Alloc: %d KB, Total: %d KB, HeapInuse: %d KB, GC: %d",
		m.Alloc/1024, m.TotalAlloc/1024, m.HeapInuse/1024, m.NumGC)
}
