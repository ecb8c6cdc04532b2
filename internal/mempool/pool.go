// Package mempool pools the scratch buffers of the image kernels. Gradient
// planes and Hough accumulators are allocated per candidate, so a scan that
// walks every tier would otherwise churn several image-sized slices per attempt.
package mempool

import "sync"

const step = 4096

var (
	intPools  sync.Map // size class -> *sync.Pool of []int
	bytePools sync.Map // size class -> *sync.Pool of []uint8
)

// sizeClass rounds n up to the next multiple of step.
func sizeClass(n int) int {
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

func poolFor[T any](pools *sync.Map, cls int) *sync.Pool {
	if p, ok := pools.Load(cls); ok {
		return p.(*sync.Pool) //nolint:forcetypeassert // only *sync.Pool is stored
	}
	p, _ := pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]T, cls) }})
	return p.(*sync.Pool) //nolint:forcetypeassert // only *sync.Pool is stored
}

func get[T any](pools *sync.Map, n int) []T {
	if n <= 0 {
		return nil
	}
	cls := sizeClass(n)
	buf, ok := poolFor[T](pools, cls).Get().([]T)
	if !ok || cap(buf) < cls {
		buf = make([]T, cls)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

func put[T any](pools *sync.Map, buf []T) {
	// Buffers that did not come from a pool (odd capacity) are dropped.
	if cap(buf) < step || cap(buf)%step != 0 {
		return
	}
	buf = buf[:cap(buf)]
	poolFor[T](pools, cap(buf)).Put(buf) //nolint:staticcheck // slices are small headers
}

// GetInts returns a zeroed []int of length n. Return it with PutInts.
func GetInts(n int) []int { return get[int](&intPools, n) }

// PutInts returns a buffer obtained from GetInts. Nil is ignored.
func PutInts(buf []int) { put(&intPools, buf) }

// GetBytes returns a zeroed []uint8 of length n. Return it with PutBytes.
func GetBytes(n int) []uint8 { return get[uint8](&bytePools, n) }

// PutBytes returns a buffer obtained from GetBytes. Nil is ignored.
func PutBytes(buf []uint8) { put(&bytePools, buf) }
