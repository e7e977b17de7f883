// Package sim runs the smoke simulation and shares its density field with
// the renderer through a lock-guarded buffer.
package sim

import (
	"errors"
	"fmt"
	"sync"
)

// ErrSizeMismatch is returned when a destination does not match the lattice.
var ErrSizeMismatch = errors.New("size mismatch")

// Buffer is a fixed nx*ny*nz lattice of densities in x-fastest order. All
// access goes through callbacks that run under one mutex, so a reader
// never sees a partially written field. The slice passed to a callback
// must not be retained after it returns.
type Buffer struct {
	nx, ny, nz int

	mu   sync.Mutex
	data []float32
}

// NewBuffer allocates a zeroed lattice.
func NewBuffer(nx, ny, nz int) (*Buffer, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid lattice %dx%dx%d", nx, ny, nz)
	}
	return &Buffer{nx: nx, ny: ny, nz: nz, data: make([]float32, nx*ny*nz)}, nil
}

// Dims returns the lattice dimensions.
func (b *Buffer) Dims() (nx, ny, nz int) {
	return b.nx, b.ny, b.nz
}

// Len returns nx*ny*nz.
func (b *Buffer) Len() int {
	return b.nx * b.ny * b.nz
}

// Index returns the offset of cell (x, y, z).
func (b *Buffer) Index(x, y, z int) int {
	return x + b.nx*(y+b.ny*z)
}

// Read calls fn with the field while holding the lock.
func (b *Buffer) Read(fn func(data []float32)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.data)
}

// Write calls fn with the field while holding the lock.
func (b *Buffer) Write(fn func(data []float32)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.data)
}

// CopyTo copies a consistent snapshot into dst, which must be Len() long.
func (b *Buffer) CopyTo(dst []float32) error {
	if len(dst) != b.Len() {
		return fmt.Errorf("copy into %d floats, lattice has %d: %w", len(dst), b.Len(), ErrSizeMismatch)
	}
	b.Read(func(data []float32) {
		copy(dst, data)
	})
	return nil
}
