package geometry

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/logger"
)

// ErrDuplicateName is returned when a name is registered twice.
var ErrDuplicateName = errors.New("duplicate name")

// Handle addresses a Geometry inside a Store. The zero handle is invalid.
type Handle int32

// Valid reports whether h could address an entry.
func (h Handle) Valid() bool { return h > 0 }

// Store owns every Geometry of a scene. Names are resolved to handles once
// at scene build; entries are never removed until Release, so pointers
// returned by Get stay valid for the store's lifetime.
type Store struct {
	items  []*Geometry
	byName map[string]Handle
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byName: make(map[string]Handle)}
}

// Add takes ownership of g.
func (s *Store) Add(g *Geometry) (Handle, error) {
	if g == nil {
		return 0, errors.New("nil geometry")
	}
	if _, ok := s.byName[g.Name]; ok {
		return 0, fmt.Errorf("geometry %q: %w", g.Name, ErrDuplicateName)
	}
	s.items = append(s.items, g)
	h := Handle(len(s.items))
	s.byName[g.Name] = h
	return h, nil
}

// Get returns the entry for h or nil.
func (s *Store) Get(h Handle) *Geometry {
	if !h.Valid() || int(h) > len(s.items) {
		return nil
	}
	return s.items[h-1]
}

// Lookup resolves a name.
func (s *Store) Lookup(name string) (Handle, bool) {
	h, ok := s.byName[name]
	return h, ok
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.items)
}

// UploadAll creates GPU buffers for every entry. A failed entry is logged
// and left with a zero mesh so passes skip it; the combined error is returned.
func (s *Store) UploadAll(dev gpu.Device) error {
	var errs error
	for _, g := range s.items {
		if err := g.Upload(dev); err != nil {
			logger.Warn("geometry upload failed", zap.String("geometry", g.Name), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Release frees the GPU buffers of every entry.
func (s *Store) Release(dev gpu.Device) {
	for _, g := range s.items {
		g.Release(dev)
	}
}
