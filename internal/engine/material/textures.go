// Package material owns the texture and material arenas of a scene.
// Entries are created once at scene build, addressed by typed IDs, and
// released together when the scene is torn down.
package material

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/texture"
	"github.com/Faultbox/mantaview/internal/logger"
)

// ErrDuplicateName is returned when a name is registered twice.
var ErrDuplicateName = errors.New("duplicate name")

// TextureID addresses a Texture in a Textures arena. Zero means none.
type TextureID int32

// Valid reports whether id could address an entry.
func (id TextureID) Valid() bool { return id > 0 }

// Texture is a GPU texture plus where it came from.
type Texture struct {
	Name   string
	Kind   gpu.TextureKind
	Paths  []string // empty for procedural textures
	Handle gpu.Texture
	// Placeholder is set when loading failed and Handle points at the
	// registry's fallback texture.
	Placeholder bool

	// Volume dimensions, set for 3D textures only.
	NX, NY, NZ int
}

// Procedural reports whether the texture was generated rather than loaded.
func (t *Texture) Procedural() bool {
	return len(t.Paths) == 0
}

// Textures is the texture arena.
type Textures struct {
	dev      gpu.Device
	log      *zap.Logger
	entries  []*Texture
	byName   map[string]TextureID
	fallback gpu.Texture
}

// NewTextures creates the arena and its 1x1 white fallback texture.
func NewTextures(dev gpu.Device) (*Textures, error) {
	fallback, err := dev.CreateTexture2D(texture.Solid(255, 255, 255, 255), gpu.TextureOptions{})
	if err != nil {
		return nil, fmt.Errorf("creating fallback texture: %w", err)
	}
	return &Textures{
		dev:      dev,
		log:      logger.Named("textures"),
		byName:   make(map[string]TextureID),
		fallback: fallback,
	}, nil
}

func (r *Textures) add(t *Texture) (TextureID, error) {
	if _, ok := r.byName[t.Name]; ok {
		return 0, fmt.Errorf("texture %q: %w", t.Name, ErrDuplicateName)
	}
	r.entries = append(r.entries, t)
	id := TextureID(len(r.entries))
	r.byName[t.Name] = id
	return id, nil
}

// Load2D loads an image file as a repeating, mipmapped 2D texture. A file
// that cannot be read or decoded is logged and replaced by the fallback.
func (r *Textures) Load2D(name, path string) (TextureID, error) {
	t := &Texture{Name: name, Kind: gpu.Texture2D, Paths: []string{path}}

	img, err := texture.Decode(path)
	if err == nil {
		t.Handle, err = r.dev.CreateTexture2D(texture.FlipVertical(img), gpu.TextureOptions{Repeat: true, Mipmaps: true})
	}
	if err != nil {
		r.log.Warn("texture load failed, using placeholder",
			zap.String("texture", name), zap.String("path", path), zap.Error(err))
		t.Handle = r.fallback
		t.Placeholder = true
	}
	return r.add(t)
}

// LoadCube loads six faces as a cube map. On failure the entry keeps a zero
// handle, so the sky pass draws nothing instead of a white box.
func (r *Textures) LoadCube(name string, paths [6]string) (TextureID, error) {
	t := &Texture{Name: name, Kind: gpu.TextureCube, Paths: paths[:]}

	faces, err := texture.DecodeCube(paths)
	if err == nil {
		t.Handle, err = r.dev.CreateTextureCube(faces)
	}
	if err != nil {
		r.log.Warn("cube map load failed", zap.String("texture", name), zap.Error(err))
		t.Placeholder = true
	}
	return r.add(t)
}

// AddVolume creates an empty nx*ny*nz single-channel 3D texture.
func (r *Textures) AddVolume(name string, nx, ny, nz int) (TextureID, error) {
	handle, err := r.dev.CreateTexture3D(nx, ny, nz)
	if err != nil {
		return 0, fmt.Errorf("creating volume %s: %w", name, err)
	}
	return r.add(&Texture{Name: name, Kind: gpu.Texture3D, Handle: handle, NX: nx, NY: ny, NZ: nz})
}

// Get returns the entry for id or nil.
func (r *Textures) Get(id TextureID) *Texture {
	if !id.Valid() || int(id) > len(r.entries) {
		return nil
	}
	return r.entries[id-1]
}

// Handle returns the GPU handle for id, zero when id is not set.
func (r *Textures) Handle(id TextureID) gpu.Texture {
	if t := r.Get(id); t != nil {
		return t.Handle
	}
	return 0
}

// Lookup resolves a name.
func (r *Textures) Lookup(name string) (TextureID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Len returns the number of entries.
func (r *Textures) Len() int {
	return len(r.entries)
}

// Release deletes every texture including the fallback.
func (r *Textures) Release() {
	for _, t := range r.entries {
		if t.Handle.Valid() && t.Handle != r.fallback {
			r.dev.DeleteTexture(t.Handle)
		}
		t.Handle = 0
	}
	if r.fallback.Valid() {
		r.dev.DeleteTexture(r.fallback)
		r.fallback = 0
	}
}
