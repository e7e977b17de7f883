package material

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ID addresses a Material in a Materials arena. Zero means none.
type ID int32

// Valid reports whether id could address an entry.
func (id ID) Valid() bool { return id > 0 }

// Material is a named bundle of shading parameters. Render items share
// materials by pointer; editing one affects every item that uses it.
type Material struct {
	Name      string
	Albedo    mgl32.Vec3
	Emissive  mgl32.Vec3
	Metallic  float32
	Roughness float32
	AO        float32

	Diffuse TextureID
	Normal  TextureID
	// Density is a 3D texture for volumetric items, or a cube map for the sky.
	Density TextureID
}

// UseDiffuse reports whether the diffuse map should be sampled.
func (m *Material) UseDiffuse() bool { return m.Diffuse.Valid() }

// UseNormal reports whether the normal map should be sampled.
func (m *Material) UseNormal() bool { return m.Normal.Valid() }

// Materials is the material arena. Pointers returned by Get stay valid for
// the arena's lifetime.
type Materials struct {
	entries []*Material
	byName  map[string]ID
}

// NewMaterials returns an empty arena.
func NewMaterials() *Materials {
	return &Materials{byName: make(map[string]ID)}
}

// Add stores a copy of m.
func (r *Materials) Add(m Material) (ID, error) {
	if m.Name == "" {
		return 0, errors.New("material needs a name")
	}
	if _, ok := r.byName[m.Name]; ok {
		return 0, fmt.Errorf("material %q: %w", m.Name, ErrDuplicateName)
	}
	r.entries = append(r.entries, &m)
	id := ID(len(r.entries))
	r.byName[m.Name] = id
	return id, nil
}

// Get returns the entry for id or nil.
func (r *Materials) Get(id ID) *Material {
	if !id.Valid() || int(id) > len(r.entries) {
		return nil
	}
	return r.entries[id-1]
}

// Lookup resolves a name.
func (r *Materials) Lookup(name string) (ID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Names returns material names in registration order.
func (r *Materials) Names() []string {
	names := make([]string, len(r.entries))
	for i, m := range r.entries {
		names[i] = m.Name
	}
	return names
}

// Len returns the number of entries.
func (r *Materials) Len() int {
	return len(r.entries)
}
