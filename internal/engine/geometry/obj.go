package geometry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// LoadOBJ reads a Wavefront OBJ file and returns one Geometry per object or
// group. Polygons are fan-triangulated; missing normals are generated from
// face normals.
func LoadOBJ(path string) ([]*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mesh: %w", err)
	}
	defer f.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	meshes, err := ParseOBJ(f, base)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return meshes, nil
}

type objKey struct {
	v, vt, vn int
}

type objGroup struct {
	name     string
	vertices []Vertex
	indices  []uint32
	lookup   map[objKey]uint32
	normals  bool
}

func newObjGroup(name string) *objGroup {
	return &objGroup{name: name, lookup: make(map[objKey]uint32)}
}

// ParseOBJ parses OBJ text. Geometry names are prefix, or prefix/group for
// named objects and groups.
func ParseOBJ(r io.Reader, prefix string) ([]*Geometry, error) {
	var (
		positions []mgl32.Vec3
		texcoords []mgl32.Vec2
		normals   []mgl32.Vec3
		groups    []*objGroup
	)
	current := newObjGroup(prefix)

	flush := func() {
		if len(current.indices) > 0 {
			groups = append(groups, current)
		}
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, mgl32.Vec3{p[0], p[1], p[2]})
		case "vt":
			p, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			texcoords = append(texcoords, mgl32.Vec2{p[0], p[1]})
		case "vn":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			normals = append(normals, mgl32.Vec3{p[0], p[1], p[2]}.Normalize())
		case "o", "g":
			flush()
			name := prefix
			if len(fields) > 1 {
				name = prefix + "/" + strings.Join(fields[1:], " ")
			}
			current = newObjGroup(name)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", line)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				key, err := parseFaceRef(ref, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				idx, ok := current.lookup[key]
				if !ok {
					v := Vertex{Position: positions[key.v]}
					if key.vt >= 0 {
						v.TexCoord = texcoords[key.vt]
					}
					if key.vn >= 0 {
						v.Normal = normals[key.vn]
						current.normals = true
					}
					idx = uint32(len(current.vertices))
					current.vertices = append(current.vertices, v)
					current.lookup[key] = idx
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				current.indices = append(current.indices, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	if len(groups) == 0 {
		return nil, errors.New("no faces")
	}

	out := make([]*Geometry, 0, len(groups))
	for _, grp := range groups {
		if !grp.normals {
			generateNormals(grp.vertices, grp.indices)
		}
		ComputeTangents(grp.vertices, grp.indices)
		g, err := New(grp.name, grp.vertices, grp.indices)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFaceRef decodes v, v/vt, v//vn or v/vt/vn into zero-based indices,
// -1 for absent parts. Negative OBJ indices count back from the end.
func parseFaceRef(ref string, nv, nvt, nvn int) (objKey, error) {
	parts := strings.Split(ref, "/")
	key := objKey{v: -1, vt: -1, vn: -1}

	resolve := func(s string, count int) (int, error) {
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("face reference %q: %w", ref, err)
		}
		if i < 0 {
			i = count + i
		} else {
			i--
		}
		if i < 0 || i >= count {
			return 0, fmt.Errorf("face reference %q out of range", ref)
		}
		return i, nil
	}

	var err error
	if key.v, err = resolve(parts[0], nv); err != nil {
		return key, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.vt, err = resolve(parts[1], nvt); err != nil {
			return key, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.vn, err = resolve(parts[2], nvn); err != nil {
			return key, err
		}
	}
	return key, nil
}

// generateNormals accumulates area-weighted face normals per vertex.
func generateNormals(vertices []Vertex, indices []uint32) {
	for i := range vertices {
		vertices[i].Normal = mgl32.Vec3{}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		e1 := vertices[b].Position.Sub(vertices[a].Position)
		e2 := vertices[c].Position.Sub(vertices[a].Position)
		n := e1.Cross(e2)
		vertices[a].Normal = vertices[a].Normal.Add(n)
		vertices[b].Normal = vertices[b].Normal.Add(n)
		vertices[c].Normal = vertices[c].Normal.Add(n)
	}
	for i := range vertices {
		if vertices[i].Normal.Len() > 0 {
			vertices[i].Normal = vertices[i].Normal.Normalize()
		} else {
			vertices[i].Normal = mgl32.Vec3{0, 1, 0}
		}
	}
}
