package sim

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// buoyancy is the upward acceleration per unit density per step.
	buoyancy = 0.02
	// damping bleeds velocity each step so the plume settles.
	damping = 0.995
	// inflow is the density the source cylinder is filled to.
	inflow = 1.0
	// viscosity spreads velocity into neighbouring cells; must stay below 1/6.
	viscosity = 0.1
)

// Smoke is a small Eulerian smoke solver: a cylindrical source near the
// floor, buoyancy plus a user force, semi-Lagrangian advection with
// trilinear sampling, explicit velocity diffusion and exponential decay. Velocities are in cells per
// step. It computes into private grids and publishes the density under
// the buffer lock once per step.
type Smoke struct {
	out      *Buffer
	controls *Controls

	nx, ny, nz int
	density    []float32
	vx, vy, vz []float32
	scratch    []float32
	scratchV   [3][]float32

	// Source cylinder along Y, in cell coordinates.
	srcCenter    mgl32.Vec2
	srcRadius    float32
	srcY0, srcY1 int
	frame        uint64
}

// NewSmoke creates a solver writing into out. The source sits at the
// bottom center with a radius of 0.14 of the lattice width.
func NewSmoke(out *Buffer, controls *Controls) *Smoke {
	nx, ny, nz := out.Dims()
	n := out.Len()
	s := &Smoke{
		out:       out,
		controls:  controls,
		nx:        nx,
		ny:        ny,
		nz:        nz,
		density:   make([]float32, n),
		vx:        make([]float32, n),
		vy:        make([]float32, n),
		vz:        make([]float32, n),
		scratch:   make([]float32, n),
		srcCenter: mgl32.Vec2{float32(nx) * 0.5, float32(nz) * 0.5},
		srcRadius: math32.Max(float32(nx)*0.14, 1),
		srcY0:     int(float32(ny) * 0.05),
		srcY1:     int(float32(ny)*0.12) + 1,
	}
	for i := range s.scratchV {
		s.scratchV[i] = make([]float32, n)
	}
	return s
}

// Frame returns the number of completed steps.
func (s *Smoke) Frame() uint64 { return s.frame }

// Density returns the solver's private density grid. Only the goroutine
// calling Step may use it.
func (s *Smoke) Density() []float32 { return s.density }

func (s *Smoke) idx(x, y, z int) int {
	return x + s.nx*(y+s.ny*z)
}

// Step advances the simulation by one step and publishes the density.
func (s *Smoke) Step() {
	p := s.controls.Params()

	s.inject()
	s.addForces(p.Force)
	s.diffuseVelocity()
	s.advectVelocity()
	s.advect(s.density, s.scratch)
	s.density, s.scratch = s.scratch, s.density
	s.decay(p.Decay)
	s.enforceWalls()
	s.frame++

	s.out.Write(func(data []float32) {
		copy(data, s.density)
	})
}

func (s *Smoke) inject() {
	r2 := s.srcRadius * s.srcRadius
	for z := 0; z < s.nz; z++ {
		for y := s.srcY0; y < s.srcY1 && y < s.ny; y++ {
			for x := 0; x < s.nx; x++ {
				dx := float32(x) + 0.5 - s.srcCenter[0]
				dz := float32(z) + 0.5 - s.srcCenter[1]
				if dx*dx+dz*dz <= r2 {
					i := s.idx(x, y, z)
					s.density[i] = math32.Max(s.density[i], inflow)
				}
			}
		}
	}
}

func (s *Smoke) addForces(force mgl32.Vec3) {
	for i, d := range s.density {
		if d <= 0 {
			continue
		}
		s.vx[i] += force[0] * d
		s.vy[i] += (force[1] + buoyancy) * d
		s.vz[i] += force[2] * d
	}
}

func (s *Smoke) diffuseVelocity() {
	s.diffuse(s.vx, s.scratchV[0])
	s.diffuse(s.vy, s.scratchV[1])
	s.diffuse(s.vz, s.scratchV[2])
	s.vx, s.scratchV[0] = s.scratchV[0], s.vx
	s.vy, s.scratchV[1] = s.scratchV[1], s.vy
	s.vz, s.scratchV[2] = s.scratchV[2], s.vz
}

// diffuse runs one explicit Laplacian step with clamped (zero-flux) edges.
func (s *Smoke) diffuse(src, dst []float32) {
	for z := 0; z < s.nz; z++ {
		for y := 0; y < s.ny; y++ {
			for x := 0; x < s.nx; x++ {
				i := s.idx(x, y, z)
				c := src[i]
				lap := src[s.idx(max(x-1, 0), y, z)] + src[s.idx(min(x+1, s.nx-1), y, z)] +
					src[s.idx(x, max(y-1, 0), z)] + src[s.idx(x, min(y+1, s.ny-1), z)] +
					src[s.idx(x, y, max(z-1, 0))] + src[s.idx(x, y, min(z+1, s.nz-1))] -
					6*c
				dst[i] = c + viscosity*lap
			}
		}
	}
}

func (s *Smoke) advectVelocity() {
	s.advect(s.vx, s.scratchV[0])
	s.advect(s.vy, s.scratchV[1])
	s.advect(s.vz, s.scratchV[2])
	s.vx, s.scratchV[0] = s.scratchV[0], s.vx
	s.vy, s.scratchV[1] = s.scratchV[1], s.vy
	s.vz, s.scratchV[2] = s.scratchV[2], s.vz
	for i := range s.vx {
		s.vx[i] *= damping
		s.vy[i] *= damping
		s.vz[i] *= damping
	}
}

// advect traces each cell back along the current velocity and samples src.
func (s *Smoke) advect(src, dst []float32) {
	for z := 0; z < s.nz; z++ {
		for y := 0; y < s.ny; y++ {
			for x := 0; x < s.nx; x++ {
				i := s.idx(x, y, z)
				px := float32(x) - s.vx[i]
				py := float32(y) - s.vy[i]
				pz := float32(z) - s.vz[i]
				dst[i] = s.sample(src, px, py, pz)
			}
		}
	}
}

// sample interpolates field trilinearly at a cell-space position, clamped
// to the lattice.
func (s *Smoke) sample(field []float32, x, y, z float32) float32 {
	x = mgl32.Clamp(x, 0, float32(s.nx-1))
	y = mgl32.Clamp(y, 0, float32(s.ny-1))
	z = mgl32.Clamp(z, 0, float32(s.nz-1))

	x0, y0, z0 := int(x), int(y), int(z)
	x1, y1, z1 := min(x0+1, s.nx-1), min(y0+1, s.ny-1), min(z0+1, s.nz-1)
	fx, fy, fz := x-float32(x0), y-float32(y0), z-float32(z0)

	lerp := func(a, b, t float32) float32 { return a + (b-a)*t }
	c00 := lerp(field[s.idx(x0, y0, z0)], field[s.idx(x1, y0, z0)], fx)
	c10 := lerp(field[s.idx(x0, y1, z0)], field[s.idx(x1, y1, z0)], fx)
	c01 := lerp(field[s.idx(x0, y0, z1)], field[s.idx(x1, y0, z1)], fx)
	c11 := lerp(field[s.idx(x0, y1, z1)], field[s.idx(x1, y1, z1)], fx)
	return lerp(lerp(c00, c10, fy), lerp(c01, c11, fy), fz)
}

func (s *Smoke) decay(rate float32) {
	keep := 1 - rate
	for i := range s.density {
		s.density[i] *= keep
		if s.density[i] < 1e-4 {
			s.density[i] = 0
		}
	}
}

// enforceWalls zeroes the normal velocity on the lattice faces.
func (s *Smoke) enforceWalls() {
	for z := 0; z < s.nz; z++ {
		for y := 0; y < s.ny; y++ {
			s.vx[s.idx(0, y, z)] = 0
			s.vx[s.idx(s.nx-1, y, z)] = 0
		}
	}
	for z := 0; z < s.nz; z++ {
		for x := 0; x < s.nx; x++ {
			s.vy[s.idx(x, 0, z)] = 0
			s.vy[s.idx(x, s.ny-1, z)] = 0
		}
	}
	for y := 0; y < s.ny; y++ {
		for x := 0; x < s.nx; x++ {
			s.vz[s.idx(x, y, 0)] = 0
			s.vz[s.idx(x, y, s.nz-1)] = 0
		}
	}
}
