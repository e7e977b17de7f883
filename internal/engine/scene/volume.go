package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/engine/material"
	"github.com/Faultbox/mantaview/internal/sim"
)

// volume pairs a simulation buffer with the 3D texture that shows it.
type volume struct {
	tex        material.TextureID
	buf        *sim.Buffer
	nx, ny, nz int
	scratch    []float32
	failing    bool
}

// BindVolume streams buf into the 3D texture tex every frame while
// volumetric rendering is on. The buffer and texture sizes must match.
func (s *Scene) BindVolume(tex material.TextureID, buf *sim.Buffer) error {
	t := s.res.Textures.Get(tex)
	if t == nil {
		return fmt.Errorf("volume texture %d: %w", tex, ErrMissingReference)
	}
	nx, ny, nz := buf.Dims()
	if t.NX != nx || t.NY != ny || t.NZ != nz {
		return fmt.Errorf("volume %s is %dx%dx%d, buffer is %dx%dx%d: %w",
			t.Name, t.NX, t.NY, t.NZ, nx, ny, nz, sim.ErrSizeMismatch)
	}
	s.volumes = append(s.volumes, &volume{
		tex:     tex,
		buf:     buf,
		nx:      nx,
		ny:      ny,
		nz:      nz,
		scratch: make([]float32, buf.Len()),
	})
	return nil
}

// uploadVolumes copies each buffer out under its lock, then uploads with
// the lock released. A failed upload keeps the texture's previous content.
func (s *Scene) uploadVolumes() {
	for _, v := range s.volumes {
		if err := v.buf.CopyTo(v.scratch); err != nil {
			s.log.Warn("volume snapshot failed", zap.Error(err))
			continue
		}
		err := s.dev.UploadTexture3D(s.res.Textures.Handle(v.tex), v.nx, v.ny, v.nz, v.scratch)
		switch {
		case err != nil && !v.failing:
			v.failing = true
			s.log.Warn("volume upload failed, keeping previous frame",
				zap.Int32("texture", int32(v.tex)), zap.Error(err))
		case err == nil && v.failing:
			v.failing = false
			s.log.Info("volume upload recovered", zap.Int32("texture", int32(v.tex)))
		}
		if err != nil {
			s.stats.UploadFailures++
		}
	}
}
