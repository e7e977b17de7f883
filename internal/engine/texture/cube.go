package texture

import (
	"fmt"
	"image"
	"path/filepath"
)

// CubeFaceNames lists cube map faces in +X, -X, +Y, -Y, +Z, -Z order.
var CubeFaceNames = [6]string{"right", "left", "top", "bottom", "front", "back"}

// CubeFaces returns the six face paths dir/<face><ext>.
func CubeFaces(dir, ext string) [6]string {
	var paths [6]string
	for i, name := range CubeFaceNames {
		paths[i] = filepath.Join(dir, name+ext)
	}
	return paths
}

// DecodeCube decodes six faces. Faces must be square and equally sized.
func DecodeCube(paths [6]string) ([6]*image.RGBA, error) {
	var faces [6]*image.RGBA
	size := -1
	for i, p := range paths {
		img, err := Decode(p)
		if err != nil {
			return faces, fmt.Errorf("cube face %s: %w", CubeFaceNames[i], err)
		}
		b := img.Bounds()
		if b.Dx() != b.Dy() {
			return faces, fmt.Errorf("cube face %s is %dx%d, want square", CubeFaceNames[i], b.Dx(), b.Dy())
		}
		if size >= 0 && b.Dx() != size {
			return faces, fmt.Errorf("cube face %s is %d wide, other faces are %d", CubeFaceNames[i], b.Dx(), size)
		}
		size = b.Dx()
		faces[i] = img
	}
	return faces, nil
}
