package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/mauserzjeh/dxt"
)

const (
	ddsMagic      = "DDS "
	ddsHeaderSize = 128 // magic + DDS_HEADER
)

// DecodeDDS decodes the top mip level of a DXT1 or DXT5 compressed DDS file.
func DecodeDDS(data []byte) (*image.RGBA, error) {
	if len(data) < ddsHeaderSize || string(data[:4]) != ddsMagic {
		return nil, errors.New("dds: not a DDS file")
	}

	height := int(binary.LittleEndian.Uint32(data[12:16]))
	width := int(binary.LittleEndian.Uint32(data[16:20]))
	fourCC := string(data[84:88])
	if width == 0 || height == 0 {
		return nil, errors.New("dds: empty image")
	}

	blocks := ((width + 3) / 4) * ((height + 3) / 4)
	payload := data[ddsHeaderSize:]

	var (
		pix []byte
		err error
	)
	switch fourCC {
	case "DXT1":
		if len(payload) < blocks*8 {
			return nil, errors.New("dds: DXT1 data truncated")
		}
		pix, err = dxt.DecodeDXT1(payload[:blocks*8], uint(width), uint(height))
	case "DXT5":
		if len(payload) < blocks*16 {
			return nil, errors.New("dds: DXT5 data truncated")
		}
		pix, err = dxt.DecodeDXT5(payload[:blocks*16], uint(width), uint(height))
	default:
		return nil, fmt.Errorf("dds: unsupported format %q", fourCC)
	}
	if err != nil {
		return nil, fmt.Errorf("dds: %w", err)
	}
	if len(pix) < width*height*4 {
		return nil, fmt.Errorf("dds: decoder returned %d bytes for %dx%d", len(pix), width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pix)
	return img, nil
}
