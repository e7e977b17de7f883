package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA
// images with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, errors.New("tga: header truncated")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	switch {
	case colorMapType != 0:
		return nil, errors.New("tga: color-mapped images not supported")
	case imageType != TGATypeUncompressed && imageType != TGATypeRLE:
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	case bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	case width == 0 || height == 0:
		return nil, errors.New("tga: empty image")
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errors.New("tga: data truncated")
	}
	src := data[offset:]
	stride := bpp / 8

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	total := width * height

	// put writes pixel n (in file order) from the BGR(A) bytes at px.
	put := func(n int, px []byte) {
		x, y := n%width, n/width
		if !topToBottom {
			y = height - 1 - y
		}
		i := img.PixOffset(x, y)
		img.Pix[i+0] = px[2]
		img.Pix[i+1] = px[1]
		img.Pix[i+2] = px[0]
		img.Pix[i+3] = 255
		if stride == 4 {
			img.Pix[i+3] = px[3]
		}
	}

	if imageType == TGATypeUncompressed {
		if len(src) < total*stride {
			return nil, errors.New("tga: pixel data truncated")
		}
		for n := 0; n < total; n++ {
			put(n, src[n*stride:])
		}
		return img, nil
	}

	n, at := 0, 0
	for n < total {
		if at >= len(src) {
			return nil, errors.New("tga: rle data truncated")
		}
		header := src[at]
		at++
		count := int(header&0x7f) + 1
		repeat := header&0x80 != 0

		if repeat {
			if at+stride > len(src) {
				return nil, errors.New("tga: rle data truncated")
			}
			for i := 0; i < count && n < total; i++ {
				put(n, src[at:])
				n++
			}
			at += stride
			continue
		}

		for i := 0; i < count && n < total; i++ {
			if at+stride > len(src) {
				return nil, errors.New("tga: rle data truncated")
			}
			put(n, src[at:])
			at += stride
			n++
		}
	}
	return img, nil
}
