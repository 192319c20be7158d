package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Image is a dense, row-major, 3-channel RGB pixel array, the one layout
// every engine accepts. Stride is exactly Width*3.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// Normalize converts a decoded raster image into the dense RGB layout.
// RGBA, NRGBA and single-channel grayscale inputs are accepted; any other
// channel layout fails with ErrUnsupportedImage. The alpha channel is
// discarded: page rasters are opaque by construction.
func Normalize(src image.Image) (*Image, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := &Image{Width: w, Height: h, Pix: make([]uint8, w*h*3)}

	switch img := src.(type) {
	case *image.RGBA:
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				o := (y*w + x) * 3
				out.Pix[o] = row[x*4]
				out.Pix[o+1] = row[x*4+1]
				out.Pix[o+2] = row[x*4+2]
			}
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				o := (y*w + x) * 3
				out.Pix[o] = row[x*4]
				out.Pix[o+1] = row[x*4+1]
				out.Pix[o+2] = row[x*4+2]
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				o := (y*w + x) * 3
				v := row[x]
				out.Pix[o] = v
				out.Pix[o+1] = v
				out.Pix[o+2] = v
			}
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedImage, src)
	}
	return out, nil
}

// ToRGBA rebuilds a stdlib image from the dense array.
func (img *Image) ToRGBA() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			o := (y*img.Width + x) * 3
			dst.SetRGBA(x, y, color.RGBA{R: img.Pix[o], G: img.Pix[o+1], B: img.Pix[o+2], A: 255})
		}
	}
	return dst
}

// EncodePNG returns the image as encoded PNG bytes for engines that take an
// encoded payload rather than raw pixels.
func (img *Image) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.ToRGBA()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
