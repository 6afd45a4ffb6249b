package loaders

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/df07/go-reflax-raytracer/pkg/material"
)

// ErrUnsupportedFormat is returned for file extensions with no codec
var ErrUnsupportedFormat = errors.New("file format not supported")

// LoadTexture loads a texture from a .tga file
func LoadTexture(filename string) (*material.Texture, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".tga" {
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	defer file.Close()

	texture, err := DecodeTGA(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return texture, nil
}

// SaveTexture writes a texture to a .tga file
func SaveTexture(filename string, texture *material.Texture) error {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".tga" {
		return fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create texture file: %w", err)
	}

	if err := EncodeTGA(file, texture); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveBMP writes an image as an uncompressed 24 bit bitmap. Rows are
// stored bottom-up in BGR order by the encoder.
func SaveBMP(filename string, img image.Image) error {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".bmp" {
		return fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create bitmap file: %w", err)
	}

	if err := bmp.Encode(file, opaque(img)); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode bitmap: %w", err)
	}
	return file.Close()
}

// opaque converts RGBA images to a form the bitmap encoder writes as 24 bit.
// x/image/bmp only emits 32 bit rows for non-opaque *image.RGBA input.
func opaque(img image.Image) image.Image {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Opaque() {
		return img
	}
	out := image.NewRGBA(rgba.Bounds())
	copy(out.Pix, rgba.Pix)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xFF
	}
	return out
}
