package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/material"
)

// Errors returned for TGA files this decoder does not handle
var (
	ErrColorMapped     = errors.New("images with color map are not supported")
	ErrNotUncompressed = errors.New("only uncompressed truecolor images are supported")
	ErrNonZeroOrigin   = errors.New("images with non zero origin are not supported")
	ErrBitsPerPixel    = errors.New("only 24 and 32 bits per pixel are supported")
	ErrImageOrigin     = errors.New("image origin flags are not supported")
)

const tgaUncompressedTrueColor = 2

// TGAHeader is the fixed 18-byte TGA file header
type TGAHeader struct {
	IdentSize         uint8
	ColorMapType      uint8
	ImageType         uint8
	ColorMapOrigin    uint16
	ColorMapLength    uint16
	ColorMapEntryBits uint8
	XOrigin           uint16
	YOrigin           uint16
	Width             uint16
	Height            uint16
	BitsPerPixel      uint8
	ImageDescriptor   uint8
}

// validate rejects every header variant the decoder does not support
func (h TGAHeader) validate() error {
	switch {
	case h.ColorMapType != 0:
		return ErrColorMapped
	case h.ImageType != tgaUncompressedTrueColor:
		return ErrNotUncompressed
	case h.XOrigin != 0 || h.YOrigin != 0:
		return ErrNonZeroOrigin
	case h.BitsPerPixel != 24 && h.BitsPerPixel != 32:
		return ErrBitsPerPixel
	case h.ImageDescriptor&0x30 != 0:
		return ErrImageOrigin
	}
	return nil
}

// DecodeTGA reads an uncompressed 24 or 32 bit TGA image into a texture.
// Rows are kept in file order, so row 0 of the texture is the first row
// stored in the file. With 32 bpp the alpha channel premultiplies RGB.
func DecodeTGA(r io.Reader) (*material.Texture, error) {
	reader := bufio.NewReader(r)

	var header TGAHeader
	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read TGA header: %w", err)
	}
	if err := header.validate(); err != nil {
		return nil, err
	}

	// skip the image id and any (unused) color map data
	skip := int64(header.IdentSize) + int64(header.ColorMapLength)*int64(header.ColorMapEntryBits)/8
	if _, err := io.CopyN(io.Discard, reader, skip); err != nil {
		return nil, fmt.Errorf("failed to find pixel data, the file is possibly corrupted: %w", err)
	}

	width := int(header.Width)
	height := int(header.Height)
	bytesPerPixel := int(header.BitsPerPixel) / 8

	raw := make([]byte, width*height*bytesPerPixel)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return nil, fmt.Errorf("failed to load pixel data, the file is possibly corrupted: %w", err)
	}

	pixels := make([]core.Vec3, width*height)
	for i := range pixels {
		p := raw[i*bytesPerPixel : (i+1)*bytesPerPixel]
		b, g, r := p[0], p[1], p[2]
		if bytesPerPixel == 4 {
			a := uint32(p[3])
			r = uint8(uint32(r) * a / 255)
			g = uint8(uint32(g) * a / 255)
			b = uint8(uint32(b) * a / 255)
		}
		pixels[i] = core.ColorFromRGB(r, g, b)
	}

	return material.NewTexture(width, height, pixels), nil
}

// EncodeTGA writes a texture as an uncompressed 24 bit TGA image
func EncodeTGA(w io.Writer, texture *material.Texture) error {
	if texture.Width > 0xFFFF || texture.Height > 0xFFFF {
		return fmt.Errorf("texture %dx%d is too large for TGA", texture.Width, texture.Height)
	}

	writer := bufio.NewWriter(w)
	header := TGAHeader{
		ImageType:    tgaUncompressedTrueColor,
		Width:        uint16(texture.Width),
		Height:       uint16(texture.Height),
		BitsPerPixel: 24,
	}
	if err := binary.Write(writer, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write TGA header: %w", err)
	}

	for _, c := range texture.Pixels {
		rgb := c.RGB()
		if _, err := writer.Write([]byte{rgb[2], rgb[1], rgb[0]}); err != nil {
			return fmt.Errorf("failed to write TGA pixels: %w", err)
		}
	}

	return writer.Flush()
}
