package processor

import (
	"bytes"
	"encoding/binary"
	"image"
	"io"

	"github.com/disintegration/imaging"

	apperrors "github.com/leeforge/imagekit/errors"
)

// DefaultIconSizes are the entries of a favicon.ico.
var DefaultIconSizes = []int{16, 32, 48}

const maxIconSide = 256

// ICOEncoder writes a Windows icon whose entries are PNG-compressed images.
// With IconSizes set, one square entry is produced per size with the image
// letterboxed on transparency. Without it the image itself becomes the only entry.
type ICOEncoder struct{}

func (ICOEncoder) Format() Format  { return FormatICO }
func (ICOEncoder) Available() bool { return true }

type iconDir struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

type iconDirEntry struct {
	Width       uint8
	Height      uint8
	ColorCount  uint8
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

func (ICOEncoder) Encode(w io.Writer, img image.Image, target Target) error {
	images := []image.Image{img}
	if len(target.IconSizes) > 0 {
		images = images[:0]
		for _, side := range target.IconSizes {
			images = append(images, iconEntry(img, side))
		}
	}

	payloads := make([][]byte, len(images))
	entries := make([]iconDirEntry, len(images))
	offset := uint32(6 + 16*len(images))

	for i, m := range images {
		b := m.Bounds()
		if b.Dx() > maxIconSide || b.Dy() > maxIconSide {
			return apperrors.NewEncode("icon entries cannot exceed 256x256").
				WithDetail("width", b.Dx()).
				WithDetail("height", b.Dy())
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, m, imaging.PNG); err != nil {
			return err
		}
		payloads[i] = buf.Bytes()
		entries[i] = iconDirEntry{
			Width:       iconSide(b.Dx()),
			Height:      iconSide(b.Dy()),
			Planes:      1,
			BitCount:    32,
			BytesInRes:  uint32(buf.Len()),
			ImageOffset: offset,
		}
		offset += uint32(buf.Len())
	}

	header := iconDir{Type: 1, Count: uint16(len(images))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, entries); err != nil {
		return err
	}
	for _, p := range payloads {
		if _, err := w.Write(p); err != nil {
			return err
		}
	}
	return nil
}

// iconEntry letterboxes img onto a transparent side×side square.
func iconEntry(img image.Image, side int) image.Image {
	b := img.Bounds()
	surface := NRGBASurfaceFactory{}.NewSurface(side, side, nil)
	drawScaled(surface, img, ComputePlacement(b.Dx(), b.Dy(), Size{Width: side, Height: side}, FitLetterbox), ResamplerLanczos3)
	return surface
}

// iconSide encodes a side length; 0 stands for 256.
func iconSide(n int) uint8 {
	if n >= maxIconSide {
		return 0
	}
	return uint8(n)
}
