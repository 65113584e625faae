package processor

import (
	"bytes"
	"encoding/xml"
	"image"
	"io"
	"math"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/text/encoding/htmlindex"

	apperrors "github.com/leeforge/imagekit/errors"
)

const mimeSVG = "image/svg+xml"

// DefaultAcceptedTypes are the input types the decoder understands.
var DefaultAcceptedTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
	mimeSVG,
}

// Browsers give SVG without width/height/viewBox a 300×150 box.
const (
	defaultSVGWidth  = 300
	defaultSVGHeight = 150
)

// Decoder turns input bytes into a bitmap.
type Decoder interface {
	// ReadHeader reads only what is needed to learn type and dimensions.
	ReadHeader(data []byte) (ImageInfo, error)
	Decode(data []byte) (*SourceImage, error)
}

// DecoderConfig configures the built-in decoder.
type DecoderConfig struct {
	// AcceptedTypes restricts input MIME types. Empty accepts DefaultAcceptedTypes.
	AcceptedTypes []string
	// SVGScale multiplies the intrinsic SVG size when rasterizing.
	SVGScale float64
	// IgnoreOrientation skips EXIF orientation for JPEG input.
	IgnoreOrientation bool
}

// StdDecoder decodes the formats registered with the image package plus SVG.
type StdDecoder struct {
	accepted          map[string]bool
	svgScale          float64
	ignoreOrientation bool
}

// NewDecoder creates a StdDecoder.
func NewDecoder(cfg DecoderConfig) *StdDecoder {
	types := cfg.AcceptedTypes
	if len(types) == 0 {
		types = DefaultAcceptedTypes
	}
	accepted := make(map[string]bool, len(types))
	for _, t := range types {
		accepted[strings.ToLower(strings.TrimSpace(t))] = true
	}
	scale := cfg.SVGScale
	if scale <= 0 {
		scale = 1
	}
	return &StdDecoder{
		accepted:          accepted,
		svgScale:          scale,
		ignoreOrientation: cfg.IgnoreOrientation,
	}
}

// DetectMIME sniffs the media type of data.
func DetectMIME(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	switch {
	case bytes.HasPrefix(head, []byte("II*\x00")), bytes.HasPrefix(head, []byte("MM\x00*")):
		return "image/tiff"
	}

	mime := http.DetectContentType(head)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if strings.HasPrefix(mime, "text/") && isSVG(data) {
		return mimeSVG
	}
	return mime
}

// isSVG reports whether the first element of an XML document is <svg>.
// Prologs, comments and doctypes of any length are skipped; text before
// the root element is not XML.
func isSVG(data []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, err
		}
		return enc.NewDecoder().Reader(input), nil
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t.Name.Local == "svg"
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return false
			}
		}
	}
}

func (d *StdDecoder) accept(data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.NewDecode("empty input")
	}
	mime := DetectMIME(data)
	if !d.accepted[mime] {
		return "", apperrors.NewDecode("unsupported input type").
			WithCode(apperrors.CodeUnsupportedFormat).
			WithDetail("mime", mime)
	}
	return mime, nil
}

// ReadHeader implements Decoder.
func (d *StdDecoder) ReadHeader(data []byte) (ImageInfo, error) {
	mime, err := d.accept(data)
	if err != nil {
		return ImageInfo{}, err
	}

	if mime == mimeSVG {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
		if err != nil {
			return ImageInfo{}, apperrors.WrapWithType(err, apperrors.ErrorTypeDecode, "invalid svg").
				WithCode(apperrors.CodeCorruptImage)
		}
		w, h := d.svgSize(icon)
		return ImageInfo{MIME: mime, Format: "svg", Width: w, Height: h}, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, apperrors.WrapWithType(err, apperrors.ErrorTypeDecode, "cannot read image header").
			WithCode(apperrors.CodeCorruptImage).
			WithDetail("mime", mime)
	}
	return ImageInfo{MIME: mime, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Decode implements Decoder.
func (d *StdDecoder) Decode(data []byte) (*SourceImage, error) {
	mime, err := d.accept(data)
	if err != nil {
		return nil, err
	}

	var (
		img    image.Image
		format string
	)
	switch {
	case mime == mimeSVG:
		img, err = d.rasterizeSVG(data)
		format = "svg"
	case mime == "image/jpeg" && !d.ignoreOrientation:
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		format = "jpeg"
	default:
		img, format, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, apperrors.WrapWithType(err, apperrors.ErrorTypeDecode, "cannot decode image").
			WithCode(apperrors.CodeCorruptImage).
			WithDetail("mime", mime)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, apperrors.NewDecode("image has no pixels").WithDetail("mime", mime)
	}

	return &SourceImage{
		Data:   data,
		Image:  img,
		MIME:   mime,
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

func (d *StdDecoder) svgSize(icon *oksvg.SvgIcon) (int, int) {
	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = defaultSVGWidth, defaultSVGHeight
	}
	return int(math.Ceil(w * d.svgScale)), int(math.Ceil(h * d.svgScale))
}

func (d *StdDecoder) rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	w, h := d.svgSize(icon)
	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return dst, nil
}

var _ Decoder = (*StdDecoder)(nil)
