package processor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"time"

	"github.com/creasty/defaults"
	"go.uber.org/zap"

	apperrors "github.com/leeforge/imagekit/errors"
	"github.com/leeforge/imagekit/logging"
)

// Config holds the pipeline limits and decoder settings.
type Config struct {
	// MaxInputBytes rejects larger inputs before decoding.
	MaxInputBytes int64 `json:"maxInputBytes" yaml:"maxInputBytes" mapstructure:"maxInputBytes" default:"10485760" validate:"gt=0"`
	// MaxPixels rejects images whose header declares more pixels.
	MaxPixels int64 `json:"maxPixels" yaml:"maxPixels" mapstructure:"maxPixels" default:"50000000" validate:"gt=0"`
	// Resampler is one of lanczos3, bicubic, bilinear, nearest, catmullrom.
	Resampler Resampler `json:"resampler" yaml:"resampler" mapstructure:"resampler" default:"lanczos3" validate:"oneof=lanczos3 bicubic bilinear nearest catmullrom"`
	// AcceptedTypes restricts input MIME types.
	AcceptedTypes []string `json:"acceptedTypes" yaml:"acceptedTypes" mapstructure:"acceptedTypes"`
	// SVGScale multiplies the intrinsic size of SVG input.
	SVGScale float64 `json:"svgScale" yaml:"svgScale" mapstructure:"svgScale" default:"1" validate:"gt=0,lte=16"`
	// IgnoreOrientation skips EXIF orientation for JPEG input.
	IgnoreOrientation bool `json:"ignoreOrientation" yaml:"ignoreOrientation" mapstructure:"ignoreOrientation"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	var cfg Config
	_ = defaults.Set(&cfg)
	return cfg
}

// Pipeline re-encodes images: decode, fit onto a surface, adjust, encode.
// It holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	config   Config
	decoder  Decoder
	encoders EncoderSet
	surfaces SurfaceFactory
	logger   logging.Logger
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithDecoder replaces the built-in decoder.
func WithDecoder(d Decoder) Option {
	return func(p *Pipeline) { p.decoder = d }
}

// WithEncoder registers enc for its format, replacing any existing encoder.
func WithEncoder(enc Encoder) Option {
	return func(p *Pipeline) { p.encoders[enc.Format()] = enc }
}

// WithSurfaceFactory replaces the surface allocator.
func WithSurfaceFactory(f SurfaceFactory) Option {
	return func(p *Pipeline) { p.surfaces = f }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a Pipeline. Zero config fields take their defaults.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, apperrors.Wrap(err, "apply pipeline defaults")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, validationError(err)
	}

	p := &Pipeline{
		config:   cfg,
		encoders: DefaultEncoders(),
		surfaces: NRGBASurfaceFactory{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.decoder == nil {
		p.decoder = NewDecoder(DecoderConfig{
			AcceptedTypes:     cfg.AcceptedTypes,
			SVGScale:          cfg.SVGScale,
			IgnoreOrientation: cfg.IgnoreOrientation,
		})
	}
	return p, nil
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Encoders reports every output format and whether this build can encode it.
func (p *Pipeline) Encoders() []EncoderStatus {
	return p.encoders.Statuses()
}

// Inspect reads type and dimensions without decoding pixels.
func (p *Pipeline) Inspect(source []byte) (ImageInfo, error) {
	if err := p.checkInputSize(int64(len(source))); err != nil {
		return ImageInfo{}, err
	}
	return p.decoder.ReadHeader(source)
}

// Reencode converts source into the requested target.
func (p *Pipeline) Reencode(ctx context.Context, source []byte, target Target) (*EncodedOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, _ = logging.EnsureConversionID(ctx)
	log := logging.WithContext(p.logger, ctx)

	target, err := NormalizeTarget(target)
	if err != nil {
		return nil, err
	}
	if err := p.checkInputSize(int64(len(source))); err != nil {
		return nil, err
	}
	enc, err := p.encoders.Lookup(target.Format)
	if err != nil {
		return nil, err
	}

	src, err := p.decode(source, log)
	if err != nil {
		return nil, err
	}
	return p.convert(src, target, enc, log)
}

// Variants converts source into each target in order, decoding it once.
// Targets whose format cannot be encoded in this build are left out; any
// other failure aborts.
func (p *Pipeline) Variants(ctx context.Context, source []byte, targets []Target) ([]*EncodedOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, _ = logging.EnsureConversionID(ctx)
	log := logging.WithContext(p.logger, ctx)

	if err := p.checkInputSize(int64(len(source))); err != nil {
		return nil, err
	}

	type job struct {
		target Target
		enc    Encoder
	}
	jobs := make([]job, 0, len(targets))
	for _, t := range targets {
		t, err := NormalizeTarget(t)
		if err != nil {
			return nil, err
		}
		enc, err := p.encoders.Lookup(t.Format)
		if err != nil {
			log.Warn("skipping unavailable output format", zap.String("format", string(t.Format)))
			continue
		}
		jobs = append(jobs, job{target: t, enc: enc})
	}
	if len(jobs) == 0 {
		return []*EncodedOutput{}, nil
	}

	src, err := p.decode(source, log)
	if err != nil {
		return nil, err
	}

	outputs := make([]*EncodedOutput, 0, len(jobs))
	for _, j := range jobs {
		out, err := p.convert(src, j.target, j.enc, log)
		if err != nil {
			if IsUnavailable(err) {
				log.Warn("skipping unavailable output format", zap.String("format", string(j.target.Format)))
				continue
			}
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// decode checks the header against MaxPixels, then decodes the full image.
func (p *Pipeline) decode(source []byte, log logging.Logger) (*SourceImage, error) {
	info, err := p.decoder.ReadHeader(source)
	if err != nil {
		return nil, err
	}
	if err := p.checkPixels(info); err != nil {
		return nil, err
	}

	src, err := p.decoder.Decode(source)
	if err != nil {
		return nil, err
	}
	log.Debug("decoded source",
		zap.String("mime", src.MIME),
		zap.Int("width", src.Width),
		zap.Int("height", src.Height))
	return src, nil
}

// convert renders src for target on a fresh surface and encodes it.
func (p *Pipeline) convert(src *SourceImage, target Target, enc Encoder, log logging.Logger) (*EncodedOutput, error) {
	start := time.Now()

	img := p.render(src.Image, target)
	if target.Adjust != nil && !target.Adjust.Identity() {
		img = AdjustPixels(img, *target.Adjust)
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, img, target); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.WrapWithType(err, apperrors.ErrorTypeEncode, "encode failed").
			WithCode(apperrors.CodeEncodeFailed).
			WithDetail("format", string(target.Format))
	}

	bounds := img.Bounds()
	out := &EncodedOutput{
		Data:      buf.Bytes(),
		Format:    target.Format,
		MIME:      target.Format.MIME(),
		Extension: target.Format.Extension(),
		Quality:   target.QualityValue(),
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	}

	log.Info("re-encoded image",
		zap.String("format", string(out.Format)),
		zap.Int("width", out.Width),
		zap.Int("height", out.Height),
		zap.Int("bytes", out.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// ReencodeReader reads at most MaxInputBytes from r and converts it.
func (p *Pipeline) ReencodeReader(ctx context.Context, r io.Reader, target Target) (*EncodedOutput, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.config.MaxInputBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(err, "read source")
	}
	return p.Reencode(ctx, data, target)
}

// ReencodeFile converts the file at path. Oversized files are rejected from
// their size alone.
func (p *Pipeline) ReencodeFile(ctx context.Context, path string, target Target) (*EncodedOutput, error) {
	data, err := p.ReadSource(path)
	if err != nil {
		return nil, err
	}
	return p.Reencode(ctx, data, target)
}

// ReadSource loads a source file, checking its size before reading.
func (p *Pipeline) ReadSource(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFound("source file", path)
		}
		return nil, apperrors.Wrap(err, "stat source")
	}
	if err := p.checkInputSize(fi.Size()); err != nil {
		return nil, apperrors.Wrap(err, "source file too large").WithDetail("path", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "read source")
	}
	return data, nil
}

func (p *Pipeline) checkInputSize(n int64) error {
	if n > p.config.MaxInputBytes {
		return apperrors.NewSizeLimit("input exceeds size limit").
			WithDetail("bytes", n).
			WithDetail("limit", p.config.MaxInputBytes)
	}
	return nil
}

func (p *Pipeline) checkPixels(info ImageInfo) error {
	pixels := int64(info.Width) * int64(info.Height)
	if pixels > p.config.MaxPixels {
		return apperrors.NewSizeLimit("image has too many pixels").
			WithCode(apperrors.CodeTooManyPixels).
			WithDetail("pixels", pixels).
			WithDetail("limit", p.config.MaxPixels)
	}
	return nil
}

// render draws src onto a fresh surface sized for target.
func (p *Pipeline) render(src image.Image, target Target) image.Image {
	b := src.Bounds()
	canvas, placement := canvasFor(target, b.Dx(), b.Dy())
	surface := p.surfaces.NewSurface(canvas.Width, canvas.Height, backgroundFor(target))
	drawScaled(surface, src, placement, p.config.Resampler)
	return surface
}
