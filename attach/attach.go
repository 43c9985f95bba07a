// Package attach turns user supplied image files into self-contained inline
// images and appends them to slides.
package attach

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pptgen/config"
	"pptgen/slide"
	"pptgen/store"
	"pptgen/utils/images"
)

// Pipeline reads, verifies and normalizes images. It holds no state besides
// configuration and could be shared.
type Pipeline struct {
	cfg *config.ImagesConfig
	log *zap.Logger
}

func New(cfg *config.ImagesConfig, log *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log.Named("attach")}
}

type readResult struct {
	data []byte
	err  error
}

// Encode reads whole image from r and returns it as data URL. Reading happens
// on a separate goroutine, when ctx is done before reading completes the read
// is abandoned and error returned. All failures wrap slide.ErrImageRead.
func (p *Pipeline) Encode(ctx context.Context, r io.Reader) (string, error) {
	data, err := p.read(ctx, r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", slide.ErrImageRead, err)
	}
	mimeType, data, err := p.normalize(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", slide.ErrImageRead, err)
	}
	return slide.EncodeDataURL(mimeType, data), nil
}

func (p *Pipeline) read(ctx context.Context, r io.Reader) ([]byte, error) {
	done := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(io.LimitReader(r, p.cfg.MaxFileSize+1))
		done <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		switch {
		case res.err != nil:
			return nil, res.err
		case len(res.data) == 0:
			return nil, errors.New("image file is empty")
		case int64(len(res.data)) > p.cfg.MaxFileSize:
			return nil, fmt.Errorf("image file is larger than %d bytes", p.cfg.MaxFileSize)
		}
		return res.data, nil
	}
}

// normalize makes sure image could be embedded into presentation. Formats
// presentation readers do not handle reliably are converted to PNG, images
// wider than configured maximum are scaled down. Otherwise original data is
// returned as is.
func (p *Pipeline) normalize(data []byte) (string, []byte, error) {
	if images.IsSVG(data) {
		img, err := images.RasterizeSVGToImage(data, p.cfg.MaxWidth, 0)
		if err != nil {
			return "", nil, fmt.Errorf("unable to rasterize SVG: %w", err)
		}
		p.log.Debug("SVG image rasterized", zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
		return p.encode(img, "png")
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return "", nil, fmt.Errorf("unable to detect image type: %w", err)
	}
	if kind == filetype.Unknown || !filetype.IsImage(data) {
		return "", nil, fmt.Errorf("unsupported file type '%s'", kind.MIME.Value)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("unable to decode %s image: %w", kind.MIME.Value, err)
	}

	target, changed := format, false
	switch format {
	case "jpeg", "png":
	case "gif":
		// animation is not played in slides anyway, keep as is unless resized
	default:
		target, changed = "png", true
	}

	if p.cfg.MaxWidth > 0 && img.Bounds().Dx() > p.cfg.MaxWidth {
		p.log.Debug("Downscaling image", zap.String("type", format), zap.Int("width", img.Bounds().Dx()), zap.Int("max", p.cfg.MaxWidth))
		img = imaging.Resize(img, p.cfg.MaxWidth, 0, imaging.Lanczos)
		if target == "gif" {
			target = "png"
		}
		changed = true
	}

	if changed || (p.cfg.Optimize && format == "png") {
		mimeType, out, err := p.encode(img, target)
		if err != nil {
			return "", nil, err
		}
		if !changed && len(out) >= len(data) {
			return kind.MIME.Value, data, nil
		}
		return mimeType, out, nil
	}
	return kind.MIME.Value, data, nil
}

func (p *Pipeline) encode(img image.Image, format string) (string, []byte, error) {
	switch format {
	case "jpeg":
		out, err := images.EncodeJPEG(img, p.cfg.JPEGQuality)
		if err != nil {
			return "", nil, fmt.Errorf("unable to encode JPEG: %w", err)
		}
		return "image/jpeg", out, nil
	default:
		level := png.DefaultCompression
		if p.cfg.Optimize {
			level = png.BestCompression
		}
		buf := new(bytes.Buffer)
		if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(level)); err != nil {
			return "", nil, fmt.Errorf("unable to encode PNG: %w", err)
		}
		return "image/png", buf.Bytes(), nil
	}
}

// Attach encodes image and appends it to the slide with requested id. It does
// not depend on editor state: image lands on the committed record. On any
// failure store is left unchanged.
func (p *Pipeline) Attach(ctx context.Context, st *store.Store, id int, r io.Reader) (slide.Presentation, error) {
	if _, err := st.Slides().Find(id); err != nil {
		return st.Snapshot(), err
	}

	img, err := p.Encode(ctx, r)
	if err != nil {
		p.log.Warn("Unable to attach image", zap.Int("slide", id), zap.Error(err))
		return st.Snapshot(), err
	}

	pres, err := st.Update(func(seq slide.Sequence) (slide.Sequence, error) {
		return seq.AppendImage(id, img)
	})
	if err != nil {
		return pres, err
	}
	p.log.Debug("Image attached", zap.Int("slide", id), zap.Int("size", len(img)))
	return pres, nil
}

// EncodeFile is Encode reading image from file.
func (p *Pipeline) EncodeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", slide.ErrImageRead, err)
	}
	defer f.Close()
	return p.Encode(ctx, f)
}

// AttachFile is Attach reading image from file.
func (p *Pipeline) AttachFile(ctx context.Context, st *store.Store, id int, path string) (slide.Presentation, error) {
	f, err := os.Open(path)
	if err != nil {
		return st.Snapshot(), fmt.Errorf("%w: %w", slide.ErrImageRead, err)
	}
	defer f.Close()
	return p.Attach(ctx, st, id, f)
}
