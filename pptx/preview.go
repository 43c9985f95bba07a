package pptx

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"pptgen/layout"
	"pptgen/slide"
)

// previewWorkers limits number of pages being rendered at the same time.
const previewWorkers = 4

// PreviewName returns file name of the preview image for the page.
func PreviewName(ordinal int, title string) string {
	name := slug.Make(title)
	if len(name) == 0 {
		name = "slide"
	}
	return fmt.Sprintf("%02d-%s.png", ordinal, name)
}

// RenderPreviews renders every page of the deck into PNG image of the given
// width and saves them into dir. Returns paths of produced files in page
// order.
func (d *Deck) RenderPreviews(ctx context.Context, dir string, width int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create preview directory: %w", err)
	}

	paths := make([]string, len(d.doc.Pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(previewWorkers)
	for i, page := range d.doc.Pages {
		title := ""
		if titles := page.ByRole(layout.RoleTitle); len(titles) > 0 {
			title = titles[0].Text
		}
		paths[i] = filepath.Join(dir, PreviewName(page.Ordinal, title))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := RenderPage(d.doc, i, width)
			if err != nil {
				return fmt.Errorf("unable to render slide %d: %w", page.Ordinal, err)
			}
			if err := imaging.Save(img, paths[i]); err != nil {
				return fmt.Errorf("unable to save preview of slide %d: %w", page.Ordinal, err)
			}
			d.log.Debug("Preview saved", zap.Int("slide", page.Ordinal), zap.String("path", paths[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

// RenderPage rasterizes single page of the document. Image is width pixels
// wide, height keeps canvas proportions.
func RenderPage(doc layout.Document, index, width int) (image.Image, error) {
	if index < 0 || index >= len(doc.Pages) {
		return nil, fmt.Errorf("page %d is out of range", index)
	}
	if width <= 0 || doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("bad preview geometry %d for %gx%g canvas", width, doc.Width, doc.Height)
	}

	r := &rasterizer{
		scale: float64(width) / doc.Width,
		faces: make(map[faceKey]font.Face),
	}
	defer r.close()

	height := int(math.Round(doc.Height * r.scale))
	dst := imaging.New(width, height, color.White)
	for _, prim := range doc.Pages[index].Primitives {
		var err error
		switch prim.Kind {
		case layout.KindBackground, layout.KindImage:
			dst, err = r.drawImage(dst, prim)
		case layout.KindText:
			err = r.drawText(dst, prim)
		default:
			err = fmt.Errorf("unexpected primitive kind %s", prim.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", prim.Role, err)
		}
	}
	return dst, nil
}

type faceKey struct {
	size         float64
	bold, italic bool
}

var previewFonts = sync.OnceValues(func() (map[faceKey]*opentype.Font, error) {
	fonts := make(map[faceKey]*opentype.Font, 4)
	for key, data := range map[faceKey][]byte{
		{}:                         goregular.TTF,
		{bold: true}:               gobold.TTF,
		{italic: true}:             goitalic.TTF,
		{bold: true, italic: true}: gobolditalic.TTF,
	} {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse preview font: %w", err)
		}
		fonts[key] = f
	}
	return fonts, nil
})

// rasterizer draws primitives of a single page. Faces are not safe for
// concurrent use, every page gets its own rasterizer.
type rasterizer struct {
	scale float64 // pixels per canvas unit
	faces map[faceKey]font.Face
}

func (r *rasterizer) close() {
	for _, f := range r.faces {
		_ = f.Close()
	}
}

func (r *rasterizer) rect(b layout.Box) image.Rectangle {
	x0, y0 := int(math.Round(b.X*r.scale)), int(math.Round(b.Y*r.scale))
	x1, y1 := int(math.Round((b.X+b.W)*r.scale)), int(math.Round((b.Y+b.H)*r.scale))
	return image.Rect(x0, y0, x1, y1)
}

func (r *rasterizer) drawImage(dst *image.NRGBA, prim layout.Primitive) (*image.NRGBA, error) {
	if len(prim.Image) == 0 {
		return dst, nil
	}
	_, data, err := slide.DecodeDataURL(prim.Image)
	if err != nil {
		return dst, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return dst, fmt.Errorf("unable to decode image: %w", err)
	}
	box := r.rect(prim.Box)
	if box.Dx() <= 0 || box.Dy() <= 0 {
		return dst, nil
	}
	src = imaging.Resize(src, box.Dx(), box.Dy(), imaging.Lanczos)
	return imaging.Overlay(dst, src, box.Min, 1.0), nil
}

func (r *rasterizer) face(f layout.Font) (font.Face, error) {
	key := faceKey{size: f.Size, bold: f.Bold, italic: f.Italic}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	fonts, err := previewFonts()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(fonts[faceKey{bold: f.Bold, italic: f.Italic}], &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     r.scale,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to prepare font face: %w", err)
	}
	r.faces[key] = face
	return face, nil
}

func (r *rasterizer) drawText(dst *image.NRGBA, prim layout.Primitive) error {
	if len(prim.Text) == 0 {
		return nil
	}
	face, err := r.face(prim.Font)
	if err != nil {
		return err
	}
	ink, err := parseColor(prim.Font.Color)
	if err != nil {
		return err
	}

	box := r.rect(prim.Box)
	metrics := face.Metrics()
	drawer := &font.Drawer{Dst: dst, Src: image.NewUniform(ink), Face: face}

	baseline := fixed.I(box.Min.Y) + metrics.Ascent
	for _, line := range wrap(drawer, prim.Text, fixed.I(box.Dx())) {
		x := fixed.I(box.Min.X)
		switch prim.Align {
		case layout.AlignCenter:
			x += (fixed.I(box.Dx()) - drawer.MeasureString(line)) / 2
		case layout.AlignRight:
			x += fixed.I(box.Dx()) - drawer.MeasureString(line)
		}
		drawer.Dot = fixed.Point26_6{X: x, Y: baseline}
		drawer.DrawString(line)
		baseline += metrics.Height
	}
	return nil
}

// wrap breaks text into lines fitting width. Words longer than width occupy
// a line of their own.
func wrap(d *font.Drawer, text string, width fixed.Int26_6) []string {
	var (
		lines []string
		cur   string
	)
	for _, word := range strings.Fields(text) {
		next := word
		if len(cur) > 0 {
			next = cur + " " + word
		}
		if len(cur) > 0 && d.MeasureString(next) > width {
			lines = append(lines, cur)
			next = word
		}
		cur = next
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

func parseColor(rgb string) (color.NRGBA, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(rgb, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(rgb, "#")) != 6 {
		return color.NRGBA{}, fmt.Errorf("bad color %q", rgb)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
