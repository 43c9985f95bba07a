// Package pptx serializes assembled documents into PowerPoint files.
package pptx

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	ppt "github.com/VantageDataChat/GoPPT"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pptgen/layout"
	"pptgen/slide"
)

const emuPerInch = 914400

// Deck is an opaque handle to a built presentation. Its only job is to be
// written out (or previewed).
type Deck struct {
	log  *zap.Logger
	pres *ppt.Presentation
	doc  layout.Document
}

// Build maps every primitive of the document onto presentation shapes in
// page order, so later primitives are drawn above earlier ones.
func Build(doc layout.Document, log *zap.Logger) (*Deck, error) {
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", slide.ErrEmission)
	}

	p := ppt.New()
	p.GetLayout().SetCustomLayout(emu(doc.Width), emu(doc.Height))
	props := p.GetDocumentProperties()
	props.Title = doc.Meta.Title
	props.Creator = doc.Meta.Author
	props.Subject = doc.Meta.Subject
	props.Company = doc.Meta.Company

	var errs error
	for i, page := range doc.Pages {
		s := p.GetActiveSlide()
		if i > 0 {
			s = p.CreateSlide()
		}
		for _, prim := range page.Primitives {
			if err := place(s, prim); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("page %d %s: %w", page.Ordinal, prim.Role, err))
			}
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("%w: %w", slide.ErrEmission, errs)
	}

	return &Deck{log: log.Named("pptx"), pres: p, doc: doc}, nil
}

func emu(v float64) int64 {
	return int64(math.Round(v * emuPerInch))
}

func place(s *ppt.Slide, prim layout.Primitive) error {
	switch prim.Kind {
	case layout.KindText:
		shape := s.CreateRichTextShape()
		shape.SetOffsetX(emu(prim.Box.X)).SetOffsetY(emu(prim.Box.Y))
		shape.SetWidth(emu(prim.Box.W)).SetHeight(emu(prim.Box.H))

		tr := shape.CreateTextRun(prim.Text)
		font := tr.GetFont()
		font.SetSize(int(math.Round(prim.Font.Size))).SetBold(prim.Font.Bold).SetItalic(prim.Font.Italic).SetColor(ppt.NewColor("FF" + prim.Font.Color))

		shape.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(horizontal(prim.Align)))
		return nil
	case layout.KindBackground, layout.KindImage:
		if len(prim.Image) == 0 {
			// no backdrop configured
			return nil
		}
		mimeType, data, err := slide.DecodeDataURL(prim.Image)
		if err != nil {
			return err
		}
		shape := s.CreateDrawingShape()
		shape.SetImageData(data, mimeType)
		shape.SetOffsetX(emu(prim.Box.X)).SetOffsetY(emu(prim.Box.Y))
		shape.SetWidth(emu(prim.Box.W)).SetHeight(emu(prim.Box.H))
		return nil
	}
	return fmt.Errorf("unexpected primitive kind %s", prim.Kind)
}

func horizontal(a layout.Align) ppt.HorizontalAlignment {
	switch a {
	case layout.AlignCenter:
		return ppt.HorizontalCenter
	case layout.AlignRight:
		return ppt.HorizontalRight
	}
	return ppt.HorizontalLeft
}

// Pages returns number of slides in the deck.
func (d *Deck) Pages() int {
	return len(d.doc.Pages)
}

// Bytes serializes deck in memory.
func (d *Deck) Bytes() ([]byte, error) {
	w, err := ppt.NewWriter(d.pres, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("unable to create presentation writer: %w", err)
	}
	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("unable to serialize presentation: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTo writes deck to the named file. Either the whole file is written or
// nothing is left at path: data goes to a temporary file in the same
// directory which is renamed over the target only after it was synced.
// Failures wrap slide.ErrEmission.
func (d *Deck) WriteTo(ctx context.Context, path string) (err error) {
	defer func() {
		if err != nil {
			d.log.Error("Unable to write presentation", zap.String("path", path), zap.Error(err))
			err = fmt.Errorf("%w: %w", slide.ErrEmission, err)
		}
	}()

	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create destination directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			// close errors are irrelevant here, file is going away
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("unable to write presentation: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("unable to sync presentation: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("unable to close presentation: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("unable to set file mode: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to move presentation in place: %w", err)
	}

	d.log.Info("Presentation written", zap.String("path", path), zap.Int("slides", d.Pages()), zap.Int("size", len(data)))
	return nil
}
