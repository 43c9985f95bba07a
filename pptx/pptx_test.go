package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	ppt "github.com/VantageDataChat/GoPPT"
	"go.uber.org/zap/zaptest"

	"pptgen/common"
	"pptgen/config"
	"pptgen/layout"
	"pptgen/slide"
)

func testPNG(t *testing.T) string {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 4, 3))); err != nil {
		t.Fatal(err)
	}
	return slide.EncodeDataURL("image/png", buf.Bytes())
}

func testDocument(t *testing.T) layout.Document {
	t.Helper()
	img := testPNG(t)
	seq := slide.Sequence{
		{ID: 0, Title: "Digital Strategy", Subtitle: "Framework", Type: common.SlideTypeTitle},
		{ID: 1, Title: "Summary", Type: common.SlideTypeContent, Content: []string{"first", "second"}, Images: []string{img}},
		{ID: 2, Title: "Questions", Type: common.SlideTypeClosing},
	}
	return layout.Assemble(seq, layout.Metadata{Author: "Author", Company: "ACME Co", Subject: "Strategic Analysis", Title: "Digital Strategy"}, img)
}

func slideTexts(t *testing.T, path string) [][]string {
	t.Helper()
	pres, err := (&ppt.PPTXReader{}).Read(path)
	if err != nil {
		t.Fatalf("unable to read back presentation: %v", err)
	}
	var out [][]string
	for _, s := range pres.GetAllSlides() {
		var texts []string
		for _, shape := range s.GetShapes() {
			rts, ok := shape.(*ppt.RichTextShape)
			if !ok {
				continue
			}
			for _, para := range rts.GetParagraphs() {
				var text string
				for _, elem := range para.GetElements() {
					if run, ok := elem.(*ppt.TextRun); ok {
						text += run.GetText()
					}
				}
				if len(text) > 0 {
					texts = append(texts, text)
				}
			}
		}
		out = append(out, texts)
	}
	return out
}

func zipEntry(t *testing.T, path, name string) string {
	t.Helper()
	arc, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("presentation is not a zip archive: %v", err)
	}
	defer arc.Close()
	f, err := arc.Open(name)
	if err != nil {
		t.Fatalf("presentation has no %s: %v", name, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestWriteTo(t *testing.T) {
	deck, err := Build(testDocument(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if deck.Pages() != 3 {
		t.Errorf("Pages() = %d", deck.Pages())
	}

	dir := t.TempDir()
	path := filepath.Join(dir, FileName("Digital Strategy"))
	if err := deck.WriteTo(context.Background(), path); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	texts := slideTexts(t, path)
	if len(texts) != 3 {
		t.Fatalf("slides read back = %d, want 3", len(texts))
	}
	for i, want := range [][]string{
		{"Digital Strategy", "Framework", layout.Caption},
		{"Summary", layout.BulletPrefix + "first", layout.BulletPrefix + "second", "2"},
		{"Questions"},
	} {
		for _, w := range want {
			if !slices.Contains(texts[i], w) {
				t.Errorf("slide %d texts %q have no %q", i+1, texts[i], w)
			}
		}
	}

	for _, tt := range []struct{ part, want string }{
		{"docProps/core.xml", "<dc:title>Digital Strategy</dc:title>"},
		{"docProps/core.xml", "<dc:creator>Author</dc:creator>"},
		{"docProps/core.xml", "<dc:subject>Strategic Analysis</dc:subject>"},
		{"docProps/app.xml", "<Company>ACME Co</Company>"},
		{"ppt/presentation.xml", `<p:sldSz cx="9144000" cy="6858000"`},
	} {
		if got := zipEntry(t, path, tt.part); !strings.Contains(got, tt.want) {
			t.Errorf("%s has no %s", tt.part, tt.want)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("destination has %d entries, temporary file left behind", len(entries))
	}
}

func TestWriteTo_FailureLeavesNothing(t *testing.T) {
	deck, err := Build(testDocument(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	t.Run("cancelled", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := deck.WriteTo(ctx, filepath.Join(dir, "out.pptx"))
		if !errors.Is(err, slide.ErrEmission) || !errors.Is(err, context.Canceled) {
			t.Fatalf("WriteTo() error = %v", err)
		}
		if entries, _ := os.ReadDir(dir); len(entries) != 0 {
			t.Errorf("destination is not empty: %v", entries)
		}
	})

	t.Run("bad destination", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(blocker, "out.pptx")
		if err := deck.WriteTo(context.Background(), path); !errors.Is(err, slide.ErrEmission) {
			t.Fatalf("WriteTo() error = %v", err)
		}
		if _, err := os.Stat(path); err == nil {
			t.Error("file exists after failed write")
		}
	})
}

func TestBuild_Failures(t *testing.T) {
	log := zaptest.NewLogger(t)
	if _, err := Build(layout.Document{}, log); !errors.Is(err, slide.ErrEmission) {
		t.Errorf("Build(empty) error = %v", err)
	}

	doc := testDocument(t)
	doc.Pages[1].Primitives = append(doc.Pages[1].Primitives, layout.Primitive{Kind: layout.KindImage, Role: layout.RoleImage, Image: "not a data url"})
	if _, err := Build(doc, log); !errors.Is(err, slide.ErrEmission) {
		t.Errorf("Build(bad image) error = %v", err)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"Digital   Transformation Strategy", "Digital_Transformation_Strategy_Professional_Presentation.pptx"},
		{"AI", "AI_Professional_Presentation.pptx"},
		{" Leading and\ttrailing\n", "_Leading_and_trailing__Professional_Presentation.pptx"},
		{"Q1/Q2 Review", "Q1Q2_Review_Professional_Presentation.pptx"},
		{"A\u00a0B", "A_B_Professional_Presentation.pptx"},
		{"A\vB", "A_B_Professional_Presentation.pptx"},
		{"A\u2003 B", "A_B_Professional_Presentation.pptx"},
		{"東京\u3000計画", "東京_計画_Professional_Presentation.pptx"},
		{"A\ufeffB", "A_B_Professional_Presentation.pptx"},
	}
	for _, tt := range tests {
		if got := FileName(tt.topic); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	pres := slide.Presentation{Topic: "Café   Strategy", Slides: make(slide.Sequence, 3)}
	log := zaptest.NewLogger(t)

	tests := []struct {
		name string
		cfg  config.DocumentConfig
		want string
	}{
		{name: "default", cfg: config.DocumentConfig{Author: "A"}, want: "Café_Strategy_Professional_Presentation.pptx"},
		{name: "template", cfg: config.DocumentConfig{Author: "Jane Doe", OutputNameTemplate: `{{ .Author | lower }} - {{ .Sanitized }} ({{ .Slides }})`}, want: "jane doe - Café_Strategy (3).pptx"},
		{name: "template with extension", cfg: config.DocumentConfig{OutputNameTemplate: `{{ .Topic }}.pptx`}, want: "Café   Strategy.pptx"},
		{name: "broken template", cfg: config.DocumentConfig{OutputNameTemplate: `{{ .Nope `}, want: "Café_Strategy_Professional_Presentation.pptx"},
		{name: "transliterate", cfg: config.DocumentConfig{FileNameTransliterate: true}, want: "cafe_strategy_professional_presentation.pptx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputName(pres, &tt.cfg, log); got != tt.want {
				t.Errorf("OutputName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderPreviews(t *testing.T) {
	deck, err := Build(testDocument(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	dir := filepath.Join(t.TempDir(), "previews")
	paths, err := deck.RenderPreviews(context.Background(), dir, 320)
	if err != nil {
		t.Fatalf("RenderPreviews() error = %v", err)
	}
	want := []string{"01-digital-strategy.png", "02-summary.png", "03-questions.png"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Errorf("preview %d = %s, want %s", i, filepath.Base(p), want[i])
		}
		f, err := os.Open(p)
		if err != nil {
			t.Fatal(err)
		}
		cfg, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("preview %d is not png: %v", i, err)
		}
		if cfg.Width != 320 {
			t.Errorf("preview %d width = %d", i, cfg.Width)
		}
	}
}

func TestRenderPage(t *testing.T) {
	doc := testDocument(t)

	img, err := RenderPage(doc, 0, 200)
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Fatalf("bounds = %v, want 200x150", b)
	}

	white := color.NRGBAModel.Convert(color.White)
	if got := color.NRGBAModel.Convert(img.At(2, 2)); got != white {
		t.Errorf("corner pixel = %v, want white", got)
	}
	// title box of the title slide spans rows 50-74
	inked := false
	for y := 50; y < 74 && !inked; y++ {
		for x := 10; x < 190; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)) != white {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("title was not drawn")
	}

	again, err := RenderPage(doc, 0, 200)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(img.(*image.NRGBA).Pix, again.(*image.NRGBA).Pix) {
		t.Error("rendering is not deterministic")
	}

	if _, err := RenderPage(doc, 3, 200); err == nil {
		t.Error("page out of range accepted")
	}
	if _, err := RenderPage(doc, 0, 0); err == nil {
		t.Error("zero width accepted")
	}
}

func TestRenderPreviews_Cancelled(t *testing.T) {
	deck, err := Build(testDocument(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := deck.RenderPreviews(ctx, t.TempDir(), 160); !errors.Is(err, context.Canceled) {
		t.Errorf("RenderPreviews() error = %v", err)
	}
}

func TestPreviewName(t *testing.T) {
	if got := PreviewName(7, "Risk Management & Mitigation"); !strings.HasPrefix(got, "07-risk-management") || !strings.HasSuffix(got, ".png") {
		t.Errorf("PreviewName() = %q", got)
	}
	if got := PreviewName(12, "   "); got != "12-slide.png" {
		t.Errorf("PreviewName(blank) = %q", got)
	}
}
