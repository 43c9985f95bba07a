// Package layout turns slide records into positioned visual primitives on a
// fixed canvas. Assembly is a pure function: identical input always produces
// identical document.
package layout

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"pptgen/common"
	"pptgen/slide"
)

// Canvas size in canvas units (inches).
const (
	CanvasWidth  = 10.0
	CanvasHeight = 7.5
)

// MaxLines is the number of content points rendered on a content slide.
// Points above are dropped.
const MaxLines = 6

// Caption is the footer text of a title slide.
const Caption = "Generated by Multi-Agent AI System"

// BulletPrefix is prepended to every rendered content point.
const BulletPrefix = "• "

// Colors are constant per element role (RRGGBB).
const (
	ColorTitle    = "1F3864"
	ColorSubtitle = "2E75B6"
	ColorBody     = "333333"
	ColorFooter   = "7F7F7F"
)

// Kind of a primitive.
type Kind int

const (
	KindBackground Kind = iota
	KindText
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindBackground:
		return "background"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Role of a primitive on the slide.
type Role string

const (
	RoleBackground Role = "background"
	RoleTitle      Role = "title"
	RoleSubtitle   Role = "subtitle"
	RoleBullet     Role = "bullet"
	RoleCaption    Role = "caption"
	RolePageNumber Role = "page-number"
	RoleImage      Role = "image"
)

// Align is horizontal text alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return fmt.Sprintf("Align(%d)", int(a))
}

// Box is a rectangle in canvas units, origin is top left corner.
type Box struct {
	X, Y, W, H float64
}

type Font struct {
	Size   float64 // points
	Bold   bool
	Italic bool
	Color  string
}

// Primitive is a single positioned visual element. Primitives of a page are
// ordered bottom to top.
type Primitive struct {
	Kind  Kind
	Role  Role
	Box   Box
	Text  string
	Font  Font
	Align Align
	// Image is inline encoded image for background and image primitives.
	Image string
}

// Page is assembled slide.
type Page struct {
	Ordinal    int // 1-based position in the sequence
	SlideID    int
	Type       common.SlideType
	Layout     string
	Primitives []Primitive
}

// Metadata is supplied once at assembly time and becomes document properties.
type Metadata struct {
	Author  string `json:"author"`
	Company string `json:"company"`
	Subject string `json:"subject"`
	Title   string `json:"title"`
}

// Document is assembled presentation ready to be handed to the emitter.
type Document struct {
	ID     uuid.UUID
	Meta   Metadata
	Width  float64
	Height float64
	Pages  []Page
}

// documentNamespace seeds deterministic document ids.
var documentNamespace = uuid.MustParse("6f1d7a40-3c55-4f0e-9a8e-6a3fa1d0b2c7")

// text element geometry and style
type textStyle struct {
	box   Box
	font  Font
	align Align
}

var (
	titleSlideTitle    = textStyle{Box{0.5, 2.5, 9.0, 1.2}, Font{Size: 44, Bold: true, Color: ColorTitle}, AlignCenter}
	titleSlideSubtitle = textStyle{Box{0.5, 3.8, 9.0, 0.8}, Font{Size: 24, Color: ColorSubtitle}, AlignCenter}
	titleSlideCaption  = textStyle{Box{0.5, 6.6, 9.0, 0.5}, Font{Size: 12, Italic: true, Color: ColorFooter}, AlignCenter}

	closingTitle    = textStyle{Box{0.5, 2.8, 9.0, 1.2}, Font{Size: 40, Bold: true, Color: ColorTitle}, AlignCenter}
	closingSubtitle = textStyle{Box{0.5, 4.1, 9.0, 0.8}, Font{Size: 24, Color: ColorSubtitle}, AlignCenter}

	contentTitle      = textStyle{Box{0.5, 0.4, 9.0, 1.0}, Font{Size: 32, Bold: true, Color: ColorTitle}, AlignLeft}
	contentBullet     = textStyle{Box{0.8, 1.6, 8.4, 0.8}, Font{Size: 18, Color: ColorBody}, AlignLeft}
	contentPageNumber = textStyle{Box{8.8, 6.9, 1.0, 0.4}, Font{Size: 12, Color: ColorFooter}, AlignRight}
)

// Image row geometry.
const (
	imageX    = 6.8
	imageY    = 0.2
	imageSize = 0.9
	imageStep = 1.0
)

// Assemble lays out every slide of the sequence. background is inline encoded
// backdrop placed beneath everything else on every page. Never fails for a
// structurally valid record: absent optional fields are simply not rendered.
func Assemble(seq slide.Sequence, meta Metadata, background string) Document {
	doc := Document{
		ID:     uuid.NewSHA1(documentNamespace, []byte(meta.Title)),
		Meta:   meta,
		Width:  CanvasWidth,
		Height: CanvasHeight,
		Pages:  make([]Page, 0, len(seq)),
	}
	for i, rec := range seq {
		doc.Pages = append(doc.Pages, assemblePage(i+1, rec, background))
	}
	return doc
}

func assemblePage(ordinal int, rec slide.Record, background string) Page {
	page := Page{
		Ordinal:    ordinal,
		SlideID:    rec.ID,
		Type:       rec.Type,
		Layout:     rec.Layout,
		Primitives: []Primitive{backgroundPrimitive(background)},
	}

	switch rec.Type {
	case common.SlideTypeTitle:
		page.add(text(RoleTitle, titleSlideTitle, rec.Title))
		if len(rec.Subtitle) > 0 {
			page.add(text(RoleSubtitle, titleSlideSubtitle, rec.Subtitle))
		}
		page.add(text(RoleCaption, titleSlideCaption, Caption))
	case common.SlideTypeClosing:
		page.add(text(RoleTitle, closingTitle, rec.Title))
		if len(rec.Subtitle) > 0 {
			page.add(text(RoleSubtitle, closingSubtitle, rec.Subtitle))
		}
	default:
		page.add(text(RoleTitle, contentTitle, rec.Title))
		for i, point := range rec.Content[:min(len(rec.Content), MaxLines)] {
			style := contentBullet
			style.box.Y += float64(i) * contentBullet.box.H
			page.add(text(RoleBullet, style, BulletPrefix+point))
		}
		page.add(text(RolePageNumber, contentPageNumber, strconv.Itoa(ordinal)))
	}

	for i, img := range rec.Images {
		page.add(Primitive{
			Kind:  KindImage,
			Role:  RoleImage,
			Box:   Box{X: imageX + float64(i)*imageStep, Y: imageY, W: imageSize, H: imageSize},
			Image: img,
		})
	}
	return page
}

func (p *Page) add(prim Primitive) {
	p.Primitives = append(p.Primitives, prim)
}

func backgroundPrimitive(img string) Primitive {
	return Primitive{
		Kind:  KindBackground,
		Role:  RoleBackground,
		Box:   Box{W: CanvasWidth, H: CanvasHeight},
		Image: img,
	}
}

func text(role Role, style textStyle, value string) Primitive {
	return Primitive{
		Kind:  KindText,
		Role:  role,
		Box:   style.box,
		Text:  value,
		Font:  style.font,
		Align: style.align,
	}
}

// ByRole returns primitives of the page having requested role in page order.
func (p Page) ByRole(role Role) []Primitive {
	var out []Primitive
	for _, prim := range p.Primitives {
		if prim.Role == role {
			out = append(out, prim)
		}
	}
	return out
}
