package layout

import (
	"pptgen/utils/debug"
)

// imageDumpLimit is how much of inline image is shown in dumps.
const imageDumpLimit = 48

// Dump returns readable tree of the assembled document for debug report.
func (d Document) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "document id=%s canvas=%gx%g pages=%d", d.ID, d.Width, d.Height, len(d.Pages))
	tw.TextBlock(1, "title", d.Meta.Title)
	tw.TextBlock(1, "author", d.Meta.Author)
	tw.TextBlock(1, "company", d.Meta.Company)
	tw.TextBlock(1, "subject", d.Meta.Subject)
	for _, p := range d.Pages {
		tw.Line(1, "page %d slide=%d type=%s layout=%s", p.Ordinal, p.SlideID, p.Type, p.Layout)
		for _, prim := range p.Primitives {
			b := prim.Box
			tw.Line(2, "%s %s at (%g, %g) size %gx%g", prim.Kind, prim.Role, b.X, b.Y, b.W, b.H)
			switch prim.Kind {
			case KindText:
				tw.Line(3, "font size=%g bold=%t italic=%t color=%s align=%s",
					prim.Font.Size, prim.Font.Bold, prim.Font.Italic, prim.Font.Color, prim.Align)
				tw.TextBlock(3, "text", prim.Text)
			default:
				tw.Elided(3, "image", prim.Image, imageDumpLimit)
			}
		}
	}
	return tw.String()
}
