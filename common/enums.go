// Package common keeps enumerations shared by the slide model, the editor and
// edit scripts. Keeping them apart avoids import cycles between slide, editor
// and session.
package common

//go:generate go tool go-enum --marshal --names

// Kind of a slide, drives layout rules.
// ENUM(title, content, closing)
type SlideType string

// Draft field which could be changed by the editor.
// ENUM(title, subtitle, layout, type)
type DraftField string

// Edit script operation.
// ENUM(edit, delete, attach)
type EditOp string

// HasBody reports whether slides of this type render content points.
func (t SlideType) HasBody() bool {
	return t == SlideTypeContent
}
