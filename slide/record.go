// Package slide defines slide records and pure whole-sequence transformations
// over them. Nothing here mutates its input: every transformation returns a
// new sequence which could be swapped in by the owner.
package slide

import (
	"fmt"
	"slices"

	"pptgen/common"
)

// Layout hints produced by the generator. Layout is informational and never
// changes geometry, so any other value is accepted as well.
const (
	LayoutTitle            = "title"
	LayoutContent          = "content"
	LayoutContentWithImage = "content_with_image"
)

// Record is a single slide of the presentation.
type Record struct {
	ID         int              `yaml:"id" json:"id"`
	Title      string           `yaml:"title" json:"title"`
	Subtitle   string           `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Content    []string         `yaml:"content" json:"content"`
	Type       common.SlideType `yaml:"type" json:"type"`
	Layout     string           `yaml:"layout" json:"layout"`
	Images     []string         `yaml:"images,omitempty" json:"images,omitempty"`
	Provenance string           `yaml:"provenance,omitempty" json:"provenance,omitempty"`
}

// Clone returns deep copy of the record.
func (r Record) Clone() Record {
	r.Content = slices.Clone(r.Content)
	r.Images = slices.Clone(r.Images)
	return r
}

// Sequence is an ordered list of slides. Rendering order is slice order, ids
// are used for addressing only.
type Sequence []Record

// Clone returns deep copy of the sequence.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	for i := range s {
		out[i] = s[i].Clone()
	}
	return out
}

// Index returns position of the slide with requested id or -1.
func (s Sequence) Index(id int) int {
	return slices.IndexFunc(s, func(r Record) bool { return r.ID == id })
}

// Find returns deep copy of the slide with requested id.
func (s Sequence) Find(id int) (Record, error) {
	i := s.Index(id)
	if i < 0 {
		return Record{}, fmt.Errorf("slide %d: %w", id, ErrNotFound)
	}
	return s[i].Clone(), nil
}

// IDs returns slide ids in rendering order.
func (s Sequence) IDs() []int {
	ids := make([]int, 0, len(s))
	for _, r := range s {
		ids = append(ids, r.ID)
	}
	return ids
}

// NextID returns id which is guaranteed not to be used by any slide in the
// sequence.
func (s Sequence) NextID() int {
	next := 0
	for _, r := range s {
		next = max(next, r.ID+1)
	}
	return next
}

// ReplaceByID returns new sequence where slide with rec.ID is substituted by
// rec at the same position.
func (s Sequence) ReplaceByID(rec Record) (Sequence, error) {
	i := s.Index(rec.ID)
	if i < 0 {
		return s, fmt.Errorf("slide %d: %w", rec.ID, ErrNotFound)
	}
	out := slices.Clone(s)
	out[i] = rec.Clone()
	return out, nil
}

// DeleteByID returns new sequence without the slide with requested id,
// relative order of the rest is kept. Remaining ids are never changed.
func (s Sequence) DeleteByID(id int) (Sequence, error) {
	i := s.Index(id)
	if i < 0 {
		return s, fmt.Errorf("slide %d: %w", id, ErrNotFound)
	}
	out := make(Sequence, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...), nil
}

// AppendImage returns new sequence where the image is added to the end of the
// requested slide's image list. The list of the target slide is always a new
// slice, other slides are shared with the source.
func (s Sequence) AppendImage(id int, img string) (Sequence, error) {
	i := s.Index(id)
	if i < 0 {
		return s, fmt.Errorf("slide %d: %w", id, ErrNotFound)
	}
	out := slices.Clone(s)
	images := make([]string, 0, len(s[i].Images)+1)
	images = append(images, s[i].Images...)
	out[i].Images = append(images, img)
	return out, nil
}

// Presentation is the session document: a topic and its slides.
type Presentation struct {
	Topic  string   `yaml:"topic" json:"topic"`
	Slides Sequence `yaml:"slides" json:"slides"`
}

// Clone returns deep copy of the presentation.
func (p Presentation) Clone() Presentation {
	p.Slides = p.Slides.Clone()
	return p
}
