package slide

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/text/unicode/norm"

	"pptgen/common"
)

// Validate checks single record. Type specific rules: content slides have no
// subtitle, every slide must have a title.
func (r Record) Validate() error {
	if err := r.problems(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

func (r Record) problems() error {
	var err error
	if !r.Type.IsValid() {
		err = multierr.Append(err, fmt.Errorf("slide %d: unknown type '%s'", r.ID, r.Type))
	}
	if len(strings.TrimSpace(r.Title)) == 0 {
		err = multierr.Append(err, fmt.Errorf("slide %d: title is required", r.ID))
	}
	if r.Type == common.SlideTypeContent && len(r.Subtitle) > 0 {
		err = multierr.Append(err, fmt.Errorf("slide %d: content slides do not have subtitle", r.ID))
	}
	for i, img := range r.Images {
		if !IsInlineImage(img) {
			err = multierr.Append(err, fmt.Errorf("slide %d: image %d is not inline encoded", r.ID, i))
		}
	}
	return err
}

// Validate checks all records and ids uniqueness. All problems are reported
// together.
func (s Sequence) Validate() error {
	var err error
	seen := make(map[int]struct{}, len(s))
	for _, r := range s {
		if _, dup := seen[r.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("slide %d: duplicate id", r.ID))
		}
		seen[r.ID] = struct{}{}
		err = multierr.Append(err, r.problems())
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

// Normalize returns record with text in canonical (NFC) form and surrounding
// blanks removed from title and subtitle.
func (r Record) Normalize() Record {
	r = r.Clone()
	r.Title = norm.NFC.String(strings.TrimSpace(r.Title))
	r.Subtitle = norm.NFC.String(strings.TrimSpace(r.Subtitle))
	r.Layout = strings.TrimSpace(r.Layout)
	for i := range r.Content {
		r.Content[i] = norm.NFC.String(r.Content[i])
	}
	if r.Content == nil {
		r.Content = []string{}
	}
	return r
}

// Normalize returns normalized copy of the sequence.
func (s Sequence) Normalize() Sequence {
	out := make(Sequence, len(s))
	for i := range s {
		out[i] = s[i].Normalize()
	}
	return out
}
