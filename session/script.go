package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"pptgen/common"
	"pptgen/editor"
)

// Step is a single scripted user action.
//
// For edit steps fields are applied first, then content points are updated,
// removed and finally added. Indexes in update_points and remove_points refer
// to content as it was before the step.
type Step struct {
	// Op defaults to edit when omitted.
	Op       common.EditOp `yaml:"op,omitempty"`
	ID       int           `yaml:"id"`
	Title    *string       `yaml:"title,omitempty"`
	Subtitle *string       `yaml:"subtitle,omitempty"`
	Layout   *string       `yaml:"layout,omitempty"`
	Type     *string       `yaml:"type,omitempty"`

	AddPoints    []string       `yaml:"add_points,omitempty"`
	UpdatePoints map[int]string `yaml:"update_points,omitempty"`
	RemovePoints []int          `yaml:"remove_points,omitempty"`

	// File is image to attach. Relative paths are resolved against script
	// location.
	File string `yaml:"file,omitempty"`
}

// Script is ordered list of steps.
type Script struct {
	Steps []Step `yaml:"steps"`

	dir string
}

// ParseScript decodes edit script. Relative file references are resolved
// against dir.
func ParseScript(r io.Reader, dir string) (*Script, error) {
	s := &Script{dir: dir}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to decode edit script: %w", err)
	}
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("bad edit script: %w", err)
	}
	return s, nil
}

// LoadScript reads edit script from file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read edit script: %w", err)
	}
	return ParseScript(bytes.NewReader(data), filepath.Dir(path))
}

func (s *Script) check() error {
	var errs error
	for i, st := range s.Steps {
		if len(st.Op) == 0 {
			st.Op = common.EditOpEdit
			s.Steps[i].Op = st.Op
		}
		if !st.Op.IsValid() {
			errs = multierr.Append(errs, fmt.Errorf("step %d: %w", i+1, common.ErrInvalidEditOp))
			continue
		}
		hasEdits := st.Title != nil || st.Subtitle != nil || st.Layout != nil || st.Type != nil ||
			len(st.AddPoints) > 0 || len(st.UpdatePoints) > 0 || len(st.RemovePoints) > 0
		switch st.Op {
		case common.EditOpAttach:
			if len(st.File) == 0 {
				errs = multierr.Append(errs, fmt.Errorf("step %d: attach requires file", i+1))
			}
			if hasEdits {
				errs = multierr.Append(errs, fmt.Errorf("step %d: attach does not change slide fields", i+1))
			}
		case common.EditOpDelete:
			if hasEdits || len(st.File) > 0 {
				errs = multierr.Append(errs, fmt.Errorf("step %d: delete takes only slide id", i+1))
			}
		case common.EditOpEdit:
			if len(st.File) > 0 {
				errs = multierr.Append(errs, fmt.Errorf("step %d: use attach step for images", i+1))
			}
		}
	}
	return errs
}

// Apply runs script steps in order stopping at the first failure. Steps
// applied before the failure stay in effect, failed edit is cancelled.
func (s *Session) Apply(ctx context.Context, script *Script) error {
	for i, st := range script.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.step(ctx, script, st); err != nil {
			return fmt.Errorf("step %d (%s slide %d): %w", i+1, st.Op, st.ID, err)
		}
		s.log.Debug("Edit step applied", zap.Int("step", i+1), zap.Stringer("op", st.Op), zap.Int("slide", st.ID))
	}
	return nil
}

func (s *Session) step(ctx context.Context, script *Script, st Step) error {
	switch st.Op {
	case common.EditOpDelete:
		return s.Editor.Delete(st.ID)
	case common.EditOpAttach:
		path := st.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(script.dir, path)
		}
		_, err := s.Images.AttachFile(ctx, s.Store, st.ID, path)
		return err
	default:
		return s.edit(st)
	}
}

func (s *Session) edit(st Step) (err error) {
	d, err := s.Editor.Begin(st.ID)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			// draft is either open or already closed, both are fine here
			_ = d.Cancel()
		}
	}()

	fields := []struct {
		field common.DraftField
		value *string
	}{
		{common.DraftFieldType, st.Type},
		{common.DraftFieldTitle, st.Title},
		{common.DraftFieldSubtitle, st.Subtitle},
		{common.DraftFieldLayout, st.Layout},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := d.UpdateField(f.field, *f.value); err != nil {
			return err
		}
	}

	for _, i := range slices.Sorted(maps.Keys(st.UpdatePoints)) {
		if err := d.UpdateContentPoint(i, st.UpdatePoints[i]); err != nil {
			return err
		}
	}

	remove := slices.Clone(st.RemovePoints)
	slices.Sort(remove)
	remove = slices.Compact(remove)
	for _, i := range slices.Backward(remove) {
		if err := d.RemoveContentPoint(i); err != nil {
			return err
		}
	}

	for _, p := range st.AddPoints {
		if err := addPoint(d, p); err != nil {
			return err
		}
	}
	return d.Commit()
}

func addPoint(d *editor.Draft, value string) error {
	if err := d.AddContentPoint(); err != nil {
		return err
	}
	return d.UpdateContentPoint(len(d.Record().Content)-1, value)
}
