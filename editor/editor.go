// Package editor implements interactive slide editing. At most one slide is
// edited at any time: the editor is either Idle or Editing a single draft,
// which is a detached copy of the committed slide.
package editor

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"pptgen/common"
	"pptgen/slide"
	"pptgen/store"
)

// DefaultContentPoint is the text of a newly added content point.
const DefaultContentPoint = "New point"

var (
	ErrEditInProgress  = errors.New("another slide is being edited")
	ErrDraftClosed     = errors.New("draft is closed")
	ErrIndexOutOfRange = errors.New("content point index out of range")
)

// State of the editor.
type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Editor is the single entry point for slide modifications made by user.
type Editor struct {
	log *zap.Logger
	st  *store.Store

	mu    sync.Mutex
	draft *Draft
}

func New(st *store.Store, log *zap.Logger) *Editor {
	return &Editor{st: st, log: log.Named("editor")}
}

// State returns current state and id of the slide being edited (-1 when
// Idle).
func (e *Editor) State() (State, int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return Idle, -1
	}
	return Editing, e.draft.rec.ID
}

// Begin opens draft for the slide. Open draft must be committed or canceled
// before next one could be started.
func (e *Editor) Begin(id int) (*Draft, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft != nil {
		return nil, fmt.Errorf("slide %d: %w", e.draft.rec.ID, ErrEditInProgress)
	}
	rec, err := e.st.Slides().Find(id)
	if err != nil {
		return nil, err
	}
	e.draft = &Draft{ed: e, rec: rec}
	e.log.Debug("Editing started", zap.Int("id", id))
	return e.draft, nil
}

// Delete removes slide from the committed sequence. Only possible when no
// draft is open.
func (e *Editor) Delete(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft != nil {
		return fmt.Errorf("slide %d: %w", e.draft.rec.ID, ErrEditInProgress)
	}
	if _, err := e.st.Update(func(seq slide.Sequence) (slide.Sequence, error) {
		return seq.DeleteByID(id)
	}); err != nil {
		return err
	}
	e.log.Debug("Slide deleted", zap.Int("id", id))
	return nil
}

// Draft is a working copy of a single slide. Changes are not visible until
// committed.
type Draft struct {
	ed  *Editor
	rec slide.Record
}

// ID returns id of the slide being edited.
func (d *Draft) ID() int {
	return d.rec.ID
}

// Record returns copy of the draft.
func (d *Draft) Record() slide.Record {
	d.ed.mu.Lock()
	defer d.ed.mu.Unlock()
	return d.rec.Clone()
}

// modify runs fn against the draft if it is still open.
func (d *Draft) modify(fn func(rec *slide.Record) error) error {
	d.ed.mu.Lock()
	defer d.ed.mu.Unlock()

	if d.ed.draft != d {
		return fmt.Errorf("slide %d: %w", d.rec.ID, ErrDraftClosed)
	}
	return fn(&d.rec)
}

// UpdateField sets single text field of the draft.
func (d *Draft) UpdateField(field common.DraftField, value string) error {
	return d.modify(func(rec *slide.Record) error {
		switch field {
		case common.DraftFieldTitle:
			rec.Title = value
		case common.DraftFieldSubtitle:
			rec.Subtitle = value
		case common.DraftFieldLayout:
			rec.Layout = value
		case common.DraftFieldType:
			t, err := common.ParseSlideType(value)
			if err != nil {
				return err
			}
			rec.Type = t
		default:
			return fmt.Errorf("unable to update field: %w", common.ErrInvalidDraftField)
		}
		return nil
	})
}

// AddContentPoint appends DefaultContentPoint to the draft content.
func (d *Draft) AddContentPoint() error {
	return d.modify(func(rec *slide.Record) error {
		rec.Content = append(slices.Clip(rec.Content), DefaultContentPoint)
		return nil
	})
}

// UpdateContentPoint replaces text of the content point.
func (d *Draft) UpdateContentPoint(index int, value string) error {
	return d.modify(func(rec *slide.Record) error {
		if index < 0 || index >= len(rec.Content) {
			return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(rec.Content))
		}
		rec.Content[index] = value
		return nil
	})
}

// RemoveContentPoint removes content point keeping order of the rest.
func (d *Draft) RemoveContentPoint(index int) error {
	return d.modify(func(rec *slide.Record) error {
		if index < 0 || index >= len(rec.Content) {
			return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(rec.Content))
		}
		rec.Content = slices.Delete(slices.Clone(rec.Content), index, index+1)
		return nil
	})
}

// Commit replaces committed slide with the draft keeping its position in the
// sequence and returns editor to Idle. Images are owned by the attachment
// pipeline, so committed slide keeps images it has at the moment of commit.
//
// If the slide has vanished, draft is discarded and slide.ErrNotFound is
// returned. If draft is malformed it stays open, so it could be corrected.
func (d *Draft) Commit() error {
	d.ed.mu.Lock()
	defer d.ed.mu.Unlock()

	if d.ed.draft != d {
		return fmt.Errorf("slide %d: %w", d.rec.ID, ErrDraftClosed)
	}

	_, err := d.ed.st.Update(func(seq slide.Sequence) (slide.Sequence, error) {
		committed, err := seq.Find(d.rec.ID)
		if err != nil {
			return nil, err
		}
		rec := d.rec.Clone()
		rec.Images = committed.Images
		return seq.ReplaceByID(rec)
	})
	switch {
	case err == nil:
		d.ed.log.Debug("Draft committed", zap.Int("id", d.rec.ID))
	case errors.Is(err, slide.ErrNotFound):
		d.ed.log.Debug("Draft discarded, slide is gone", zap.Int("id", d.rec.ID))
	default:
		return err
	}
	d.ed.draft = nil
	return err
}

// Cancel discards the draft, committed sequence is not changed.
func (d *Draft) Cancel() error {
	d.ed.mu.Lock()
	defer d.ed.mu.Unlock()

	if d.ed.draft != d {
		return fmt.Errorf("slide %d: %w", d.rec.ID, ErrDraftClosed)
	}
	d.ed.draft = nil
	d.ed.log.Debug("Draft canceled", zap.Int("id", d.rec.ID))
	return nil
}
