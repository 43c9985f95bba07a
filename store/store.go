// Package store keeps slides of the active session. The whole sequence is
// always swapped at once, readers never observe partially updated list.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"pptgen/slide"
)

// ErrGenerationInProgress is returned when generation is requested while
// another one has not finished yet.
var ErrGenerationInProgress = errors.New("presentation generation is already in progress")

// Generator produces full slide sequence for the topic.
type Generator interface {
	Generate(ctx context.Context, topic, requirements string) ([]slide.Record, error)
}

// GeneratorFunc adapts ordinary function to Generator.
type GeneratorFunc func(ctx context.Context, topic, requirements string) ([]slide.Record, error)

func (f GeneratorFunc) Generate(ctx context.Context, topic, requirements string) ([]slide.Record, error) {
	return f(ctx, topic, requirements)
}

// Store holds exactly one presentation.
type Store struct {
	log *zap.Logger

	mu   sync.RWMutex
	pres slide.Presentation

	generating atomic.Bool
}

func New(log *zap.Logger) *Store {
	return &Store{log: log.Named("store")}
}

// Snapshot returns deep copy of the current presentation.
func (s *Store) Snapshot() slide.Presentation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pres.Clone()
}

// Slides returns deep copy of the current slide sequence.
func (s *Store) Slides() slide.Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pres.Slides.Clone()
}

// Replace swaps the whole presentation. Malformed records are rejected and
// the current presentation is kept.
func (s *Store) Replace(p slide.Presentation) error {
	seq, err := ingest(p.Slides)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pres = slide.Presentation{Topic: p.Topic, Slides: seq}
	s.log.Debug("Presentation replaced", zap.String("topic", p.Topic), zap.Int("slides", len(seq)))
	return nil
}

// Update performs read-modify-write of the slide sequence. fn receives copy
// of the current sequence and returns complete new one, which is validated and
// swapped in. When fn fails nothing changes.
func (s *Store) Update(fn func(slide.Sequence) (slide.Sequence, error)) (slide.Presentation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.pres.Slides.Clone())
	if err != nil {
		return s.pres.Clone(), err
	}
	if next, err = ingest(next); err != nil {
		return s.pres.Clone(), err
	}
	s.pres.Slides = next
	return s.pres.Clone(), nil
}

// Generate awaits the generator and adopts its result. Empty result or any
// generator error leaves current presentation unchanged. Overlapping calls are
// rejected rather than queued.
func (s *Store) Generate(ctx context.Context, g Generator, topic, requirements string) error {
	if !s.generating.CompareAndSwap(false, true) {
		return ErrGenerationInProgress
	}
	defer s.generating.Store(false)

	s.log.Debug("Generating presentation", zap.String("topic", topic), zap.String("requirements", requirements))

	records, err := g.Generate(ctx, topic, requirements)
	if err != nil {
		return fmt.Errorf("%w: %w", slide.ErrGenerationFailed, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: generator produced no slides", slide.ErrGenerationFailed)
	}
	if err := s.Replace(slide.Presentation{Topic: topic, Slides: records}); err != nil {
		return fmt.Errorf("%w: %w", slide.ErrGenerationFailed, err)
	}

	s.log.Info("Presentation generated", zap.String("topic", topic), zap.Int("slides", len(records)))
	return nil
}

func ingest(seq slide.Sequence) (slide.Sequence, error) {
	seq = seq.Normalize()
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	return seq, nil
}
