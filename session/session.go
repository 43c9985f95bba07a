// Package session ties slide store, editor, image pipeline, layout and emitter
// together for a single in-memory editing session.
package session

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"pptgen/attach"
	"pptgen/config"
	"pptgen/editor"
	"pptgen/layout"
	"pptgen/pptx"
	"pptgen/slide"
	"pptgen/store"
)

// layoutTTL is how long assembled documents are kept for reuse.
const layoutTTL = 10 * time.Minute

// Session owns presentation being worked on.
type Session struct {
	log *zap.Logger
	cfg *config.DocumentConfig

	Store  *store.Store
	Editor *editor.Editor
	Images *attach.Pipeline

	gen        store.Generator
	layouts    *layout.Cache
	background string
}

// New creates empty session. Generator is used to produce initial content.
func New(cfg *config.DocumentConfig, gen store.Generator, log *zap.Logger) *Session {
	st := store.New(log)
	return &Session{
		log:     log.Named("session"),
		cfg:     cfg,
		Store:   st,
		Editor:  editor.New(st, log),
		Images:  attach.New(&cfg.Images, log),
		gen:     gen,
		layouts: layout.NewCache(layoutTTL),
	}
}

// LoadBackground prepares slide backdrop: file named in configuration if
// any, otherwise provided default image.
func (s *Session) LoadBackground(ctx context.Context, fallback []byte) error {
	var (
		img string
		err error
	)
	if len(s.cfg.BackgroundPath) > 0 {
		img, err = s.Images.EncodeFile(ctx, s.cfg.BackgroundPath)
	} else {
		img, err = s.Images.Encode(ctx, bytes.NewReader(fallback))
	}
	if err != nil {
		return fmt.Errorf("unable to load slide background: %w", err)
	}
	s.background = img
	return nil
}

// Generate replaces presentation with freshly generated one.
func (s *Session) Generate(ctx context.Context, topic, requirements string) error {
	return s.Store.Generate(ctx, s.gen, topic, requirements)
}

// Metadata returns document properties for the current presentation.
func (s *Session) Metadata() layout.Metadata {
	pres := s.Store.Snapshot()
	meta := layout.Metadata{
		Author:  s.cfg.Author,
		Company: s.cfg.Company,
		Title:   pres.Topic,
	}
	if len(s.cfg.SubjectTemplate) > 0 {
		subject, err := pptx.ExpandTemplate(config.SubjectTemplateFieldName, s.cfg.SubjectTemplate,
			pptx.NewValues(config.SubjectTemplateFieldName, pres, s.cfg))
		if err != nil {
			s.log.Warn("Unable to prepare document subject", zap.Error(err))
		} else {
			meta.Subject = strings.TrimSpace(subject)
		}
	}
	return meta
}

// Assemble lays out current presentation.
func (s *Session) Assemble() layout.Document {
	doc, hit := s.layouts.Assemble(s.Store.Slides(), s.Metadata(), s.background)
	s.log.Debug("Presentation assembled", zap.Int("pages", len(doc.Pages)), zap.Bool("cached", hit))
	return doc
}

// Build assembles presentation and maps it onto document.
func (s *Session) Build() (*pptx.Deck, error) {
	if len(s.Store.Slides()) == 0 {
		return nil, fmt.Errorf("%w: presentation is empty", slide.ErrEmission)
	}
	return pptx.Build(s.Assemble(), s.log)
}

// OutputName returns file name presentation will be saved under.
func (s *Session) OutputName() string {
	return pptx.OutputName(s.Store.Snapshot(), s.cfg, s.log)
}

// Emit writes presentation into directory dir and returns full path of the
// produced file. Nothing is left behind on failure.
func (s *Session) Emit(ctx context.Context, dir string) (string, *pptx.Deck, error) {
	deck, err := s.Build()
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, s.OutputName())
	if err := deck.WriteTo(ctx, path); err != nil {
		return "", nil, err
	}
	return path, deck, nil
}

// Dump returns current slide records as YAML for debug report.
func (s *Session) Dump() ([]byte, error) {
	pres := s.Store.Snapshot()
	for i := range pres.Slides {
		// inline images only bloat the report
		for j, img := range pres.Slides[i].Images {
			if len(img) > 64 {
				pres.Slides[i].Images[j] = fmt.Sprintf("%s... (%d bytes)", img[:64], len(img))
			}
		}
	}
	data, err := yaml.Marshal(pres)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal slides: %w", err)
	}
	return data, nil
}
