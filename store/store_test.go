package store

import (
	"context"
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"

	"pptgen/common"
	"pptgen/slide"
)

func records() []slide.Record {
	return []slide.Record{
		{ID: 0, Title: "Topic", Subtitle: "Sub", Type: common.SlideTypeTitle, Layout: slide.LayoutTitle},
		{ID: 1, Title: "Summary", Type: common.SlideTypeContent, Layout: slide.LayoutContent, Content: []string{"a", "b"}},
		{ID: 2, Title: "End", Type: common.SlideTypeClosing, Layout: slide.LayoutTitle},
	}
}

func fixed(recs []slide.Record, err error) GeneratorFunc {
	return func(context.Context, string, string) ([]slide.Record, error) {
		return recs, err
	}
}

func TestGenerate(t *testing.T) {
	st := New(zaptest.NewLogger(t))
	if err := st.Generate(context.Background(), fixed(records(), nil), "Topic", ""); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	p := st.Snapshot()
	if p.Topic != "Topic" {
		t.Errorf("Topic = %q", p.Topic)
	}
	if !slices.Equal(p.Slides.IDs(), []int{0, 1, 2}) {
		t.Errorf("ids = %v", p.Slides.IDs())
	}
}

func TestGenerate_FailureKeepsPreviousSequence(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
	}{
		{name: "empty", gen: fixed([]slide.Record{}, nil)},
		{name: "nil", gen: fixed(nil, nil)},
		{name: "rejected", gen: fixed(nil, errors.New("boom"))},
		{name: "malformed", gen: fixed([]slide.Record{{ID: 0, Type: common.SlideTypeContent}}, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := New(zaptest.NewLogger(t))
			if err := st.Replace(slide.Presentation{Topic: "Before", Slides: records()}); err != nil {
				t.Fatal(err)
			}

			err := st.Generate(context.Background(), tt.gen, "After", "")
			if !errors.Is(err, slide.ErrGenerationFailed) {
				t.Fatalf("Generate() error = %v, want ErrGenerationFailed", err)
			}
			p := st.Snapshot()
			if p.Topic != "Before" || len(p.Slides) != 3 {
				t.Errorf("presentation changed after failure: %q, %d slides", p.Topic, len(p.Slides))
			}
		})
	}
}

func TestGenerate_OverlapRejected(t *testing.T) {
	st := New(zaptest.NewLogger(t))

	started, release := make(chan struct{}), make(chan struct{})
	blocking := GeneratorFunc(func(context.Context, string, string) ([]slide.Record, error) {
		close(started)
		<-release
		return records(), nil
	})

	done := make(chan error, 1)
	go func() {
		done <- st.Generate(context.Background(), blocking, "First", "")
	}()
	<-started

	if err := st.Generate(context.Background(), fixed(records(), nil), "Second", ""); !errors.Is(err, ErrGenerationInProgress) {
		t.Errorf("overlapping Generate() error = %v, want ErrGenerationInProgress", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	if got := st.Snapshot().Topic; got != "First" {
		t.Errorf("Topic = %q, want First", got)
	}

	// guard is released after completion
	if err := st.Generate(context.Background(), fixed(records(), nil), "Third", ""); err != nil {
		t.Errorf("Generate() after completion error = %v", err)
	}
}

func TestReplace_RejectsMalformed(t *testing.T) {
	st := New(zaptest.NewLogger(t))
	if err := st.Replace(slide.Presentation{Topic: "ok", Slides: records()}); err != nil {
		t.Fatal(err)
	}

	bad := records()
	bad[1].ID = 0
	if err := st.Replace(slide.Presentation{Topic: "bad", Slides: bad}); !errors.Is(err, slide.ErrInvalidRecord) {
		t.Fatalf("Replace() error = %v, want ErrInvalidRecord", err)
	}
	if st.Snapshot().Topic != "ok" {
		t.Error("presentation replaced by malformed one")
	}
}

func TestUpdate(t *testing.T) {
	st := New(zaptest.NewLogger(t))
	if err := st.Replace(slide.Presentation{Topic: "t", Slides: records()}); err != nil {
		t.Fatal(err)
	}

	p, err := st.Update(func(seq slide.Sequence) (slide.Sequence, error) {
		return seq.DeleteByID(1)
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !slices.Equal(p.Slides.IDs(), []int{0, 2}) {
		t.Errorf("ids = %v", p.Slides.IDs())
	}

	_, err = st.Update(func(seq slide.Sequence) (slide.Sequence, error) {
		return seq.DeleteByID(1)
	})
	if !errors.Is(err, slide.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}

	_, err = st.Update(func(seq slide.Sequence) (slide.Sequence, error) {
		seq[0].Title = ""
		return seq, nil
	})
	if !errors.Is(err, slide.ErrInvalidRecord) {
		t.Errorf("Update() error = %v, want ErrInvalidRecord", err)
	}
	if st.Slides()[0].Title != "Topic" {
		t.Error("invalid update was applied")
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	st := New(zaptest.NewLogger(t))
	if err := st.Replace(slide.Presentation{Topic: "t", Slides: records()}); err != nil {
		t.Fatal(err)
	}
	p := st.Snapshot()
	p.Slides[1].Content[0] = "changed"
	if st.Slides()[1].Content[0] != "a" {
		t.Error("snapshot shares content with store")
	}
}
