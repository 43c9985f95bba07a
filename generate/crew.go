// Package generate produces initial slide content for a topic. The producer
// runs four stages (research, analysis, organization and design), each stage
// is a plain function over the playbook and results of previous stages.
package generate

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"go.uber.org/zap"

	"pptgen/config"
	"pptgen/slide"
)

var ErrBlankTopic = errors.New("topic is blank")

// Findings are named lists of statements produced by research and analysis.
type Findings map[string][]string

// Crew is content generator driven by playbook.
type Crew struct {
	log *zap.Logger
	pb  *Playbook
}

// New creates crew using given playbook.
func New(pb *Playbook, log *zap.Logger) *Crew {
	return &Crew{log: log.Named("generate"), pb: pb}
}

// FromConfig creates crew with playbook selected by configuration.
func FromConfig(cfg *config.GeneratorConfig, log *zap.Logger) (*Crew, error) {
	pb, err := LoadPlaybook(cfg.PlaybookPath)
	if err != nil {
		return nil, err
	}
	return New(pb, log), nil
}

// Generate produces slide records for topic. Requirements are optional and
// add a dedicated slide when present.
func (c *Crew) Generate(ctx context.Context, topic, requirements string) ([]slide.Record, error) {
	topic, requirements = strings.TrimSpace(topic), strings.TrimSpace(requirements)
	if len(topic) == 0 {
		return nil, ErrBlankTopic
	}

	x := newExpander(Values{Topic: topic, Requirements: requirements})

	c.announce(x, c.pb.Research.Agent)
	found := research(x, c.pb.Research)
	if err := checkpoint(ctx, x, "research"); err != nil {
		return nil, err
	}

	c.announce(x, c.pb.Analysis.Agent)
	maps.Copy(found, analyze(x, c.pb.Analysis))
	if err := checkpoint(ctx, x, "analysis"); err != nil {
		return nil, err
	}

	c.announce(x, c.pb.Organization.Agent)
	seq := organize(x, c.pb.Organization, found, len(requirements) > 0)
	if err := checkpoint(ctx, x, "organization"); err != nil {
		return nil, err
	}

	c.announce(x, c.pb.Design.Agent)
	seq, err := design(seq)
	if err != nil {
		return nil, fmt.Errorf("design stage: %w", err)
	}

	c.log.Info("Content generated", zap.String("topic", topic), zap.Int("slides", len(seq)))
	return seq, nil
}

func (c *Crew) announce(x *expander, a Agent) {
	if ce := c.log.Check(zap.DebugLevel, "Stage started"); ce != nil {
		ce.Write(zap.String("role", a.Role), zap.String("goal", a.Goal), zap.String("task", x.expand(a.Task)))
	}
}

func checkpoint(ctx context.Context, x *expander, stage string) error {
	if x.err != nil {
		return fmt.Errorf("%s stage: %w", stage, x.err)
	}
	return ctx.Err()
}

func expandFindings(x *expander, in map[string][]string) Findings {
	out := make(Findings, len(in))
	for name, list := range in {
		out[name] = x.expandAll(list)
	}
	return out
}

func research(x *expander, st Stage) Findings {
	return expandFindings(x, st.Findings)
}

func analyze(x *expander, st Stage) Findings {
	return expandFindings(x, st.Findings)
}

func organize(x *expander, st OrganizationStage, found Findings, haveRequirements bool) slide.Sequence {
	seq := make(slide.Sequence, 0, len(st.Slides))
	for _, spec := range st.Slides {
		if spec.RequiresRequirements && !haveRequirements {
			continue
		}
		rec := slide.Record{
			ID:         len(seq),
			Title:      x.expand(spec.Title),
			Subtitle:   x.expand(spec.Subtitle),
			Type:       spec.Type,
			Layout:     spec.Layout,
			Provenance: spec.Provenance,
			Content:    []string{},
		}
		for _, b := range spec.Content {
			if len(b.From) == 0 {
				rec.Content = append(rec.Content, x.expand(b.Text))
				continue
			}
			list := found[b.From]
			if b.Limit > 0 {
				list = list[:min(b.Limit, len(list))]
			}
			rec.Content = append(rec.Content, list...)
		}
		seq = append(seq, rec)
	}
	return seq
}

// design finalizes sequence: records are normalized and checked the same way
// store will check them on ingestion.
func design(seq slide.Sequence) (slide.Sequence, error) {
	if len(seq) == 0 {
		return nil, errors.New("no slides organized")
	}
	seq = seq.Normalize()
	for i := range seq {
		if !seq[i].Type.HasBody() && len(seq[i].Layout) == 0 {
			seq[i].Layout = slide.LayoutTitle
		}
	}
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	return seq, nil
}
