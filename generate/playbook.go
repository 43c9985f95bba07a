package generate

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"pptgen/common"
)

//go:embed playbook.yaml
var defaultPlaybook []byte

type (
	// Agent describes who performs the stage. Used for progress reporting.
	Agent struct {
		Role string `yaml:"role"`
		Goal string `yaml:"goal"`
		Task string `yaml:"task"`
	}

	// Block produces one or more content points: either single text or
	// (possibly limited) list of named findings.
	Block struct {
		Text  string `yaml:"text,omitempty"`
		From  string `yaml:"from,omitempty"`
		Limit int    `yaml:"limit,omitempty"`
	}

	SlideSpec struct {
		Title    string           `yaml:"title"`
		Subtitle string           `yaml:"subtitle,omitempty"`
		Type     common.SlideType `yaml:"type"`
		Layout   string           `yaml:"layout"`
		// Provenance labels the stage which contributed the slide.
		Provenance string `yaml:"provenance,omitempty"`
		// RequiresRequirements drops the slide when no requirements were given.
		RequiresRequirements bool    `yaml:"requires_requirements,omitempty"`
		Content              []Block `yaml:"content"`
	}

	Stage struct {
		Agent    Agent               `yaml:"agent"`
		Findings map[string][]string `yaml:"findings,omitempty"`
	}

	OrganizationStage struct {
		Agent  Agent       `yaml:"agent"`
		Slides []SlideSpec `yaml:"slides"`
	}

	DesignStage struct {
		Agent Agent `yaml:"agent"`
	}

	// Playbook holds all text the generator produces. Every string is a
	// template expanded with Values.
	Playbook struct {
		Version      int               `yaml:"version"`
		Research     Stage             `yaml:"research"`
		Analysis     Stage             `yaml:"analysis"`
		Organization OrganizationStage `yaml:"organization"`
		Design       DesignStage       `yaml:"design"`
	}
)

// Values are available to every playbook template.
type Values struct {
	Topic        string
	Requirements string
}

// ParsePlaybook decodes and checks playbook.
func ParsePlaybook(data []byte) (*Playbook, error) {
	pb := &Playbook{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(pb); err != nil {
		return nil, fmt.Errorf("unable to decode playbook: %w", err)
	}
	if err := pb.check(); err != nil {
		return nil, fmt.Errorf("bad playbook: %w", err)
	}
	return pb, nil
}

// LoadPlaybook reads playbook from file, empty path selects built-in one.
func LoadPlaybook(path string) (*Playbook, error) {
	if len(path) == 0 {
		return ParsePlaybook(defaultPlaybook)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read playbook: %w", err)
	}
	return ParsePlaybook(data)
}

func (pb *Playbook) check() error {
	if pb.Version != 1 {
		return fmt.Errorf("unsupported version %d", pb.Version)
	}
	if len(pb.Organization.Slides) == 0 {
		return errors.New("no slides")
	}

	var errs error
	for i, s := range pb.Organization.Slides {
		if !s.Type.IsValid() {
			errs = multierr.Append(errs, fmt.Errorf("slide %d: %w", i, common.ErrInvalidSlideType))
		}
		if len(strings.TrimSpace(s.Title)) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("slide %d: no title", i))
		}
		for j, b := range s.Content {
			switch {
			case len(b.Text) > 0 && len(b.From) > 0:
				errs = multierr.Append(errs, fmt.Errorf("slide %d block %d: both text and from are set", i, j))
			case len(b.Text) == 0 && len(b.From) == 0:
				errs = multierr.Append(errs, fmt.Errorf("slide %d block %d: empty", i, j))
			case len(b.From) > 0 && !pb.hasFindings(b.From):
				errs = multierr.Append(errs, fmt.Errorf("slide %d block %d: unknown findings '%s'", i, j, b.From))
			case b.Limit < 0:
				errs = multierr.Append(errs, fmt.Errorf("slide %d block %d: negative limit", i, j))
			}
		}
	}
	return errs
}

func (pb *Playbook) hasFindings(name string) bool {
	if _, ok := pb.Research.Findings[name]; ok {
		return true
	}
	_, ok := pb.Analysis.Findings[name]
	return ok
}

func funcMap() template.FuncMap {
	fm := sprig.FuncMap()
	// sprig trunc works on bytes
	fm["truncRunes"] = func(n int, s string) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n])
	}
	return fm
}

// expander executes playbook templates remembering first failure, so stage
// code stays linear.
type expander struct {
	values Values
	funcs  template.FuncMap
	err    error
}

func newExpander(v Values) *expander {
	return &expander{values: v, funcs: funcMap()}
}

func (e *expander) expand(field string) string {
	if e.err != nil {
		return ""
	}
	tmpl, err := template.New("playbook").Funcs(e.funcs).Option("missingkey=error").Parse(field)
	if err != nil {
		e.err = fmt.Errorf("unable to parse template '%s': %w", field, err)
		return ""
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, e.values); err != nil {
		e.err = fmt.Errorf("unable to execute template '%s': %w", field, err)
		return ""
	}
	return buf.String()
}

func (e *expander) expandAll(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, e.expand(f))
	}
	return out
}
