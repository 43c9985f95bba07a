package pptx

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"pptgen/config"
	"pptgen/slide"
)

const (
	NameSuffix = "_Professional_Presentation"
	Extension  = ".pptx"
)

// whitespaceRun matches ECMAScript white space: ASCII spaces, vertical tab,
// Unicode separators and byte order mark.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)

// Sanitize replaces every whitespace run in topic with single underscore.
func Sanitize(topic string) string {
	return whitespaceRun.ReplaceAllString(topic, "_")
}

// FileName returns default file name of the presentation on the given topic.
func FileName(topic string) string {
	return config.CleanFileName(Sanitize(topic) + NameSuffix + Extension)
}

// Values are available to configurable name and subject templates.
type Values struct {
	Context   string
	Topic     string
	Sanitized string
	Author    string
	Company   string
	Slides    int
}

// NewValues prepares template values for presentation.
func NewValues(name config.TemplateFieldName, pres slide.Presentation, cfg *config.DocumentConfig) Values {
	return Values{
		Context:   string(name),
		Topic:     pres.Topic,
		Sanitized: Sanitize(pres.Topic),
		Author:    cfg.Author,
		Company:   cfg.Company,
		Slides:    len(pres.Slides),
	}
}

// ExpandTemplate executes configuration template field.
func ExpandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to execute template field %s: %w", name, err)
	}
	return buf.String(), nil
}

// OutputName returns file name for the presentation taking configuration into
// account. When name template is not set or could not be expanded default
// naming convention is used.
func OutputName(pres slide.Presentation, cfg *config.DocumentConfig, log *zap.Logger) string {
	name := Sanitize(pres.Topic) + NameSuffix
	if len(cfg.OutputNameTemplate) > 0 {
		expanded, err := ExpandTemplate(config.OutputNameTemplateFieldName, cfg.OutputNameTemplate, NewValues(config.OutputNameTemplateFieldName, pres, cfg))
		switch {
		case err != nil:
			log.Warn("Unable to prepare output file name, using default", zap.Error(err))
		case len(strings.TrimSpace(expanded)) == 0:
			log.Warn("Output file name template expanded to nothing, using default")
		default:
			name = strings.TrimSuffix(strings.TrimSpace(expanded), Extension)
		}
	}
	if cfg.FileNameTransliterate {
		name = slug.Make(name)
	}
	return config.CleanFileName(name + Extension)
}
