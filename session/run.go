package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pptgen/generate"
	"pptgen/state"
)

// Options describes single non-interactive session.
type Options struct {
	Topic        string
	Requirements string
	// EditsPath is optional edit script applied after generation.
	EditsPath string
	// Destination is directory presentation is written to. When empty only
	// previews are produced.
	Destination string
	// PreviewDir is directory for slide thumbnails, empty means no previews.
	PreviewDir string
}

// Run is action for generate subcommand.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("run")

	opts := Options{
		Topic:        cmd.String("topic"),
		Requirements: cmd.String("requirements"),
		EditsPath:    cmd.String("edits"),
		PreviewDir:   cmd.String("preview"),
	}

	if opts.Destination, err = destination(cmd.Args().Get(0)); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	if len(opts.PreviewDir) > 0 {
		if opts.PreviewDir, err = filepath.Abs(opts.PreviewDir); err != nil {
			return err
		}
	}
	if author := cmd.String("author"); len(author) > 0 {
		env.Cfg.Document.Author = author
	}
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("topic", opts.Topic), zap.String("destination", opts.Destination))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	_, err = Process(ctx, env, opts)
	return err
}

// RunPreview is action for preview subcommand: presentation is generated and
// edited as usual, but only slide thumbnails are produced.
func RunPreview(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)

	opts := Options{
		Topic:        cmd.String("topic"),
		Requirements: cmd.String("requirements"),
		EditsPath:    cmd.String("edits"),
	}
	if opts.PreviewDir, err = destination(cmd.Args().Get(0)); err != nil {
		return err
	}
	env.Log.Named("run").Info("Rendering previews", zap.String("topic", opts.Topic), zap.String("destination", opts.PreviewDir))

	_, err = Process(ctx, env, opts)
	return err
}

func destination(dst string) (string, error) {
	var err error
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	return filepath.Abs(dst)
}

// Process runs whole session: generate, apply edits, assemble and emit. It
// returns path to produced presentation, if any.
func Process(ctx context.Context, env *state.LocalEnv, opts Options) (string, error) {
	if len(strings.TrimSpace(opts.Topic)) == 0 {
		return "", errors.New("no presentation topic has been specified")
	}

	crew, err := generate.FromConfig(&env.Cfg.Generator, env.Log)
	if err != nil {
		return "", err
	}

	s := New(&env.Cfg.Document, crew, env.Log)
	if err := s.LoadBackground(ctx, env.DefaultBackground); err != nil {
		return "", err
	}
	if err := s.Generate(ctx, opts.Topic, opts.Requirements); err != nil {
		return "", err
	}
	s.report(env, "generated.yaml")

	if len(opts.EditsPath) > 0 {
		script, err := LoadScript(opts.EditsPath)
		if err != nil {
			return "", err
		}
		if env.Rpt != nil {
			env.Rpt.Store("edits.yaml", opts.EditsPath)
		}
		err = s.Apply(ctx, script)
		s.report(env, "edited.yaml")
		if err != nil {
			return "", err
		}
		s.log.Info("Edit script applied", zap.Int("steps", len(script.Steps)))
	}

	if env.Rpt != nil {
		env.Rpt.StoreData("layout.txt", []byte(s.Assemble().Dump()))
	}

	var path string
	deck, err := s.Build()
	if err != nil {
		return "", err
	}

	if len(opts.Destination) > 0 {
		path = filepath.Join(opts.Destination, s.OutputName())
		if _, err := os.Stat(path); err == nil {
			if !env.Overwrite {
				return "", fmt.Errorf("output file already exists: %s", path)
			}
			s.log.Warn("Output file already exists, overwriting", zap.String("file", path))
		}
		if err := deck.WriteTo(ctx, path); err != nil {
			return "", err
		}
	}

	if len(opts.PreviewDir) > 0 {
		names, err := deck.RenderPreviews(ctx, opts.PreviewDir, env.Cfg.Document.Preview.Width)
		if err != nil {
			return path, err
		}
		s.log.Info("Previews rendered", zap.String("directory", opts.PreviewDir), zap.Int("count", len(names)))
		if env.Rpt != nil {
			if err := env.Rpt.StoreCopy("previews", opts.PreviewDir); err != nil {
				s.log.Warn("Unable to store previews in report", zap.Error(err))
			}
		}
	}
	return path, nil
}

func (s *Session) report(env *state.LocalEnv, name string) {
	if env.Rpt == nil {
		return
	}
	data, err := s.Dump()
	if err != nil {
		s.log.Warn("Unable to dump slides", zap.Error(err))
		return
	}
	env.Rpt.StoreData(name, data)
}
