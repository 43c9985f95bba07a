package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"pptgen/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination could not be created report
// goes to temporary directory.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

type entry struct {
	// source is what caller handed in, path is what will be archived
	source string
	path   string
	stamp  time.Time
	data   []byte
}

// manifestEntry describes single archived item.
type manifestEntry struct {
	Name   string    `yaml:"name"`
	Source string    `yaml:"source,omitempty"`
	Size   int       `yaml:"size,omitempty"`
	Stamp  time.Time `yaml:"stamp"`
}

// Report accumulates run artifacts: configuration, slide records, layout
// dump, previews and logs. Everything is packed into zip archive on Close.
// Nil report accepts and ignores everything.
type Report struct {
	mu      sync.Mutex
	entries map[string]entry
	file    *os.File
	// copies are temporary directories created by StoreCopy
	copies []string
}

// Close writes the archive and removes temporary copies.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.finalize()
	err = multierr.Append(err, r.file.Close())
	for _, dir := range r.copies {
		err = multierr.Append(err, os.RemoveAll(dir))
	}
	r.copies = nil
	return err
}

// Name returns name of the archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store registers file or directory to be archived as it is at Close time.
// Log files are registered this way. The same name may be registered again
// only for the same path.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.entries[name]; exists && old.source != path {
		panic(fmt.Sprintf("report entry [%s] is already taken by %s, now %s", name, old.source, path))
	}
	e := entry{source: path, path: path}
	if p, err := filepath.Abs(path); err == nil {
		e.path = p
	}
	r.entries[name] = e
}

// StoreData archives data under name. Repeated names get numeric suffix.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.unique(name)] = entry{data: data, stamp: time.Now()}
}

// StoreYAML archives YAML representation of v under name.
func (r *Report) StoreYAML(name string, v any) error {
	if r == nil {
		return nil
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("unable to marshal report entry %s: %w", name, err)
	}
	r.StoreData(name, data)
	return nil
}

// StoreCopy snapshots file or directory right away, later changes to the
// original are not reflected. Repeated names get numeric suffix.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}

	src, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", misc.GetAppName()+"-r-")
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.copies = append(r.copies, dir)
	e := entry{source: path, stamp: time.Now()}

	switch {
	case info.Mode().IsRegular():
		if e.path, err = copyFile(dir, src, info.ModTime()); err != nil {
			return err
		}
	case info.IsDir():
		if err := copyDir(dir, src); err != nil {
			return err
		}
		e.path = dir
	default:
		return fmt.Errorf("unable to copy %s: not a file or directory", path)
	}

	r.entries[r.unique(name)] = e
	return nil
}

// unique must be called with lock held.
func (r *Report) unique(name string) string {
	if _, exists := r.entries[name]; !exists {
		return name
	}
	for i := 2; ; i++ {
		if n := fmt.Sprintf("%s-%d", name, i); !exists(r.entries, n) {
			return n
		}
	}
}

func exists(entries map[string]entry, name string) bool {
	_, ok := entries[name]
	return ok
}

func copyFile(dir, src string, modTime time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := os.Chtimes(dst, modTime, modTime); err != nil {
		return "", err
	}
	return dst, nil
}

func copyDir(dir, src string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			// links, sockets and directories themselves are skipped
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		_, err = copyFile(filepath.Dir(filepath.Join(dir, rel)), path, info.ModTime())
		return err
	})
}

// finalize must be called with lock held.
func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	names := slices.Sorted(maps.Keys(r.entries))
	manifest := make([]manifestEntry, 0, len(names))

	var errs error
	for _, name := range names {
		e := r.entries[name]
		me := manifestEntry{Name: name, Source: e.source, Stamp: e.stamp}
		if e.data != nil {
			me.Size = len(e.data)
			errs = multierr.Append(errs, saveFile(arc, name, e.stamp, bytes.NewReader(e.data)))
			manifest = append(manifest, me)
			continue
		}

		info, err := os.Stat(e.path)
		if err != nil {
			// absent files are ignored, log files may never be created
			continue
		}
		me.Stamp = info.ModTime()
		if info.IsDir() {
			errs = multierr.Append(errs, saveDir(arc, name, e.path))
		} else {
			me.Size = int(info.Size())
			errs = multierr.Append(errs, saveFilePath(arc, name, e.path, info.ModTime()))
		}
		manifest = append(manifest, me)
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else {
		errs = multierr.Append(errs, saveFile(arc, "MANIFEST", time.Now(), bytes.NewReader(data)))
	}
	return multierr.Append(errs, arc.Close())
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func saveFilePath(dst *zip.Writer, name, path string, t time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(dst, name, t, f)
}

func saveDir(dst *zip.Writer, name, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return saveFilePath(dst, filepath.ToSlash(filepath.Join(name, rel)), path, info.ModTime())
	})
}
