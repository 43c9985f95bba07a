package config

import (
	"archive/zip"
	"os"
	"path/filepath"
	"slices"
	"testing"

	yaml "gopkg.in/yaml.v3"
)

func TestReportClose_RemovesCopies(t *testing.T) {
	reportFile, err := os.CreateTemp(t.TempDir(), "test-report-*.zip")
	if err != nil {
		t.Fatalf("failed to create temp report file: %v", err)
	}

	r := &Report{
		entries: make(map[string]entry),
		file:    reportFile,
	}

	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "slides.yaml"), []byte("topic: test"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(src, "previews"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "previews", "01-title.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := r.StoreCopy("slides", filepath.Join(src, "slides.yaml")); err != nil {
		t.Fatalf("StoreCopy(file) error: %v", err)
	}
	if err := r.StoreCopy("previews", filepath.Join(src, "previews")); err != nil {
		t.Fatalf("StoreCopy(dir) error: %v", err)
	}
	// same name is versioned, not rejected
	if err := r.StoreCopy("slides", filepath.Join(src, "slides.yaml")); err != nil {
		t.Fatalf("StoreCopy(again) error: %v", err)
	}
	r.StoreData("layout.txt", []byte("document"))
	if err := r.StoreYAML("config.yaml", map[string]int{"version": 1}); err != nil {
		t.Fatalf("StoreYAML() error: %v", err)
	}

	copies := slices.Clone(r.copies)
	if len(copies) != 3 {
		t.Fatalf("copies = %d, want 3", len(copies))
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	for _, dir := range copies {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("temporary copy %s still exists", dir)
		}
	}
	if _, err := os.Stat(filepath.Join(src, "slides.yaml")); err != nil {
		t.Errorf("original file removed: %v", err)
	}

	arc, err := zip.OpenReader(reportFile.Name())
	if err != nil {
		t.Fatalf("report is not a zip archive: %v", err)
	}
	defer arc.Close()

	var names []string
	for _, f := range arc.File {
		names = append(names, f.Name)
	}
	for _, want := range []string{"MANIFEST", "slides", "slides-2", "previews/01-title.png", "layout.txt", "config.yaml"} {
		if !slices.Contains(names, want) {
			t.Errorf("archive has no %s: %v", want, names)
		}
	}
	manifest, err := arc.Open("MANIFEST")
	if err != nil {
		t.Fatal(err)
	}
	defer manifest.Close()
	var listed []manifestEntry
	if err := yaml.NewDecoder(manifest).Decode(&listed); err != nil {
		t.Fatalf("MANIFEST is not YAML: %v", err)
	}
	if len(listed) != 5 || listed[0].Name != "config.yaml" || listed[0].Size == 0 {
		t.Errorf("MANIFEST = %+v", listed)
	}
}

func TestReportStore_PanicsOnOverwrite(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("log", "a.log")
	r.Store("log", "a.log")

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	r.Store("log", "b.log")
}

func TestReportName(t *testing.T) {
	var r *Report
	if r.Name() != "" {
		t.Error("nil report has a name")
	}
	rc := &ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	rpt, err := rc.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	defer rpt.Close()
	if !filepath.IsAbs(rpt.Name()) || filepath.Base(rpt.Name()) != "report.zip" {
		t.Errorf("Name() = %s", rpt.Name())
	}
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
