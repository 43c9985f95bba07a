package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
document:
  author: "Strategy Team"
  company: "ACME"
  output_name_template: "{{ .Sanitized }}-deck"
  file_name_transliterate: true
  images:
    max_width: 1280
    max_file_size: 1048576
    optimize: false
    jpeg_quality_level: 75
  preview:
    width: 640
logging:
  console:
    level: normal
  file:
    level: debug
    destination: ` + filepath.Join(tmpDir, "test.log") + `
    mode: append
reporting:
  destination: ` + filepath.Join(tmpDir, "test-report.zip") + `
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Document.Author != "Strategy Team" || cfg.Document.Company != "ACME" {
		t.Errorf("Author/Company = %q/%q", cfg.Document.Author, cfg.Document.Company)
	}
	if !cfg.Document.FileNameTransliterate {
		t.Error("Expected FileNameTransliterate to be true")
	}
	if cfg.Document.Images.MaxWidth != 1280 {
		t.Errorf("MaxWidth = %d, want 1280", cfg.Document.Images.MaxWidth)
	}
	if cfg.Document.Images.JPEGQuality != 75 {
		t.Errorf("JPEGQuality = %d, want 75", cfg.Document.Images.JPEGQuality)
	}
	if cfg.Document.Images.Optimize {
		t.Error("Expected Optimize to be false")
	}
	if cfg.Document.Preview.Width != 640 {
		t.Errorf("Preview.Width = %d, want 640", cfg.Document.Preview.Width)
	}
	// templates are not expanded while loading
	if cfg.Document.OutputNameTemplate != "{{ .Sanitized }}-deck" {
		t.Errorf("OutputNameTemplate = %q", cfg.Document.OutputNameTemplate)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `version: 1
document:
  author: x
  invalid indent
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unknown.yaml")

	configWithUnknown := `version: 1
document:
  caption: true
`

	if err := os.WriteFile(configPath, []byte(configWithUnknown), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "version", content: "version: 2\n"},
		{name: "jpeg quality", content: "version: 1\ndocument:\n  images:\n    jpeg_quality_level: 10\n"},
		{name: "preview width", content: "version: 1\ndocument:\n  preview:\n    width: 20\n"},
		{name: "max file size", content: "version: 1\ndocument:\n  images:\n    max_file_size: 0\n"},
		{name: "author", content: "version: 1\ndocument:\n  author: \"\"\n"},
		{name: "missing background", content: "version: 1\ndocument:\n  background_path: /nonexistent/bg.png\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid_values.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			if _, err := LoadConfiguration(configPath); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	_, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}

	// templates must survive expansion untouched
	if !strings.Contains(string(data), "{{ .Topic }}") {
		t.Error("subject template was expanded")
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Document: DocumentConfig{
			Author:          "Team",
			SubjectTemplate: "{{ .Topic }}",
			Images: ImagesConfig{
				MaxWidth:    800,
				MaxFileSize: 1024,
				Optimize:    true,
				JPEGQuality: 80,
			},
			Preview: PreviewConfig{Width: 320},
		},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Dump() returned empty data")
	}

	// Verify we can load it back
	cfg2 := &Config{}
	_, err = unmarshalConfig(data, cfg2, false)
	if err != nil {
		t.Errorf("Dumped config cannot be loaded: %v", err)
	}

	if cfg2.Version != cfg.Version {
		t.Errorf("Version mismatch after dump/load: got %d, want %d", cfg2.Version, cfg.Version)
	}
	if cfg2.Document != cfg.Document {
		t.Errorf("Document mismatch after dump/load: got %+v", cfg2.Document)
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		data := []byte(`version: 1`)
		cfg := &Config{}

		result, err := unmarshalConfig(data, cfg, false)
		if err != nil {
			t.Errorf("unmarshalConfig() error = %v", err)
		}

		if result == nil {
			t.Fatal("unmarshalConfig() returned nil")
		}

		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		data := []byte(`invalid: [yaml`)
		cfg := &Config{}

		_, err := unmarshalConfig(data, cfg, false)
		if err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	doc := cfg.Document
	if doc.Author != "Multi-Agent AI System" {
		t.Errorf("Author = %q", doc.Author)
	}
	if len(doc.BackgroundPath) != 0 || len(doc.OutputNameTemplate) != 0 {
		t.Errorf("unexpected defaults: %+v", doc)
	}
	if doc.Images.JPEGQuality < 40 || doc.Images.JPEGQuality > 100 {
		t.Errorf("JPEGQuality = %d, should be between 40 and 100", doc.Images.JPEGQuality)
	}
	if doc.Images.MaxFileSize <= 0 || doc.Images.MaxWidth < 0 {
		t.Errorf("Images = %+v", doc.Images)
	}
	if doc.Preview.Width < 160 {
		t.Errorf("Preview.Width = %d", doc.Preview.Width)
	}
	if len(cfg.Generator.PlaybookPath) != 0 {
		t.Errorf("PlaybookPath = %q, want embedded playbook", cfg.Generator.PlaybookPath)
	}
}

func TestLoadConfiguration_MergeWithDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.yaml")

	// Partial config that only overrides some values
	partialConfig := `version: 1
document:
  company: "Initech"
`

	if err := os.WriteFile(configPath, []byte(partialConfig), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	// Check that explicitly set value is used
	if cfg.Document.Company != "Initech" {
		t.Errorf("Company = %q, want Initech", cfg.Document.Company)
	}

	// Check that default values are still present for unspecified fields
	if cfg.Document.Author != "Multi-Agent AI System" {
		t.Errorf("Author = %q, default expected", cfg.Document.Author)
	}
	if cfg.Document.Images.MaxWidth != 1920 {
		t.Errorf("MaxWidth = %d, default expected", cfg.Document.Images.MaxWidth)
	}
}

func TestLoadConfiguration_BackgroundPath(t *testing.T) {
	tmpDir := t.TempDir()
	bg := filepath.Join(tmpDir, "bg.png")
	if err := os.WriteFile(bg, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("version: 1\ndocument:\n  background_path: "+bg+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Document.BackgroundPath != bg {
		t.Errorf("BackgroundPath = %q, want %q", cfg.Document.BackgroundPath, bg)
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	// version: 99 will fail validation (validate:"eq=1").
	data := []byte("version: 99\n")
	cfg := &Config{}

	_, err := unmarshalConfig(data, cfg, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}

	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error (errors.Unwrap non-nil), got bare error: %v", err)
	}
}
