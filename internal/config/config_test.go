package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Point at a path that does not exist; defaults and env apply.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.OCR.Model != "gemini-2.5-flash" {
		t.Errorf("OCR.Model = %q, want gemini-2.5-flash", cfg.OCR.Model)
	}
	if cfg.OCR.Timeout() != 25*time.Second {
		t.Errorf("OCR.Timeout() = %v, want 25s", cfg.OCR.Timeout())
	}
	if !cfg.OCR.StructuredOutput {
		t.Error("OCR.StructuredOutput = false, want true by default")
	}
	if cfg.Payment.InitialBalance != 482910 {
		t.Errorf("Payment.InitialBalance = %v, want 482910", cfg.Payment.InitialBalance)
	}
	if cfg.Payment.DismissAfter() != 6*time.Second {
		t.Errorf("Payment.DismissAfter() = %v, want 6s", cfg.Payment.DismissAfter())
	}
	if len(cfg.Payment.FastRailCountries) == 0 {
		t.Error("Payment.FastRailCountries is empty")
	}
	if cfg.Image.MaxDimension != 1000 {
		t.Errorf("Image.MaxDimension = %d, want 1000", cfg.Image.MaxDimension)
	}
	if cfg.Image.JPEGQuality != 65 {
		t.Errorf("Image.JPEGQuality = %d, want 65", cfg.Image.JPEGQuality)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := []byte(`
Server:
  Port: "9090"
OCR:
  Model: gemini-2.5-flash-image
  StructuredOutput: false
  TimeoutSeconds: 10
Payment:
  InitialBalance: 1000
  FastRailCountries:
    - Wakanda
`)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.OCR.Model != "gemini-2.5-flash-image" {
		t.Errorf("OCR.Model = %q, want override", cfg.OCR.Model)
	}
	if cfg.OCR.StructuredOutput {
		t.Error("OCR.StructuredOutput = true, want file override false")
	}
	if cfg.OCR.Timeout() != 10*time.Second {
		t.Errorf("OCR.Timeout() = %v, want 10s", cfg.OCR.Timeout())
	}
	if cfg.Payment.InitialBalance != 1000 {
		t.Errorf("Payment.InitialBalance = %v, want 1000", cfg.Payment.InitialBalance)
	}
	if len(cfg.Payment.FastRailCountries) != 1 || cfg.Payment.FastRailCountries[0] != "Wakanda" {
		t.Errorf("Payment.FastRailCountries = %v, want [Wakanda]", cfg.Payment.FastRailCountries)
	}
	// Untouched sections keep their defaults.
	if cfg.Image.MaxDimension != 1000 {
		t.Errorf("Image.MaxDimension = %d, want default 1000", cfg.Image.MaxDimension)
	}
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key-123")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OCR.APIKey != "test-key-123" {
		t.Errorf("OCR.APIKey = %q, want value from GEMINI_API_KEY", cfg.OCR.APIKey)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("Server: [not: valid"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() on broken YAML succeeded, want error")
	}
}
