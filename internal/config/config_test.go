package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DefaultProvider != "openrouter" || c.HistogramBins != 10 || c.SampleRows != 5 {
		t.Fatalf("defaults = %+v", c)
	}
	if c.SessionsDir != filepath.Join(home, ".dataclinic", "sessions") {
		t.Fatalf("sessions dir = %s", c.SessionsDir)
	}
}

func TestSaveThenLoadWithEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(&Global{DefaultModel: "llama3:latest", DefaultProvider: "ollama", SampleRows: 3, SessionsDir: "~/clinic"}, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	t.Setenv("DATACLINIC_SAMPLE_ROWS", "7")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DefaultModel != "llama3:latest" || c.DefaultProvider != "ollama" {
		t.Fatalf("file values not read: %+v", c)
	}
	if c.SampleRows != 7 {
		t.Fatalf("env should win over file, got %d", c.SampleRows)
	}
	home, _ := os.UserHomeDir()
	if c.SessionsDir != filepath.Join(home, "clinic") {
		t.Fatalf("sessions dir = %s", c.SessionsDir)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("DATACLINIC_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATACLINIC_TEST_DOTENV", "")
	os.Unsetenv("DATACLINIC_TEST_DOTENV")
	if err := LoadDotEnv(p); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("DATACLINIC_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("env = %q", got)
	}
}
