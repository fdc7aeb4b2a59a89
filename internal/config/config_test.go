package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// clearEnv blanks every variable that could override loaded values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvConfigPath,
		"FYORA_DB_PATH", "FYORA_ROOT", "FYORA_LOG_LEVEL", "FYORA_LOG_FORMAT",
		"FYORA_FILES_EXPORTDIR", "FYORA_FILES_SUMMARYDIR", "FYORA_FILES_IMPORTFILE",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.Path != "./fyora_admin.db" {
		t.Errorf("Database.Path = %s, want ./fyora_admin.db", cfg.Database.Path)
	}
	if cfg.Files.ExportDir != "fyora_export" || cfg.Files.SummaryDir != "fyora_summary" {
		t.Errorf("unexpected output dirs %+v", cfg.Files)
	}
	if cfg.Files.ImportFile != "fyora_import.json" {
		t.Errorf("Files.ImportFile = %s", cfg.Files.ImportFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadWithoutFileMatchesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	oldWd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(oldWd)

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Path = "/var/lib/fyora/admin.db"
	cfg.Files.Root = "/srv/fyora"
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadFillsMissingKeysWithDefaults(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(configPath, []byte("database:\n  path: custom.db\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Database.Path != "custom.db" {
		t.Errorf("Database.Path = %s, want custom.db", cfg.Database.Path)
	}
	if cfg.Files.ExportDir != DefaultExportDir {
		t.Errorf("Files.ExportDir = %s, want default", cfg.Files.ExportDir)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %s, want default", cfg.Log.Level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	t.Setenv("FYORA_DB_PATH", "/tmp/env.db")
	t.Setenv("FYORA_LOG_LEVEL", "warn")
	t.Setenv("FYORA_FILES_EXPORTDIR", "exports")

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("Database.Path = %s, want /tmp/env.db", cfg.Database.Path)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn", cfg.Log.Level)
	}
	if cfg.Files.ExportDir != "exports" {
		t.Errorf("Files.ExportDir = %s, want exports", cfg.Files.ExportDir)
	}
}

func TestLoadFromPathErrors(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	if _, _, err := LoadFromPath(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(tmpDir, "bad.yaml")
	os.WriteFile(bad, []byte("log:\n  level: loud\n"), 0644)
	_, _, err := LoadFromPath(bad)
	if err == nil || !strings.Contains(err.Error(), "log.level") {
		t.Errorf("expected log.level error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"defaults", "info", "text", false},
		{"debug json", "debug", "json", false},
		{"warning alias", "warning", "text", false},
		{"bad level", "verbose", "text", true},
		{"bad format", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Log.Level = tt.level
			cfg.Log.Format = tt.format
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFindConfigPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	found := FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Explicit path doesn't exist, should fall back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	found = FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	DefaultConfig().Save(explicit)
	t.Setenv(EnvConfigPath, explicit)
	if found = FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestFindConfigPathXDG(t *testing.T) {
	clearEnv(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	oldWd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(oldWd)

	if found := FindConfigPath(); found != "" {
		t.Fatalf("expected no config, got %s", found)
	}

	want := filepath.Join(xdg, ConfigDirName, "config.yaml")
	if DefaultConfigPath() != want {
		t.Errorf("DefaultConfigPath() = %s, want %s", DefaultConfigPath(), want)
	}
	if err := DefaultConfig().Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); found != want {
		t.Errorf("FindConfigPath() = %s, want %s", found, want)
	}
}

func newTestPaths(t *testing.T) *Paths {
	t.Helper()
	p, err := NewPaths(FilesConfig{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("NewPaths() error: %v", err)
	}
	p.ExecDir = t.TempDir()
	return p
}

func TestPathsOutput(t *testing.T) {
	p := newTestPaths(t)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"export bare", p.ExportPath("users.json"), filepath.Join(p.Root, "fyora_export", "users.json")},
		{"export default", p.ExportPath(""), filepath.Join(p.Root, "fyora_export", "fyora_export.json")},
		{"export absolute", p.ExportPath("/tmp/out.json"), "/tmp/out.json"},
		{"summary bare", p.SummaryPath("r.txt"), filepath.Join(p.Root, "fyora_summary", "r.txt")},
		{"summary default", p.SummaryPath(""), filepath.Join(p.Root, "fyora_summary", "fyora_summary.txt")},
		{"summary absolute", p.SummaryPath("/tmp/r.txt"), "/tmp/r.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestNewPathsRelativeRoot(t *testing.T) {
	p, err := NewPaths(FilesConfig{})
	if err != nil {
		t.Fatalf("NewPaths() error: %v", err)
	}
	wd, _ := os.Getwd()
	if p.Root != wd {
		t.Errorf("Root = %s, want working directory %s", p.Root, wd)
	}
	if p.ExportDir != DefaultExportDir || p.SummaryDir != DefaultSummaryDir || p.ImportFile != DefaultImportFile {
		t.Errorf("expected default dirs, got %+v", p)
	}
}

func TestImportCandidates(t *testing.T) {
	p := newTestPaths(t)

	got := p.ImportCandidates("data.json")
	want := []string{
		filepath.Join(p.Root, "data.json"),
		filepath.Join(p.Root, "fyora_import.json"),
		filepath.Join(p.ExecDir, "data.json"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ImportCandidates() = %v, want %v", got, want)
	}

	abs := filepath.Join(t.TempDir(), "abs.json")
	got = p.ImportCandidates(abs)
	want = []string{abs, filepath.Join(p.Root, "fyora_import.json")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ImportCandidates(abs) = %v, want %v", got, want)
	}

	got = p.ImportCandidates("")
	want = []string{
		filepath.Join(p.Root, "fyora_import.json"),
		filepath.Join(p.ExecDir, "fyora_import.json"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ImportCandidates(\"\") = %v, want %v", got, want)
	}
}

func TestResolveImport(t *testing.T) {
	p := newTestPaths(t)
	write := func(path string) {
		t.Helper()
		if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if _, ok := p.ResolveImport("data.json"); ok {
		t.Fatal("nothing exists yet")
	}

	execCopy := filepath.Join(p.ExecDir, "data.json")
	write(execCopy)
	if got, ok := p.ResolveImport("data.json"); !ok || got != execCopy {
		t.Errorf("ResolveImport() = %s, %v; want exec dir fallback", got, ok)
	}

	defaultImport := p.DefaultImportPath()
	write(defaultImport)
	if got, _ := p.ResolveImport("data.json"); got != defaultImport {
		t.Errorf("ResolveImport() = %s, want default import %s", got, defaultImport)
	}

	rooted := filepath.Join(p.Root, "data.json")
	write(rooted)
	if got, _ := p.ResolveImport("data.json"); got != rooted {
		t.Errorf("ResolveImport() = %s, want rooted %s", got, rooted)
	}

	abs := filepath.Join(t.TempDir(), "abs.json")
	write(abs)
	if got, _ := p.ResolveImport(abs); got != abs {
		t.Errorf("ResolveImport() = %s, want absolute %s", got, abs)
	}
}
