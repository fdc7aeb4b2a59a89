package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "FYORA_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "fyora.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "fyora"
)

// FindConfigPath searches for config file in priority order:
// 1. $FYORA_CONFIG (explicit path)
// 2. ./fyora.yaml (working directory)
// 3. $XDG_CONFIG_HOME/fyora/config.yaml
// 4. ~/.config/fyora/config.yaml
//
// Returns empty string if no config file found
func FindConfigPath() string {
	// 1. Explicit environment variable
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	// 2. Working directory
	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	// 3. XDG config home
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	// 4. Default XDG location (~/.config)
	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	return ""
}

// DefaultConfigPath returns the preferred location for a new config file
// Prefers XDG config home, falls back to working directory
func DefaultConfigPath() string {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, ConfigDirName, "config.yaml")
	}

	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName, "config.yaml")
	}

	return ConfigFileName
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Paths resolves export, summary and import file names against the
// configured root directory.
type Paths struct {
	Root       string
	ExportDir  string
	SummaryDir string
	ImportFile string
	// ExecDir is the running binary's directory, the last import fallback.
	ExecDir string
}

// NewPaths builds a resolver from file settings. Root is made absolute.
func NewPaths(files FilesConfig) (*Paths, error) {
	root := files.Root
	if root == "" {
		root = DefaultRoot
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}

	p := &Paths{
		Root:       abs,
		ExportDir:  files.ExportDir,
		SummaryDir: files.SummaryDir,
		ImportFile: files.ImportFile,
	}
	if p.ExportDir == "" {
		p.ExportDir = DefaultExportDir
	}
	if p.SummaryDir == "" {
		p.SummaryDir = DefaultSummaryDir
	}
	if p.ImportFile == "" {
		p.ImportFile = DefaultImportFile
	}

	if exe, err := os.Executable(); err == nil {
		p.ExecDir = filepath.Dir(exe)
	}
	return p, nil
}

// ExportPath returns where a data export named name is written. An empty
// name uses the default export file; absolute paths are kept as given.
func (p *Paths) ExportPath(name string) string {
	if name == "" {
		name = DefaultExportFile
	}
	return p.outputPath(p.ExportDir, name)
}

// SummaryPath returns where a summary report named name is written.
func (p *Paths) SummaryPath(name string) string {
	if name == "" {
		name = DefaultSummaryFile
	}
	return p.outputPath(p.SummaryDir, name)
}

func (p *Paths) outputPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if filepath.IsAbs(dir) {
		return filepath.Join(dir, name)
	}
	return filepath.Join(p.Root, dir, name)
}

// DefaultImportPath is the fallback import file under the root.
func (p *Paths) DefaultImportPath() string {
	if filepath.IsAbs(p.ImportFile) {
		return p.ImportFile
	}
	return filepath.Join(p.Root, p.ImportFile)
}

// ImportCandidates lists, in order, the paths tried for an import named name:
// the name itself when absolute, the name under the root, the default import
// file, and the name beside the running binary. Duplicates are dropped.
func (p *Paths) ImportCandidates(name string) []string {
	if name == "" {
		name = p.ImportFile
	}

	var candidates []string
	seen := make(map[string]bool)
	add := func(path string) {
		if path == "" {
			return
		}
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			candidates = append(candidates, path)
		}
	}

	if filepath.IsAbs(name) {
		add(name)
	} else {
		add(filepath.Join(p.Root, name))
	}
	add(p.DefaultImportPath())
	if p.ExecDir != "" && !filepath.IsAbs(name) {
		add(filepath.Join(p.ExecDir, name))
	}
	return candidates
}

// ResolveImport returns the first existing import candidate.
func (p *Paths) ResolveImport(name string) (string, bool) {
	for _, path := range p.ImportCandidates(name) {
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}
