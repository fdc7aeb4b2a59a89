package config

// Config is the root configuration structure
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Files    FilesConfig    `yaml:"files"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig locates the SQLite store
type DatabaseConfig struct {
	Path string `yaml:"path" default:"./fyora_admin.db" env:"FYORA_DB_PATH"`
}

// FilesConfig controls where exports, summaries and imports are resolved.
// Relative directories are joined to Root.
type FilesConfig struct {
	Root       string `yaml:"root" default:"." env:"FYORA_ROOT"`
	ExportDir  string `yaml:"export_dir" default:"fyora_export"`
	SummaryDir string `yaml:"summary_dir" default:"fyora_summary"`
	ImportFile string `yaml:"import_file" default:"fyora_import.json"`
}

// LogConfig configures the process-wide slog handler
type LogConfig struct {
	Level  string `yaml:"level" default:"info" env:"FYORA_LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" default:"text" env:"FYORA_LOG_FORMAT"` // text, json
}

// Default values, kept in sync with the default tags above.
const (
	DefaultDatabasePath = "./fyora_admin.db"
	DefaultRoot         = "."
	DefaultExportDir    = "fyora_export"
	DefaultSummaryDir   = "fyora_summary"
	DefaultImportFile   = "fyora_import.json"
	DefaultExportFile   = "fyora_export.json"
	DefaultSummaryFile  = "fyora_summary.txt"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)
