package codec

import (
	"io"
	"path/filepath"
	"strings"

	"fyora/internal/domain"
)

// Importer interface for importing users from various formats
type Importer interface {
	Parse(r io.Reader) ([]*domain.User, error)
	Format() string
}

// Exporter interface for exporting users to various formats
type Exporter interface {
	Export(users []*domain.User, w io.Writer) error
	Format() string
}

// Codec reads and writes one file format
type Codec interface {
	Importer
	Exporter
}

// ForPath picks a codec from the file extension. YAML is used for .yaml and
// .yml, JSON for everything else.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewUsersYAMLCodec()
	default:
		return NewUsersJSONCodec()
	}
}
