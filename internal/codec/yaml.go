package codec

import (
	"errors"
	"fmt"
	"io"
	"time"

	"fyora/internal/domain"

	"gopkg.in/yaml.v3"
)

// UsersYAMLCodec handles YAML import/export of users. Logs are nested under
// their owner, so no back-references are written.
type UsersYAMLCodec struct{}

// NewUsersYAMLCodec creates a new YAML codec
func NewUsersYAMLCodec() *UsersYAMLCodec {
	return &UsersYAMLCodec{}
}

// Format returns the codec format identifier
func (c *UsersYAMLCodec) Format() string {
	return "yaml"
}

// yamlDocument represents the YAML structure for exported users
type yamlDocument struct {
	Users []yamlUser `yaml:"users"`
}

type yamlUser struct {
	ID           int64     `yaml:"id,omitempty"`
	Nickname     string    `yaml:"nickname"`
	Email        string    `yaml:"email"`
	CreatedAt    time.Time `yaml:"created_at,omitempty"`
	ProgressLogs []yamlLog `yaml:"progress_logs,omitempty"`
}

type yamlLog struct {
	ID                  int64     `yaml:"id,omitempty"`
	DaysWithoutGambling int       `yaml:"days_without_gambling"`
	Achievement         string    `yaml:"achievement,omitempty"`
	LogDate             time.Time `yaml:"log_date,omitempty"`
}

// Parse imports users from YAML. An empty document yields no users.
func (c *UsersYAMLCodec) Parse(r io.Reader) ([]*domain.User, error) {
	var doc yamlDocument
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []*domain.User{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	users := make([]*domain.User, 0, len(doc.Users))
	for _, yu := range doc.Users {
		user := &domain.User{
			ID:        yu.ID,
			Nickname:  yu.Nickname,
			Email:     yu.Email,
			CreatedAt: yu.CreatedAt,
		}
		for _, yl := range yu.ProgressLogs {
			user.AddLog(&domain.ProgressLog{
				ID:                  yl.ID,
				DaysWithoutGambling: yl.DaysWithoutGambling,
				Achievement:         yl.Achievement,
				LogDate:             yl.LogDate,
			})
		}
		users = append(users, user)
	}

	return users, nil
}

// Export exports users to YAML
func (c *UsersYAMLCodec) Export(users []*domain.User, w io.Writer) error {
	doc := yamlDocument{Users: make([]yamlUser, 0, len(users))}
	seen := make(map[*domain.User]bool, len(users))

	for _, u := range users {
		if u == nil || seen[u] {
			continue
		}
		seen[u] = true

		yu := yamlUser{
			ID:        u.ID,
			Nickname:  u.Nickname,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
		}
		for _, l := range u.ProgressLogs {
			yu.ProgressLogs = append(yu.ProgressLogs, yamlLog{
				ID:                  l.ID,
				DaysWithoutGambling: l.DaysWithoutGambling,
				Achievement:         l.Achievement,
				LogDate:             l.LogDate,
			})
		}
		doc.Users = append(doc.Users, yu)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
