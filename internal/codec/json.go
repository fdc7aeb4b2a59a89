package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fyora/internal/domain"
)

// UsersJSONCodec handles JSON import/export of users with nested progress logs.
//
// Object identity is preserved with "$id"/"$ref" markers: every user and log
// gets a "$id", and each log points back at its owner with
// {"user": {"$ref": "<owner $id>"}} instead of repeating the user. A user that
// appears twice in the exported list is written once and then as a bare
// reference. Parse also accepts arrays wrapped as {"$id": .., "$values": [..]}.
type UsersJSONCodec struct{}

// NewUsersJSONCodec creates a new JSON codec
func NewUsersJSONCodec() *UsersJSONCodec {
	return &UsersJSONCodec{}
}

// Format returns the codec format identifier
func (c *UsersJSONCodec) Format() string {
	return "json"
}

type jsonRef struct {
	Ref string `json:"$ref"`
}

type jsonUserOut struct {
	RefID        string       `json:"$id"`
	ID           int64        `json:"id"`
	Nickname     string       `json:"nickname"`
	Email        string       `json:"email"`
	CreatedAt    time.Time    `json:"createdAt"`
	ProgressLogs []jsonLogOut `json:"progressLogs"`
}

type jsonLogOut struct {
	RefID               string    `json:"$id"`
	ID                  int64     `json:"id"`
	UserID              int64     `json:"userId"`
	DaysWithoutGambling int       `json:"daysWithoutGambling"`
	Achievement         *string   `json:"achievement"`
	LogDate             time.Time `json:"logDate"`
	User                jsonRef   `json:"user"`
}

// Export exports users to JSON
func (c *UsersJSONCodec) Export(users []*domain.User, w io.Writer) error {
	next := 0
	newID := func() string {
		next++
		return strconv.Itoa(next)
	}

	seen := make(map[*domain.User]string, len(users))
	out := make([]any, 0, len(users))

	for _, u := range users {
		if u == nil {
			continue
		}
		if ref, ok := seen[u]; ok {
			out = append(out, jsonRef{Ref: ref})
			continue
		}

		ju := jsonUserOut{
			RefID:        newID(),
			ID:           u.ID,
			Nickname:     u.Nickname,
			Email:        u.Email,
			CreatedAt:    u.CreatedAt,
			ProgressLogs: make([]jsonLogOut, 0, len(u.ProgressLogs)),
		}
		seen[u] = ju.RefID

		for _, l := range u.ProgressLogs {
			jl := jsonLogOut{
				RefID:               newID(),
				ID:                  l.ID,
				UserID:              l.UserID,
				DaysWithoutGambling: l.DaysWithoutGambling,
				LogDate:             l.LogDate,
				User:                jsonRef{Ref: ju.RefID},
			}
			if l.Achievement != "" {
				achievement := l.Achievement
				jl.Achievement = &achievement
			}
			ju.ProgressLogs = append(ju.ProgressLogs, jl)
		}
		out = append(out, ju)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

type jsonUserIn struct {
	RefID        string          `json:"$id"`
	Ref          string          `json:"$ref"`
	ID           int64           `json:"id"`
	Nickname     string          `json:"nickname"`
	Email        string          `json:"email"`
	CreatedAt    jsonTime        `json:"createdAt"`
	ProgressLogs json.RawMessage `json:"progressLogs"`
}

type jsonLogIn struct {
	RefID               string          `json:"$id"`
	ID                  int64           `json:"id"`
	UserID              int64           `json:"userId"`
	DaysWithoutGambling int             `json:"daysWithoutGambling"`
	Achievement         *string         `json:"achievement"`
	LogDate             jsonTime        `json:"logDate"`
	User                json.RawMessage `json:"user"`
}

// Parse imports users from JSON. An empty document yields no users.
func (c *UsersJSONCodec) Parse(r io.Reader) ([]*domain.User, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*domain.User{}, nil
	}

	items, err := unwrapValues(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	refs := make(map[string]*domain.User)
	logIDs := make(map[string]bool)
	users := make([]*domain.User, 0, len(items))

	for i, raw := range items {
		var ju jsonUserIn
		if err := json.Unmarshal(raw, &ju); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: user %d: %w", i, err)
		}

		if ju.Ref != "" {
			if _, ok := refs[ju.Ref]; !ok {
				return nil, fmt.Errorf("failed to parse JSON: user %d: unknown $ref %q", i, ju.Ref)
			}
			// Already decoded earlier in the document.
			continue
		}

		user := &domain.User{
			ID:        ju.ID,
			Nickname:  ju.Nickname,
			Email:     ju.Email,
			CreatedAt: ju.CreatedAt.Time,
		}
		if ju.RefID != "" {
			if _, dup := refs[ju.RefID]; dup {
				return nil, fmt.Errorf("failed to parse JSON: duplicate $id %q", ju.RefID)
			}
			refs[ju.RefID] = user
		}

		logs, err := unwrapValues(ju.ProgressLogs)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON: user %d progressLogs: %w", i, err)
		}
		for j, rawLog := range logs {
			var jl jsonLogIn
			if err := json.Unmarshal(rawLog, &jl); err != nil {
				return nil, fmt.Errorf("failed to parse JSON: user %d log %d: %w", i, j, err)
			}
			if err := checkOwnerRef(jl.User, refs); err != nil {
				return nil, fmt.Errorf("failed to parse JSON: user %d log %d: %w", i, j, err)
			}
			if jl.RefID != "" {
				if logIDs[jl.RefID] {
					return nil, fmt.Errorf("failed to parse JSON: duplicate $id %q", jl.RefID)
				}
				logIDs[jl.RefID] = true
			}

			log := &domain.ProgressLog{
				ID:                  jl.ID,
				DaysWithoutGambling: jl.DaysWithoutGambling,
				LogDate:             jl.LogDate.Time,
			}
			if jl.Achievement != nil {
				log.Achievement = *jl.Achievement
			}
			user.AddLog(log)
		}

		users = append(users, user)
	}

	return users, nil
}

// unwrapValues returns the elements of a JSON array, accepting both a plain
// array and a {"$values": [...]} wrapper. null or missing yields nil.
func unwrapValues(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var wrapped struct {
			Values *[]json.RawMessage `json:"$values"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.Values == nil {
			return nil, fmt.Errorf("expected array or $values wrapper")
		}
		return *wrapped.Values, nil
	default:
		return nil, fmt.Errorf("expected array, got %q", string(trimmed[:1]))
	}
}

// checkOwnerRef verifies that a log's "user" field, when it is a reference,
// points at a user already seen. Inline or missing owners are accepted since
// the enclosing user is always the owner.
func checkOwnerRef(raw json.RawMessage, refs map[string]*domain.User) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var ref jsonRef
	if err := json.Unmarshal(trimmed, &ref); err != nil {
		return err
	}
	if ref.Ref == "" {
		return nil
	}
	if _, ok := refs[ref.Ref]; !ok {
		return fmt.Errorf("unknown $ref %q", ref.Ref)
	}
	return nil
}

// jsonTime accepts RFC 3339 timestamps as well as zone-less
// "2006-01-02T15:04:05.9999999" and "2006-01-02 15:04:05" forms, read as UTC.
type jsonTime struct {
	time.Time
}

var jsonTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *jsonTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range jsonTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
