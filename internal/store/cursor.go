package store

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// cursor marks the position after the last item of a listing page:
// the (publishedAt, id) pair of the last retained row. Encoding is a
// pure function of the pair so tokens survive process restarts. A nil
// PublishedAt means the position sits in the unpublished tail of the
// ordering, where id alone decides the order.
type cursor struct {
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ID          string     `json:"id"`
}

// encodeCursor builds the opaque token. A nil publishedAt (draft rows)
// stays nil in the token so the next page continues the id-only walk
// through the unpublished tail.
func encodeCursor(publishedAt *time.Time, id string) string {
	c := cursor{ID: id}
	if publishedAt != nil {
		at := publishedAt.UTC()
		c.PublishedAt = &at
	}
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// decodeCursor parses a token. Malformed or foreign input yields
// (zero, false), i.e. "no cursor": pagination restarts from the first
// page instead of failing the caller.
func decodeCursor(token string) (cursor, bool) {
	token = strings.TrimRight(strings.TrimSpace(token), "=")
	if token == "" {
		return cursor{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return cursor{}, false
	}
	var c cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return cursor{}, false
	}
	if c.ID == "" {
		return cursor{}, false
	}
	if c.PublishedAt != nil && c.PublishedAt.IsZero() {
		return cursor{}, false
	}
	return c, true
}
