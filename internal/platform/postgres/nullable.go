package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phrazzld/learnpath/internal/domain"
)

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func datePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	d := domain.DateOf(nt.Time)
	return &d
}

// encodeAttributes renders structured values as JSONB; nil maps become NULL.
func encodeAttributes(a domain.Attributes) (any, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes: %w", err)
	}
	return b, nil
}

func decodeAttributes(b []byte) (domain.Attributes, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var a domain.Attributes
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}
	return a, nil
}

// encodeStrings renders a string list as a JSONB array; nil becomes NULL.
func encodeStrings(s []string) (any, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}
	return b, nil
}

func decodeStrings(b []byte) ([]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var s []string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to decode string list: %w", err)
	}
	return s, nil
}
