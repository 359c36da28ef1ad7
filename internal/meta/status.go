package meta

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the lifecycle state of a record.
type Status string

const (
	StatusActive      Status = "active"
	StatusArchive     Status = "archive"
	StatusDeleted     Status = "deleted"
	StatusSuccess     Status = "success"
	StatusFailed      Status = "failed"
	StatusPublished   Status = "published"
	StatusUnpublished Status = "unpublished"
)

// Statuses lists every status in declaration order.
var Statuses = []Status{
	StatusActive,
	StatusArchive,
	StatusDeleted,
	StatusSuccess,
	StatusFailed,
	StatusPublished,
	StatusUnpublished,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
