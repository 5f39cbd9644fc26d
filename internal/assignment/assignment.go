// Package assignment holds the row entity of the assignments table and its
// JSON wire shape.
package assignment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Link is a display label paired with a navigable URL.
type Link struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Period is the date range during which an assignment is active. Start is not
// required to precede End.
type Period struct {
	Start Date `json:"start" yaml:"start"`
	End   Date `json:"end" yaml:"end"`
}

// Ordered reports whether the period starts on or before its end.
func (p Period) Ordered() bool {
	return !p.Start.After(p.End.Time)
}

// Assignment is one school task as served by the table endpoint.
type Assignment struct {
	ID                 string `json:"id" yaml:"id"`
	Groups             []Link `json:"groups" yaml:"groups"`
	Subject            Link   `json:"subject" yaml:"subject"`
	Portal             Link   `json:"portal" yaml:"portal"`
	LearningMaterial   Link   `json:"learningMaterial" yaml:"learningMaterial"`
	Period             Period `json:"period" yaml:"period"`
	ExternalManagement *Link  `json:"externalManagement,omitempty" yaml:"externalManagement,omitempty"`
}

// Managed reports whether the assignment is managed by an external system.
func (a Assignment) Managed() bool {
	return a.ExternalManagement != nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Date is a point in time decoded from an ISO-8601 string.
type Date struct {
	time.Time
}

// NewDate wraps t.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// ParseDate accepts RFC 3339 timestamps (with or without fractional seconds),
// zone-less timestamps and bare calendar dates.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognised date %q", raw)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("date is null")
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.UTC().Format(time.RFC3339)), nil
}

// Validate checks the invariants of a freshly decoded list: every record has
// an id and no id occurs twice.
func Validate(list []Assignment) error {
	seen := make(map[string]int, len(list))
	for idx, item := range list {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("assignment %d has no id", idx)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("duplicate assignment id %q at %d and %d", id, prev, idx)
		}
		seen[id] = idx
	}
	return nil
}
