// Package tableview is the renderer-independent core of the assignments
// table: column model, filter options, sorting, filtering, responsive column
// visibility, row expansion and the row snapshot a renderer draws.
package tableview

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Locale bundles the fixed collation and date conventions of the table.
type Locale struct {
	tag      language.Tag
	location *time.Location
	layout   string

	mu       sync.Mutex
	collator *collate.Collator
}

var dateLayouts = map[string]string{
	"da": "2.1.2006",
	"nb": "2.1.2006",
	"de": "2.1.2006",
	"fi": "2.1.2006",
	"en": "1/2/2006",
	"sv": "2006-01-02",
}

// NewLocale resolves a BCP 47 tag and an IANA time zone name.
func NewLocale(tag, timeZone string) (*Locale, error) {
	parsed, err := language.Parse(tag)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", tag, err)
	}
	loc := time.UTC
	if timeZone != "" {
		loc, err = time.LoadLocation(timeZone)
		if err != nil {
			return nil, fmt.Errorf("time zone %q: %w", timeZone, err)
		}
	}
	base, _ := parsed.Base()
	layout, ok := dateLayouts[base.String()]
	if !ok {
		layout = "2006-01-02"
	}
	return &Locale{
		tag:      parsed,
		location: loc,
		layout:   layout,
		collator: collate.New(parsed),
	}, nil
}

// Tag returns the locale's language tag.
func (l *Locale) Tag() language.Tag {
	return l.tag
}

// Compare orders two strings by the locale's collation rules.
func (l *Locale) Compare(a, b string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collator.CompareString(a, b)
}

// FormatDate renders t as a short calendar date in the locale's time zone.
func (l *Locale) FormatDate(t time.Time) string {
	return t.In(l.location).Format(l.layout)
}
