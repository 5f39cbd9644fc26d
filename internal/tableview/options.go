package tableview

import (
	"sort"

	"github.com/drexxdk/tanstack-table/internal/assignment"
)

// DeriveGroupOptions returns the distinct groups present in list, keyed by
// title and ordered by the locale's collation. When a title occurs more than
// once the url of its last occurrence is kept.
func DeriveGroupOptions(list []assignment.Assignment, locale *Locale) []assignment.Link {
	var all []assignment.Link
	for _, item := range list {
		all = append(all, item.Groups...)
	}
	return distinctByTitle(all, locale)
}

// DeriveSubjectOptions returns the distinct subjects present in list, with the
// same deduplication and ordering rules as DeriveGroupOptions.
func DeriveSubjectOptions(list []assignment.Assignment, locale *Locale) []assignment.Link {
	all := make([]assignment.Link, 0, len(list))
	for _, item := range list {
		all = append(all, item.Subject)
	}
	return distinctByTitle(all, locale)
}

func distinctByTitle(links []assignment.Link, locale *Locale) []assignment.Link {
	index := make(map[string]int, len(links))
	out := make([]assignment.Link, 0, len(links))
	for _, link := range links {
		if at, ok := index[link.Title]; ok {
			out[at] = link
			continue
		}
		index[link.Title] = len(out)
		out = append(out, link)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return locale.Compare(out[i].Title, out[j].Title) < 0
	})
	return out
}
