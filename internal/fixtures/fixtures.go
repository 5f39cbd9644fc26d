// Package fixtures provides the sample assignments served by the mock API.
package fixtures

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/drexxdk/tanstack-table/internal/assignment"
)

const exampleURL = "https://example.com/"

func link(title string) assignment.Link {
	return assignment.Link{Title: title, URL: exampleURL}
}

func links(titles ...string) []assignment.Link {
	out := make([]assignment.Link, len(titles))
	for i, title := range titles {
		out[i] = link(title)
	}
	return out
}

func day(year int, month time.Month, d int) assignment.Date {
	return assignment.NewDate(time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
}

// Default returns the built-in sample set. Ids are freshly generated on every
// call.
func Default() []assignment.Assignment {
	return []assignment.Assignment{
		{
			ID:               uuid.NewString(),
			Groups:           links("5. B", "1. A", "2. A", "3. A"),
			Subject:          link("Matematik"),
			Portal:           link("Matematikportalen"),
			LearningMaterial: link("Ny tildeling"),
			Period:           assignment.Period{Start: day(2025, time.April, 4), End: day(2025, time.April, 8)},
		},
		{
			ID:                 uuid.NewString(),
			Groups:             links("5. B", "6. B"),
			Subject:            link("Matematik"),
			Portal:             link("Matematikfessor"),
			LearningMaterial:   link("Hundreder"),
			Period:             assignment.Period{Start: day(2025, time.April, 4), End: day(2025, time.April, 8)},
			ExternalManagement: &assignment.Link{Title: "", URL: exampleURL},
		},
		{
			ID:               uuid.NewString(),
			Groups:           links("Læsehold 1", "5. B", "6. B"),
			Subject:          link("Dansk"),
			Portal:           link("Danskportalen"),
			LearningMaterial: link("Helte og antihelte"),
			Period:           assignment.Period{Start: day(2025, time.April, 16), End: day(2025, time.April, 20)},
		},
		{
			ID:               uuid.NewString(),
			Groups:           links("Læsehold 3"),
			Subject:          link("Biologi"),
			Portal:           link("Biologiportalen"),
			LearningMaterial: link("Evolution"),
			Period:           assignment.Period{Start: day(2025, time.May, 10), End: day(2025, time.May, 14)},
		},
	}
}

type fixtureFile struct {
	Assignments []fixtureRecord `yaml:"assignments"`
}

type fixtureRecord struct {
	ID                 string            `yaml:"id"`
	Groups             []assignment.Link `yaml:"groups"`
	Subject            assignment.Link   `yaml:"subject"`
	Portal             assignment.Link   `yaml:"portal"`
	LearningMaterial   assignment.Link   `yaml:"learningMaterial"`
	Start              string            `yaml:"start"`
	End                string            `yaml:"end"`
	ExternalManagement *assignment.Link  `yaml:"externalManagement,omitempty"`
}

// Load reads a YAML fixture file. Records without an id get a generated one.
func Load(path string) ([]assignment.Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML fixture document.
func Parse(data []byte) ([]assignment.Assignment, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	out := make([]assignment.Assignment, 0, len(file.Assignments))
	for idx, rec := range file.Assignments {
		start, err := assignment.ParseDate(rec.Start)
		if err != nil {
			return nil, fmt.Errorf("fixture %d start: %w", idx, err)
		}
		end, err := assignment.ParseDate(rec.End)
		if err != nil {
			return nil, fmt.Errorf("fixture %d end: %w", idx, err)
		}
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		groups := rec.Groups
		if groups == nil {
			groups = []assignment.Link{}
		}
		out = append(out, assignment.Assignment{
			ID:                 id,
			Groups:             groups,
			Subject:            rec.Subject,
			Portal:             rec.Portal,
			LearningMaterial:   rec.LearningMaterial,
			Period:             assignment.Period{Start: start, End: end},
			ExternalManagement: rec.ExternalManagement,
		})
	}
	if err := assignment.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}
