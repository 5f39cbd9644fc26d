package fixtures

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drexxdk/tanstack-table/internal/assignment"
)

func TestDefaultIsValidAndFresh(t *testing.T) {
	first := Default()
	second := Default()
	require.Len(t, first, 4)
	require.NoError(t, assignment.Validate(first))
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.True(t, first[1].Managed())
	assert.Len(t, first[0].Groups, 4)
}

func TestParseYAML(t *testing.T) {
	doc := []byte(`
assignments:
  - id: fixed
    groups:
      - {title: "5. B", url: "https://example.com/5b"}
    subject: {title: Dansk, url: "https://example.com/d"}
    portal: {title: Danskportalen, url: "https://example.com/p"}
    learningMaterial: {title: Evolution, url: "https://example.com/e"}
    start: 2025-05-10
    end: "2025-05-14T00:00:00Z"
  - subject: {title: Biologi, url: "https://example.com/b"}
    start: 2025-06-01
    end: 2025-06-02
    externalManagement: {title: "", url: "https://example.com/x"}
`)
	list, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "fixed", list[0].ID)
	assert.Equal(t, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), list[0].Period.Start.UTC())
	assert.NotEmpty(t, list[1].ID)
	assert.NotNil(t, list[1].Groups)
	assert.True(t, list[1].Managed())
}

func TestParseRejectsBadDates(t *testing.T) {
	_, err := Parse([]byte("assignments:\n  - id: a\n    start: soon\n    end: 2025-01-01\n"))
	assert.ErrorContains(t, err, "start")
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	doc := "assignments:\n  - {id: a, start: 2025-01-01, end: 2025-01-02}\n  - {id: a, start: 2025-01-01, end: 2025-01-02}\n"
	_, err := Parse([]byte(doc))
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assignments: []\n"), 0o644))
	list, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
