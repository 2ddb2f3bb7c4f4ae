package report

import (
	"io"
	"log"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/oss-metrics/repolang/internal/domain"
)

func testProjects() []domain.ProjectLanguages {
	return []domain.ProjectLanguages{
		{
			Key: "P1",
			Repos: []domain.RepoLanguages{
				{Slug: "r1", Stats: domain.LanguageStats{"Go": 80, "Shell": 20}},
				{Slug: "r2", Stats: domain.LanguageStats{"Go": 50, "Python": 50}},
			},
		},
		{
			Key: "P2",
			Repos: []domain.RepoLanguages{
				{Slug: "r3", Stats: domain.LanguageStats{"Rust": 100}},
			},
		},
	}
}

func testOverall() domain.LanguageStats {
	return domain.LanguageStats{
		"Go":     130.0 / 300.0 * 100,
		"Shell":  20.0 / 300.0 * 100,
		"Python": 50.0 / 300.0 * 100,
		"Rust":   100.0 / 300.0 * 100,
	}
}

func writeWorkbook(t *testing.T, projects []domain.ProjectLanguages, overall domain.LanguageStats) *excelize.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	w := NewExcelWriter(log.New(io.Discard, "", 0))
	require.NoError(t, w.Write(projects, overall, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExcelWriter_Write(t *testing.T) {
	f := writeWorkbook(t, testProjects(), testOverall())

	assert.Equal(t, []string{"P1", "P2", summarySheet}, f.GetSheetList())

	rows, err := f.GetRows("P1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// Columns are the sorted union of the project's languages.
	assert.Equal(t, []string{"Repository", "Go", "Python", "Shell"}, rows[0])
	// Rows keep recording order; unreported languages render as 0.
	assert.Equal(t, []string{"r1", "80", "0", "20"}, rows[1])
	assert.Equal(t, []string{"r2", "50", "50", "0"}, rows[2])

	rows, err = f.GetRows("P2")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Repository", "Rust"}, rows[0])
	assert.Equal(t, []string{"r3", "100"}, rows[1])
}

func TestExcelWriter_SummarySheet(t *testing.T) {
	f := writeWorkbook(t, testProjects(), testOverall())

	rows, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Language", "Percentage", "Mean", "Max"}, rows[0])

	// Descending by share: Go, Rust, Python, Shell.
	assert.Equal(t, "Go", rows[1][0])
	assert.Equal(t, "Rust", rows[2][0])
	assert.Equal(t, "Python", rows[3][0])
	assert.Equal(t, "Shell", rows[4][0])

	goPct, err := strconv.ParseFloat(rows[1][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 43.33, goPct, 0.01)

	// Mean and max are taken over repositories that reported the language.
	goMean, err := strconv.ParseFloat(rows[1][2], 64)
	require.NoError(t, err)
	assert.InDelta(t, 65.0, goMean, 1e-9)
	goMax, err := strconv.ParseFloat(rows[1][3], 64)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, goMax, 1e-9)
}

func TestExcelWriter_SkipsEmptyProjects(t *testing.T) {
	projects := []domain.ProjectLanguages{
		{Key: "Empty"},
		{
			Key: "P1",
			Repos: []domain.RepoLanguages{
				{Slug: "r1", Stats: domain.LanguageStats{"Go": 100}},
			},
		},
	}
	f := writeWorkbook(t, projects, domain.LanguageStats{"Go": 100})

	assert.Equal(t, []string{"P1", summarySheet}, f.GetSheetList())
}

func TestExcelWriter_EmptyRun(t *testing.T) {
	f := writeWorkbook(t, nil, domain.LanguageStats{})

	assert.Equal(t, []string{summarySheet}, f.GetSheetList())
	rows, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Language", "Percentage", "Mean", "Max"}, rows[0])
}

func TestSheetName(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		expected string
	}{
		{name: "plain key passes through", key: "PLATFORM", expected: "PLATFORM"},
		{name: "forbidden characters become dashes", key: "ops/infra: [prod]*?", expected: "ops-infra- -prod---"},
		{name: "long keys are clipped to 31 characters", key: "an-extremely-long-project-key-name-beyond-the-limit", expected: "an-extremely-long-project-key-n"},
		{name: "empty key gets a placeholder", key: "", expected: "Project"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			used := map[string]bool{}
			assert.Equal(t, tc.expected, sheetName(tc.key, used))
		})
	}
}

func TestSheetName_Collisions(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "team-a", sheetName("team/a", used))
	// A different key sanitizing to the same name gets a numeric suffix.
	assert.Equal(t, "team-a (2)", sheetName("team:a", used))
	assert.Equal(t, "team-a (3)", sheetName("team*a", used))
}
