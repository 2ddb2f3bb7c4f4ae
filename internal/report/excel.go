// Package report renders aggregated language statistics as a multi-sheet
// workbook and as a console summary table.
package report

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"

	"github.com/oss-metrics/repolang/internal/domain"
)

// summarySheet is the name of the cross-project summary sheet.
const summarySheet = "Overall Summary"

// maxSheetName is the xlsx format's sheet name length limit.
const maxSheetName = 31

// ExcelWriter writes the collected statistics to an xlsx workbook:
// one sheet per project plus the overall summary.
type ExcelWriter struct {
	logger *log.Logger
}

// NewExcelWriter creates a new ExcelWriter instance.
func NewExcelWriter(logger *log.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

// Write produces the workbook at path. Project sheets appear in recording
// order with one row per repository and one column per language in the
// project's union; a (repository, language) pair the detector never
// reported renders as 0. Projects without repositories get no sheet.
func (w *ExcelWriter) Write(projects []domain.ProjectLanguages, overall domain.LanguageStats, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	used := map[string]bool{summarySheet: true, "Sheet1": true}
	for _, project := range projects {
		if len(project.Repos) == 0 {
			continue
		}
		name := sheetName(project.Key, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet for %s: %w", project.Key, err)
		}
		if err := w.writeProjectSheet(f, name, project); err != nil {
			return fmt.Errorf("failed to write sheet for %s: %w", project.Key, err)
		}
		w.logger.Printf("Wrote sheet %q with %d rows.", name, len(project.Repos))
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := w.writeSummarySheet(f, projects, overall); err != nil {
		return fmt.Errorf("failed to write summary sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook to %s: %w", path, err)
	}
	w.logger.Printf("Workbook saved to %s.", path)
	return nil
}

func (w *ExcelWriter) writeProjectSheet(f *excelize.File, sheet string, project domain.ProjectLanguages) error {
	languages := sortedLanguages(project)

	if err := setCell(f, sheet, 1, 1, "Repository"); err != nil {
		return err
	}
	for i, lang := range languages {
		if err := setCell(f, sheet, i+2, 1, lang); err != nil {
			return err
		}
	}

	for rowIdx, repo := range project.Repos {
		row := rowIdx + 2
		if err := setCell(f, sheet, 1, row, repo.Slug); err != nil {
			return err
		}
		for colIdx, lang := range languages {
			// Missing languages map to 0 for this repository.
			if err := setCell(f, sheet, colIdx+2, row, repo.Stats[lang]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *ExcelWriter) writeSummarySheet(f *excelize.File, projects []domain.ProjectLanguages, overall domain.LanguageStats) error {
	headers := []string{"Language", "Percentage", "Mean", "Max"}
	for i, h := range headers {
		if err := setCell(f, summarySheet, i+1, 1, h); err != nil {
			return err
		}
	}

	observations := perLanguageObservations(projects)
	for rowIdx, lang := range summaryOrder(overall) {
		row := rowIdx + 2
		if err := setCell(f, summarySheet, 1, row, lang); err != nil {
			return err
		}
		if err := setCell(f, summarySheet, 2, row, overall[lang]); err != nil {
			return err
		}
		mean, _ := stats.Mean(observations[lang])
		max, _ := stats.Max(observations[lang])
		if err := setCell(f, summarySheet, 3, row, mean); err != nil {
			return err
		}
		if err := setCell(f, summarySheet, 4, row, max); err != nil {
			return err
		}
	}
	return nil
}

// perLanguageObservations collects, for each language, the percentage it
// reached in every repository where the detector reported it.
func perLanguageObservations(projects []domain.ProjectLanguages) map[string][]float64 {
	observations := make(map[string][]float64)
	for _, project := range projects {
		for _, repo := range project.Repos {
			for lang, pct := range repo.Stats {
				observations[lang] = append(observations[lang], pct)
			}
		}
	}
	return observations
}

// summaryOrder sorts languages by descending share, ties by name.
func summaryOrder(overall domain.LanguageStats) []string {
	langs := make([]string, 0, len(overall))
	for lang := range overall {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if overall[langs[i]] != overall[langs[j]] {
			return overall[langs[i]] > overall[langs[j]]
		}
		return langs[i] < langs[j]
	})
	return langs
}

// sortedLanguages returns the project's language union in alphabetical
// order, so column layout is deterministic across runs.
func sortedLanguages(project domain.ProjectLanguages) []string {
	union := project.Languages()
	langs := make([]string, 0, len(union))
	for lang := range union {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

var sheetNameSanitizer = strings.NewReplacer(
	"[", "-", "]", "-", ":", "-", "*", "-", "?", "-", "/", "-", "\\", "-",
)

// sheetName derives a valid, unique sheet name from a project key: the
// characters the xlsx format forbids become dashes, the result is clipped
// to 31 characters, and a numeric suffix resolves collisions.
func sheetName(key string, used map[string]bool) string {
	name := sheetNameSanitizer.Replace(key)
	if name == "" {
		name = "Project"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	base := name
	for i := 2; used[name]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		name = trimmed + suffix
	}
	used[name] = true
	return name
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
