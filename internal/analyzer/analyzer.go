// Package analyzer determines the language composition of a repository.
package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/src-d/enry/v2"

	"github.com/oss-metrics/repolang/internal/domain"
)

// Target identifies one repository to analyze: its remote coordinates and,
// for local analysis, the working copy path.
type Target struct {
	ProjectKey string
	Slug       string
	Dir        string
}

// Analyzer defines the behavior of a language-composition detector.
type Analyzer interface {
	Analyze(ctx context.Context, target Target) (domain.LanguageStats, error)
}

// maxFileSize caps how much of a working copy file is considered.
// Larger files are almost always generated or vendored artifacts.
const maxFileSize = 1 << 20

// LocalAnalyzer classifies the files of a local working copy with enry and
// reports the share of code lines per language.
type LocalAnalyzer struct {
	logger *log.Logger
}

// NewLocalAnalyzer creates an analyzer that inspects cloned working copies.
func NewLocalAnalyzer(logger *log.Logger) *LocalAnalyzer {
	return &LocalAnalyzer{logger: logger}
}

// Analyze walks the working copy at target.Dir and returns the percentage
// of lines per detected language. Vendored paths, dotfiles, binaries and
// non-code languages (data, prose) are excluded, matching what language
// detectors conventionally count.
func (a *LocalAnalyzer) Analyze(ctx context.Context, target Target) (domain.LanguageStats, error) {
	a.logger.Printf("Analyzing languages in %s...", target.Dir)

	lineCounts := make(map[string]int)
	totalLines := 0

	err := filepath.WalkDir(target.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, relErr := filepath.Rel(target.Dir, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if d.Name() == ".git" || (rel != "." && enry.IsVendor(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || enry.IsVendor(rel) || enry.IsDotFile(rel) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil || info.Size() > maxFileSize {
			return nil
		}

		contents, readErr := os.ReadFile(path)
		if readErr != nil {
			// Unreadable files are skipped, not fatal for the repository.
			return nil
		}
		if enry.IsBinary(contents) {
			return nil
		}

		lang := enry.GetLanguage(filepath.Base(path), contents)
		if lang == "" {
			return nil
		}
		if t := enry.GetLanguageType(lang); t != enry.Programming && t != enry.Markup {
			return nil
		}

		lines := countLines(contents)
		lineCounts[lang] += lines
		totalLines += lines
		return nil
	})
	if err != nil {
		return domain.LanguageStats{}, fmt.Errorf("failed to analyze %s: %w", target.Dir, err)
	}

	stats := make(domain.LanguageStats, len(lineCounts))
	if totalLines == 0 {
		return stats, nil
	}
	for lang, lines := range lineCounts {
		stats[lang] = float64(lines) / float64(totalLines) * 100
	}
	a.logger.Printf("Detected %d languages in %s.", len(stats), target.Dir)
	return stats, nil
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte("\n"))
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}
