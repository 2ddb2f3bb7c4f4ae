// Package domain contains the core data structures and domain logic for the application.
package domain

// LanguageStats maps a language name to its percentage of a codebase.
// Values for one repository are expected to sum to roughly 100, but this
// is not enforced; detectors occasionally report partial coverage.
type LanguageStats map[string]float64

// RepoLanguages holds the detected language composition of a single repository.
type RepoLanguages struct {
	Slug  string        `json:"slug"`
	Stats LanguageStats `json:"stats"`
}

// ProjectLanguages holds the per-repository language composition of one
// project. Repos preserves the order in which repositories were recorded,
// which becomes the row order of the project's report sheet.
type ProjectLanguages struct {
	Key   string          `json:"key"`
	Repos []RepoLanguages `json:"repos"`
}

// Languages returns the union of all language names seen
// across the project's repositories. A language missing from one repository
// is treated as 0% for that repository, never as unknown.
func (p ProjectLanguages) Languages() map[string]struct{} {
	union := make(map[string]struct{})
	for _, repo := range p.Repos {
		for lang := range repo.Stats {
			union[lang] = struct{}{}
		}
	}
	return union
}
