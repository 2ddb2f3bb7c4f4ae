package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/oss-metrics/repolang/internal/domain"
)

// RenderSummary prints the normalized overall language shares as a table,
// largest share first. An empty overall map renders just the header, which
// is what a run with no successfully analyzed repositories produces.
func RenderSummary(w io.Writer, overall domain.LanguageStats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Language", "Share %"})
	for _, lang := range summaryOrder(overall) {
		t.AppendRow(table.Row{lang, fmt.Sprintf("%.2f", overall[lang])})
	}
	t.Render()
}
