package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oss-metrics/repolang/internal/domain"
)

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, domain.LanguageStats{"Go": 75.5, "Shell": 24.5})

	out := buf.String()
	assert.Contains(t, out, "Go")
	assert.Contains(t, out, "75.50")
	assert.Contains(t, out, "Shell")
	assert.Contains(t, out, "24.50")
	// Largest share renders first.
	assert.Less(t, strings.Index(out, "Go"), strings.Index(out, "Shell"))
}

func TestRenderSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, domain.LanguageStats{})

	assert.Contains(t, buf.String(), "LANGUAGE")
}
