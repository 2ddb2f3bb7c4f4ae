package analyzer

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, name, contents string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLocalAnalyzer_Analyze(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)
	a := NewLocalAnalyzer(logger)

	root := t.TempDir()
	// 8 lines of Go, 2 lines of Python: expect an 80/20 split.
	writeFile(t, root, "main.go", "package main\n"+strings.Repeat("// filler\n", 7))
	writeFile(t, root, "tools/run.py", "print(1)\nprint(2)\n")

	stats, err := a.Analyze(ctx, Target{Dir: root})
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.InDelta(t, 80.0, stats["Go"], 1e-9)
	assert.InDelta(t, 20.0, stats["Python"], 1e-9)
}

func TestLocalAnalyzer_SkipsNonCodeContent(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)
	a := NewLocalAnalyzer(logger)

	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	// Vendored trees, dotfiles, git metadata and binaries never count.
	writeFile(t, root, "vendor/lib/lib.js", "console.log(1)\n")
	writeFile(t, root, "node_modules/pkg/index.js", "console.log(2)\n")
	writeFile(t, root, ".hidden.py", "print(1)\n")
	writeFile(t, root, ".git/config", "[core]\n")
	writeFile(t, root, "blob.bin", "\x00\x01\x02\x03")

	stats, err := a.Analyze(ctx, Target{Dir: root})
	require.NoError(t, err)

	require.Len(t, stats, 1)
	assert.InDelta(t, 100.0, stats["Go"], 1e-9)
}

func TestLocalAnalyzer_EmptyTree(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)
	a := NewLocalAnalyzer(logger)

	stats, err := a.Analyze(ctx, Target{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestLocalAnalyzer_MissingPath(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)
	a := NewLocalAnalyzer(logger)

	stats, err := a.Analyze(ctx, Target{Dir: filepath.Join(t.TempDir(), "does-not-exist")})
	assert.Error(t, err)
	// Callers treat the empty result as "no data", not as a run-aborting failure.
	assert.Empty(t, stats)
}
