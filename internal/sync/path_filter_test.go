package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFilterMarker(t *testing.T) {
	f := NewPathFilter()

	cases := []struct {
		path     string
		excluded bool
	}{
		{"notes/a.md", false},
		{".obsidian/workspace.json", true},
		{"notes/.trash/a.md", true},
		{"notes/sub/.hidden", true},
		{"a.md", false},
		{"notes/a.sync-conflict.20250101000000.md", false},
		{".kisss3/journal.db", true},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.excluded, f.IsExcluded(tc.path))
		})
	}
}

func TestPathFilterIgnoreRules(t *testing.T) {
	dir := t.TempDir()
	ignorePath := filepath.Join(dir, ".kisss3ignore")
	require.NoError(t, os.WriteFile(ignorePath, []byte("drafts/\n# a comment\n*.bak\n"), 0o644))

	f := NewPathFilter()
	f.LoadIgnoreFile(ignorePath)

	assert.True(t, f.IsExcluded("drafts/wip.md"))
	assert.True(t, f.IsExcluded("notes/old.bak"))
	assert.True(t, f.IsExcluded("scratch.tmp"), "default rules still apply")
	assert.False(t, f.IsExcluded("notes/a.md"))
}

func TestPathFilterWithoutIgnoreFile(t *testing.T) {
	f := NewPathFilter()
	f.LoadIgnoreFile(filepath.Join(t.TempDir(), "missing"))

	assert.True(t, f.IsExcluded("a.tmp"))
	assert.False(t, f.IsExcluded("a.md"))
}
