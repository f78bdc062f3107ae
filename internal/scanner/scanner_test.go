package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()

	// tmpDir/
	//   2025/
	//     january.pdf
	//     february.PDF
	//   notes.txt
	//   statement.csv
	yearDir := filepath.Join(tmpDir, "2025")
	require.NoError(t, os.MkdirAll(yearDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(yearDir, "january.pdf"), []byte("%PDF"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(yearDir, "february.PDF"), []byte("%PDF"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "statement.csv"), []byte("x"), 0644))

	scanner := New(tmpDir)
	results, err := scanner.Scan()
	require.NoError(t, err)

	require.Len(t, results, 2, "should find only the PDF files")
	// Sorted by path for deterministic ingest order
	assert.Equal(t, "february.PDF", results[0].Filename)
	assert.Equal(t, "january.pdf", results[1].Filename)

	for _, result := range results {
		assert.NotEmpty(t, result.Path)
		assert.Positive(t, result.Size)
		assert.False(t, result.ModTime.IsZero())
		assert.False(t, result.DetectedAt.IsZero())
	}
}

func TestScanner_Scan_NonExistentDirectory(t *testing.T) {
	scanner := New("/nonexistent/directory/path")
	results, err := scanner.Scan()

	assert.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "scan failed")
}

func TestScanner_Scan_EmptyDirectory(t *testing.T) {
	scanner := New(t.TempDir())
	results, err := scanner.Scan()

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScanner_Scan_IgnoresDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	// A directory that looks like a statement file
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "statement.pdf"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "real.pdf"), []byte("%PDF"), 0644))

	scanner := New(tmpDir)
	results, err := scanner.Scan()

	require.NoError(t, err)
	require.Len(t, results, 1, "should only find the file, not the directory")
	assert.Contains(t, results[0].Path, "real.pdf")
}

func TestIsStatementFile(t *testing.T) {
	scanner := New("")

	tests := []struct {
		path     string
		expected bool
	}{
		{"statement.pdf", true},
		{"STATEMENT.PDF", true},
		{"Statement.Pdf", true},
		{"/path/to/file.pdf", true},
		{"document.txt", false},
		{"statement.csv", false},
		{"statement.ofx", false},
		{"noextension", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, scanner.isStatementFile(tt.path))
		})
	}
}

func TestExpandHome(t *testing.T) {
	scanner := New("")

	homeDir, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(homeDir, "statements"), scanner.expandHome("~/statements"))
	assert.Equal(t, "/absolute/path", scanner.expandHome("/absolute/path"))
	assert.Equal(t, "relative/path", scanner.expandHome("relative/path"))
	assert.Equal(t, "", scanner.expandHome(""))
	assert.Equal(t, "~", scanner.expandHome("~"), "lone tilde is not expanded")
}
