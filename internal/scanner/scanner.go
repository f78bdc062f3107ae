// Package scanner finds statement PDFs under a directory tree for bulk CLI
// ingestion.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Scanner walks a directory tree and finds statement documents
type Scanner struct {
	rootDir string
}

// New creates a new scanner for the given root directory
func New(rootDir string) *Scanner {
	return &Scanner{rootDir: rootDir}
}

// ScanResult represents a found statement document
type ScanResult struct {
	Path       string
	Filename   string
	Size       int64
	ModTime    time.Time
	DetectedAt time.Time
}

// Scan walks the directory tree and returns all statement PDFs, sorted by
// path for deterministic ingest order.
func (s *Scanner) Scan() ([]ScanResult, error) {
	var results []ScanResult

	rootDir := s.expandHome(s.rootDir)

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		if !s.isStatementFile(path) {
			return nil
		}

		results = append(results, ScanResult{
			Path:       path,
			Filename:   filepath.Base(path),
			Size:       info.Size(),
			ModTime:    info.ModTime(),
			DetectedAt: time.Now(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

// isStatementFile checks if file is a statement document
func (s *Scanner) isStatementFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}

// expandHome expands ~ to home directory
func (s *Scanner) expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
