// Package output serializes run results for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fintrackr/backend/internal/domain"
)

// WriteOptions configures where the run result is written
type WriteOptions struct {
	FilePath string // Output path (empty = stdout)
}

// WriteResult serializes a run result to JSON with 2-space indentation
func WriteResult(result *domain.RunResult, w io.Writer) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result as JSON: %w", err)
	}

	return nil
}

// WriteResultToFile writes a run result to file or stdout based on options
func WriteResultToFile(result *domain.RunResult, opts WriteOptions) (err error) {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	if opts.FilePath == "" {
		return WriteResult(result, os.Stdout)
	}

	f, err := os.Create(opts.FilePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", opts.FilePath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file %s: %w", opts.FilePath, closeErr)
		}
	}()

	if err = WriteResult(result, f); err != nil {
		return fmt.Errorf("failed to write result to %s: %w", opts.FilePath, err)
	}

	return nil
}

// LoadResult reads a previously written run result file
func LoadResult(filePath string) (*domain.RunResult, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	f, err := os.Open(filePath)
	if err != nil {
		// Return unwrapped error so caller can check os.IsNotExist
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", filePath, closeErr)
		}
	}()

	var result domain.RunResult
	if err := json.NewDecoder(f).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode result JSON: %w", err)
	}

	return &result, nil
}
