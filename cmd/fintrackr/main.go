package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fintrackr/backend/internal/config"
	"github.com/fintrackr/backend/internal/domain"
	"github.com/fintrackr/backend/internal/extract"
	"github.com/fintrackr/backend/internal/ledger/sqlite"
	"github.com/fintrackr/backend/internal/output"
	"github.com/fintrackr/backend/internal/pipeline"
	"github.com/fintrackr/backend/internal/scanner"
	"github.com/fintrackr/backend/internal/server"
	"github.com/fintrackr/backend/internal/ui"
)

const (
	version = "0.1.0"
)

var (
	// Global flags
	versionFlag = flag.Bool("version", false, "Show version")

	// Server mode flags
	serveMode  = flag.Bool("serve", false, "Run the HTTP API server")
	configFile = flag.String("config", "", "Config YAML file (default: embedded config)")
	projectID  = flag.String("project", "", "Firebase project ID (overrides config)")

	// Local mode flags
	inputPath  = flag.String("input", "", "Statement PDF or directory of PDFs (required unless -serve)")
	userID     = flag.String("user", "local", "Owner ID for the local ledger")
	password   = flag.String("password", "", "Password for encrypted statement PDFs")
	dbPath     = flag.String("db", "fintrackr.db", "Local SQLite ledger file")
	goal       = flag.Float64("goal", 3000.0, "Spending goal per statement in rupees")
	outputFile = flag.String("output", "", "Output JSON file (default: stdout, single input only)")
	verbose    = flag.Bool("verbose", false, "Show detailed processing logs")
)

func main() {
	// Custom usage message
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `fintrackr - Bank statement parser and expense ledger

Usage:
  fintrackr [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Parse one statement into the local ledger
  fintrackr -input statement.pdf -password SECRET

  # Parse a directory of statements for a named user
  fintrackr -input ~/statements -user alice -db alice.db

  # Run the HTTP API server
  fintrackr -serve -config config.yaml

`)
	}

	flag.Parse()

	// Handle version flag
	if *versionFlag {
		fmt.Printf("fintrackr version %s\n", version)
		os.Exit(0)
	}

	if *serveMode {
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Validate required flags
	if *inputPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -input flag is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := runLocal(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runServe starts the HTTP API backed by Firestore. It blocks until the
// process receives SIGINT or SIGTERM.
func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFromFile(*configFile)
	} else {
		cfg, err = config.LoadEmbedded()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *projectID != "" {
		cfg.ProjectID = *projectID
	}
	if cfg.ProjectID == "" {
		return fmt.Errorf("no Firebase project configured: set project_id in the config file or pass -project")
	}

	srv, err := server.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	errc := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "Listening on %s (project %s)\n", cfg.ListenAddr, cfg.ProjectID)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "\nShutting down\n")
		return httpServer.Shutdown(context.Background())
	}
}

// runLocal processes statement PDFs into a SQLite ledger on disk.
func runLocal() error {
	ctx := context.Background()

	if !*verbose {
		ui.Header("Processing Bank Statements")
		ui.Step(1, 4, "Scanning for statements")
	} else {
		fmt.Fprintf(os.Stderr, "Scanning input: %s\n", *inputPath)
	}

	files, err := collectInputs(*inputPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no statement PDFs found in %s\n\nPlease check:\n  - Directory path is correct\n  - Files have the .pdf extension\n  - You have read permissions on the directory and files", *inputPath)
	}
	if *outputFile != "" && len(files) > 1 {
		return fmt.Errorf("-output requires a single input statement, found %d", len(files))
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Found %d statement files\n", len(files))
		for _, f := range files {
			fmt.Fprintf(os.Stderr, "  - %s\n", f)
		}
	} else {
		ui.Success(fmt.Sprintf("Found %d statement files", len(files)))
		ui.Step(2, 4, "Opening local ledger")
	}

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open ledger %s: %w", *dbPath, err)
	}
	defer store.Close()

	pipe := pipeline.NewPipeline(extract.NewPDFExtractor(), store, *goal, nil)

	if !*verbose {
		ui.Step(3, 4, "Parsing and merging statements")
	}

	var lastResult *domain.RunResult
	for i, path := range files {
		if *verbose {
			fmt.Fprintf(os.Stderr, "  Processing %s\n", path)
		} else if len(files) > 1 {
			percentage := float64(i+1) / float64(len(files)) * 100
			fmt.Fprintf(os.Stderr, "\r  Progress: %d/%d files (%.0f%%)...", i+1, len(files), percentage)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		result := pipe.Run(ctx, "", *userID, data, *password)
		if result.Status != domain.StatusSuccess {
			if !*verbose && len(files) > 1 {
				fmt.Fprintf(os.Stderr, "\n")
			}
			if result.Message == pipeline.IncorrectPasswordMessage {
				return fmt.Errorf("statement %s is password protected: pass the correct -password", path)
			}
			return fmt.Errorf("processing failed for file %d of %d (%s): %s",
				i+1, len(files), path, result.Message)
		}
		lastResult = result
		reportRun(path, result)
	}

	if !*verbose && len(files) > 1 {
		fmt.Fprintf(os.Stderr, "\r  Progress: %d/%d files (100%%) - Complete!\n", len(files), len(files))
	}

	if !*verbose {
		ui.Step(4, 4, "Writing output")
	}

	if *outputFile != "" {
		opts := output.WriteOptions{FilePath: *outputFile}
		if err := output.WriteResultToFile(lastResult, opts); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if *verbose {
			fmt.Printf("\nOutput written to %s\n", *outputFile)
		} else {
			ui.Success(fmt.Sprintf("Output written to %s", *outputFile))
		}
		return nil
	}

	// Single file without -output goes to stdout for piping.
	if len(files) == 1 {
		return output.WriteResultToFile(lastResult, output.WriteOptions{})
	}
	return nil
}

// collectInputs resolves -input to a list of PDF paths. A directory is
// scanned recursively, a file is taken as-is.
func collectInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	results, err := scanner.New(path).Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
	}
	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	return paths, nil
}

// reportRun prints the per-statement summary to stderr.
func reportRun(path string, result *domain.RunResult) {
	if result.Data == nil {
		return
	}
	d := result.Data
	if *verbose {
		fmt.Fprintf(os.Stderr, "  %s: %d transactions, %s (difference %s)\n",
			path, len(d.Transactions), d.OverallGoalStatus, ui.FormatINR(d.OverallDifference))
		fmt.Fprintf(os.Stderr, "    %s\n", d.UploadResult.Message)
		return
	}
	switch d.OverallGoalStatus {
	case domain.GoalStatusExceeded:
		ui.Warning(fmt.Sprintf("%s: %d transactions, exceeded goal by %s",
			path, len(d.Transactions), ui.FormatINR(-d.OverallDifference)))
	default:
		ui.Info(fmt.Sprintf("%s: %d transactions, %s under goal",
			path, len(d.Transactions), ui.FormatINR(d.OverallDifference)))
	}
}
