package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"sql-guard/internal/config"
	"sql-guard/internal/model"
)

// MigrationWalker discovers the SQL files to check under a path.
//
// A file path is checked as-is. A directory is scanned one level deep:
// each migration subdirectory contributes its up.sql (and down.sql when
// check_down is set), filtered by the configured start_after timestamp;
// loose .sql files directly in the directory are always checked.
type MigrationWalker struct {
	cfg *config.Config
}

func NewMigrationWalker(cfg *config.Config) *MigrationWalker {
	return &MigrationWalker{cfg: cfg}
}

// Discover returns the ordered list of files to analyze for path.
func (w *MigrationWalker) Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			if !w.cfg.ShouldCheckMigration(entry.Name()) {
				continue
			}
			up := filepath.Join(path, entry.Name(), "up.sql")
			if fileExists(up) {
				files = append(files, up)
			}
			if w.cfg.CheckDown {
				down := filepath.Join(path, entry.Name(), "down.sql")
				if fileExists(down) {
					files = append(files, down)
				}
			}
			continue
		}
		// Loose SQL files are always checked; the timestamp filter only
		// applies to migration directories.
		if strings.EqualFold(filepath.Ext(entry.Name()), ".sql") {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FileResult pairs one analyzed file with its report or failure. A failed
// file never blocks or corrupts the analysis of the others.
type FileResult struct {
	File   string
	Report model.FileReport
	Err    error
}

// Processor analyzes one file
type Processor func(path string) (model.FileReport, error)

// WorkerPool runs the processor over files concurrently. Each file's
// analysis is independent, so concurrency needs no locking beyond the
// result slots.
type WorkerPool struct {
	Concurrency int
	Processor   Processor
}

func NewWorkerPool(concurrency int, proc Processor) *WorkerPool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &WorkerPool{
		Concurrency: concurrency,
		Processor:   proc,
	}
}

// Run processes all paths and returns results in input order.
func (wp *WorkerPool) Run(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < wp.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				report, err := wp.Processor(paths[idx])
				results[idx] = FileResult{File: paths[idx], Report: report, Err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := range paths {
			select {
			case jobs <- idx:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	return results
}
