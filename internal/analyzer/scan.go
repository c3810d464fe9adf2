package analyzer

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Scan analyzes every HDL source under the given roots in parallel. A
// root may be a single file or a directory searched with the configured
// include globs. Per-file failures land in that file's report; the scan
// itself only fails on an unreadable root or a canceled context.
// Reports come back in resolved file order regardless of which finished
// first.
func (a *Analyzer) Scan(ctx context.Context, roots []string) ([]Report, error) {
	files, err := a.collectFiles(roots)
	if err != nil {
		return nil, err
	}

	a.logger.Info().Int("files", len(files)).Msg("scanning HDL sources")

	reports := make([]Report, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism(len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := a.AnalyzeFile(path)
			if err != nil {
				a.logger.Warn().Err(err).Str("file", path).Msg("analysis failed")
				reports[i] = Report{Path: path, Error: err.Error()}
				return nil
			}
			reports[i] = *rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

func (a *Analyzer) collectFiles(roots []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("scan root: %w", err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		resolved, err := a.cfg.ResolveSources(root)
		if err != nil {
			return nil, fmt.Errorf("resolve sources under %s: %w", root, err)
		}
		for _, f := range resolved {
			add(f)
		}
	}
	return files, nil
}

func (a *Analyzer) parallelism(n int) int {
	limit := a.cfg.Scan.MaxParallelFiles
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if limit > n {
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}
