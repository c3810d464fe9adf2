package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/bleviet/ipcraft/internal/config"
	"github.com/bleviet/ipcraft/internal/model"
)

// Watcher re-analyzes HDL sources as they change on disk and reports
// interface deltas between consecutive good records of the same file.
// A file whose re-analysis fails keeps its last good record.
type Watcher struct {
	analyzer *Analyzer
	logger   zerolog.Logger
	last     map[string]*model.Module
	onChange func(path string, rep *Report, delta model.Delta)
}

// NewWatcher creates a watcher over an analyzer.
func NewWatcher(a *Analyzer) *Watcher {
	return &Watcher{
		analyzer: a,
		logger:   a.logger,
		last:     make(map[string]*model.Module),
	}
}

// OnChange registers a callback invoked after each re-analysis whose
// delta is non-empty. A file seen for the first time reports everything
// as added.
func (w *Watcher) OnChange(fn func(path string, rep *Report, delta model.Delta)) {
	w.onChange = fn
}

// Watch blocks, re-analyzing sources under root until ctx is canceled.
// The initial scan primes the baseline records without reporting.
func (w *Watcher) Watch(ctx context.Context, root string) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch root: %w", err)
	}

	reports, err := w.analyzer.Scan(ctx, []string{root})
	if err != nil {
		return err
	}
	for i := range reports {
		if reports[i].Module != nil {
			w.last[reports[i].Path] = reports[i].Module
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watching directories rather than files keeps editors that save
	// atomically (rename over the original) visible.
	watchRoot := root
	if !info.IsDir() {
		watchRoot = filepath.Dir(root)
	}
	if err := addRecursive(fw, watchRoot); err != nil {
		return err
	}

	w.logger.Info().
		Str("root", root).
		Int("baseline", len(w.last)).
		Msg("watching HDL sources")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("file watcher error")
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if err := addRecursive(fw, event.Name); err != nil {
				w.logger.Warn().Err(err).Str("dir", event.Name).Msg("cannot watch new directory")
			}
		}
		return
	}
	if !config.IsHDLSource(event.Name) || w.analyzer.cfg.ShouldIgnoreFile(event.Name) {
		return
	}

	w.logger.Debug().
		Str("event", event.Op.String()).
		Str("file", event.Name).
		Msg("source changed")

	rep, err := w.analyzer.AnalyzeFile(event.Name)
	if err != nil {
		w.logger.Warn().Err(err).Str("file", event.Name).Msg("re-analysis failed, keeping last record")
		return
	}

	prev := w.last[event.Name]
	if prev == nil {
		prev = &model.Module{}
	}
	delta := model.ComputeDelta(prev, rep.Module)
	w.last[event.Name] = rep.Module
	if delta.Empty() {
		return
	}

	w.logger.Info().
		Str("file", event.Name).
		Str("module", rep.Module.Name).
		Int("addedPorts", len(delta.Added.Ports)).
		Int("removedPorts", len(delta.Removed.Ports)).
		Int("addedBuses", len(delta.Added.BusInterfaces)).
		Int("removedBuses", len(delta.Removed.BusInterfaces)).
		Msg("module interface changed")

	if w.onChange != nil {
		w.onChange(event.Name, rep, delta)
	}
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if err := fw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}
