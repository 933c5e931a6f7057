package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/jobs"
)

// JobKindAssessmentReload refreshes the assessment snapshot.
const JobKindAssessmentReload = "assessments.reload"

type snapshotReloader interface {
	Reload(ctx context.Context) error
	Path() string
}

type insightsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// AssessmentWatcher reloads the assessment data file when it changes on disk
// and drops cached insights computed from the old snapshot. Bursts of file
// events collapse into one queued reload.
type AssessmentWatcher struct {
	repo     snapshotReloader
	insights insightsInvalidator
	queue    *jobs.Queue
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
}

func NewAssessmentWatcher(repo snapshotReloader, insights insightsInvalidator, queue *jobs.Queue, logger *zap.Logger) *AssessmentWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &AssessmentWatcher{repo: repo, insights: insights, queue: queue, logger: logger}
	queue.Handle(JobKindAssessmentReload, func(ctx context.Context, _ jobs.Job) error {
		return w.Reload(ctx)
	})
	return w
}

// Reload refreshes the snapshot, then invalidates cached insights.
func (w *AssessmentWatcher) Reload(ctx context.Context) error {
	if err := w.repo.Reload(ctx); err != nil {
		w.logger.Warn("assessment reload failed, keeping previous snapshot", zap.String("path", w.repo.Path()), zap.Error(err))
		return err
	}
	if err := w.insights.Invalidate(ctx); err != nil {
		w.logger.Warn("insight cache invalidation failed", zap.Error(err))
		return err
	}
	w.logger.Info("assessment snapshot reloaded", zap.String("path", w.repo.Path()))
	return nil
}

// Start watches the directory of the data file so that editors replacing the
// file are noticed. It returns once the watch is registered; events are
// handled until ctx is cancelled.
func (w *AssessmentWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	dir := filepath.Dir(w.repo.Path())
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.watcher = watcher
	w.logger.Info("watching assessment data", zap.String("path", w.repo.Path()))

	go w.loop(ctx, watcher)
	return nil
}

// Close stops watching.
func (w *AssessmentWatcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

func (w *AssessmentWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	target := filepath.Clean(w.repo.Path())
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || !relevant(event) {
				continue
			}
			w.schedule(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("assessment watcher error", zap.Error(err))
		}
	}
}

func (w *AssessmentWatcher) schedule(event fsnotify.Event) {
	added, err := w.queue.EnqueueUnique(jobs.Job{ID: JobKindAssessmentReload, Kind: JobKindAssessmentReload})
	if err != nil {
		w.logger.Warn("assessment reload not queued", zap.Error(err))
		return
	}
	if added {
		w.logger.Debug("assessment data changed", zap.String("op", event.Op.String()))
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
