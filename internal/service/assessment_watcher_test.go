package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/jobs"
)

type countingReloader struct {
	path    string
	reloads atomic.Int32
	err     error
}

func (r *countingReloader) Reload(ctx context.Context) error {
	r.reloads.Add(1)
	return r.err
}

func (r *countingReloader) Path() string { return r.path }

type countingInvalidator struct {
	calls atomic.Int32
}

func (i *countingInvalidator) Invalidate(ctx context.Context) error {
	i.calls.Add(1)
	return nil
}

func TestWatcherReloadInvalidates(t *testing.T) {
	repo := &countingReloader{path: "data.json"}
	inv := &countingInvalidator{}
	w := NewAssessmentWatcher(repo, inv, jobs.NewQueue("test", jobs.QueueConfig{}), zap.NewNop())

	require.NoError(t, w.Reload(context.Background()))
	assert.Equal(t, int32(1), repo.reloads.Load())
	assert.Equal(t, int32(1), inv.calls.Load())

	repo.err = errors.New("bad json")
	require.Error(t, w.Reload(context.Background()))
	assert.Equal(t, int32(1), inv.calls.Load())
}

func TestWatcherReactsToFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assessments.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	repo := &countingReloader{path: path}
	inv := &countingInvalidator{}
	q := jobs.NewQueue("watch", jobs.QueueConfig{})
	w := NewAssessmentWatcher(repo, inv, q, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()
	require.NoError(t, w.Start(ctx))
	defer w.Close() //nolint:errcheck

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"s1": []}`), 0o644))

	assert.Eventually(t, func() bool { return inv.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, repo.reloads.Load(), int32(1))
}

func TestWatcherStartFailsForMissingDirectory(t *testing.T) {
	repo := &countingReloader{path: filepath.Join(t.TempDir(), "missing", "data.json")}
	w := NewAssessmentWatcher(repo, &countingInvalidator{}, jobs.NewQueue("test", jobs.QueueConfig{}), zap.NewNop())
	require.Error(t, w.Start(context.Background()))
	require.NoError(t, w.Close())
}
