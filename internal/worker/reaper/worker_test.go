package reaper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BoatRental/internal/usecase/reap_expired_holds"
)

type recordingLogger struct {
	mu     sync.Mutex
	warns  []string
	errors []string
}

func (l *recordingLogger) Info(string, ...interface{}) {}

func (l *recordingLogger) Warn(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, v...))
}

type fakeReaper struct {
	runs atomic.Int32
	err  error
}

func (f *fakeReaper) Execute(ctx context.Context) (*reap_expired_holds.Result, error) {
	f.runs.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("no deadline")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &reap_expired_holds.Result{}, nil
}

type fakeCatalog struct {
	runs atomic.Int32
	err  error
}

func (f *fakeCatalog) Refresh(context.Context) error {
	f.runs.Add(1)
	return f.err
}

func TestNewWorker_Jobs(t *testing.T) {
	w, err := NewWorker(&fakeReaper{}, &fakeCatalog{}, &recordingLogger{}, 15*time.Second, time.Minute)
	require.NoError(t, err)
	assert.Len(t, w.cron.Entries(), 2)

	w, err = NewWorker(&fakeReaper{}, nil, &recordingLogger{}, 15*time.Second, time.Minute)
	require.NoError(t, err)
	assert.Len(t, w.cron.Entries(), 1)

	w, err = NewWorker(&fakeReaper{}, &fakeCatalog{}, &recordingLogger{}, 15*time.Second, 0)
	require.NoError(t, err)
	assert.Len(t, w.cron.Entries(), 1)
}

func TestReap_LogsFailure(t *testing.T) {
	log := &recordingLogger{}
	r := &fakeReaper{err: errors.New("db down")}
	w, err := NewWorker(r, nil, log, time.Second, 0)
	require.NoError(t, err)

	w.reap()

	assert.EqualValues(t, 1, r.runs.Load())
	require.Len(t, log.errors, 1)
	assert.Contains(t, log.errors[0], "db down")
}

func TestRefreshCatalog_KeepsRunningOnError(t *testing.T) {
	log := &recordingLogger{}
	c := &fakeCatalog{err: errors.New("timeout")}
	w, err := NewWorker(&fakeReaper{}, c, log, time.Second, time.Second)
	require.NoError(t, err)

	w.refreshCatalog()
	w.refreshCatalog()

	assert.EqualValues(t, 2, c.runs.Load())
	assert.Len(t, log.warns, 2)
}

func TestStartStop(t *testing.T) {
	r := &fakeReaper{}
	w, err := NewWorker(r, nil, &recordingLogger{}, time.Second, 0)
	require.NoError(t, err)

	w.Start()
	require.Eventually(t, func() bool { return r.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
}

func TestCronLogger(t *testing.T) {
	log := &recordingLogger{}
	l := cronLogger{logger: log}

	l.Info("wake")
	l.Info("skip")
	l.Error(errors.New("panic: boom"), "panic", "stack", "...")

	require.Len(t, log.warns, 1)
	require.Len(t, log.errors, 1)
	assert.Contains(t, log.errors[0], "stack=...")
	assert.Equal(t, "a=1 b=2", formatKV([]interface{}{"a", 1, "b", 2, "dangling"}))
}
