package holdexpiry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "t-1", Queue: "holds", Type: task.Type()}, nil
}

type fakeReaper struct {
	calls   []uuid.UUID
	expired bool
	err     error
}

func (f *fakeReaper) ReapOne(_ context.Context, id uuid.UUID) (bool, error) {
	f.calls = append(f.calls, id)
	return f.expired, f.err
}

func optionValue(opts []asynq.Option, typ asynq.OptionType) (interface{}, bool) {
	for _, o := range opts {
		if o.Type() == typ {
			return o.Value(), true
		}
	}
	return nil, false
}

func TestNewExpireTask(t *testing.T) {
	id := uuid.New()
	at := time.Date(2025, 7, 10, 8, 30, 0, 0, time.UTC)

	task, opts, err := NewExpireTask(id, at, "holds")
	require.NoError(t, err)
	assert.Equal(t, TypeHoldExpire, task.Type())

	p, err := decodePayload(task)
	require.NoError(t, err)
	assert.Equal(t, id, p.BookingID)

	v, ok := optionValue(opts, asynq.ProcessAtOpt)
	require.True(t, ok)
	assert.True(t, at.Equal(v.(time.Time)))

	v, ok = optionValue(opts, asynq.TaskIDOpt)
	require.True(t, ok)
	assert.Equal(t, "hold:expire:"+id.String(), v)

	v, ok = optionValue(opts, asynq.QueueOpt)
	require.True(t, ok)
	assert.Equal(t, "holds", v)
}

func TestNewExpireTask_DefaultQueue(t *testing.T) {
	_, opts, err := NewExpireTask(uuid.New(), time.Now(), "")
	require.NoError(t, err)

	_, ok := optionValue(opts, asynq.QueueOpt)
	assert.False(t, ok)
}

func TestScheduleExpiry(t *testing.T) {
	id := uuid.New()
	at := time.Date(2025, 7, 10, 8, 30, 0, 0, time.UTC)

	t.Run("enqueues task", func(t *testing.T) {
		q := &fakeEnqueuer{}
		err := NewScheduler(q, "holds", nopLogger{}).ScheduleExpiry(context.Background(), id, at)
		require.NoError(t, err)
		require.Len(t, q.tasks, 1)
		assert.Equal(t, TypeHoldExpire, q.tasks[0].Type())
	})

	t.Run("already scheduled", func(t *testing.T) {
		q := &fakeEnqueuer{err: asynq.ErrTaskIDConflict}
		err := NewScheduler(q, "holds", nopLogger{}).ScheduleExpiry(context.Background(), id, at)
		assert.NoError(t, err)
	})

	t.Run("redis failure", func(t *testing.T) {
		q := &fakeEnqueuer{err: errors.New("dial tcp: connection refused")}
		err := NewScheduler(q, "holds", nopLogger{}).ScheduleExpiry(context.Background(), id, at)
		assert.ErrorIs(t, err, ErrEnqueue)
	})
}

func TestProcessTask(t *testing.T) {
	id := uuid.New()
	task, _, err := NewExpireTask(id, time.Now(), "")
	require.NoError(t, err)

	t.Run("expires hold", func(t *testing.T) {
		r := &fakeReaper{expired: true}
		require.NoError(t, NewHandler(r, nopLogger{}).ProcessTask(context.Background(), task))
		assert.Equal(t, []uuid.UUID{id}, r.calls)
	})

	t.Run("nothing to expire", func(t *testing.T) {
		r := &fakeReaper{}
		assert.NoError(t, NewHandler(r, nopLogger{}).ProcessTask(context.Background(), task))
	})

	t.Run("reaper error is retried", func(t *testing.T) {
		boom := errors.New("db down")
		r := &fakeReaper{err: boom}
		err := NewHandler(r, nopLogger{}).ProcessTask(context.Background(), task)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("bad payload is not retried", func(t *testing.T) {
		r := &fakeReaper{}
		bad := asynq.NewTask(TypeHoldExpire, []byte(`{"bookingId":""}`))
		err := NewHandler(r, nopLogger{}).ProcessTask(context.Background(), bad)
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Empty(t, r.calls)
	})
}

func TestNopScheduler(t *testing.T) {
	assert.NoError(t, Nop{}.ScheduleExpiry(context.Background(), uuid.New(), time.Now()))
}
