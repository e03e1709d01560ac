package history

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ngicks/recurrent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store, err := NewMemoryStore(100)
	require.NoError(err)
	recorder := NewRecorder(store, []byte(`{"job":{"kind":"backup"}}`))

	executor, err := recurrent.New(recurrent.WithHooks(recorder))
	require.NoError(err)
	defer executor.Shutdown(false)

	fakeErr := errors.New("fake")

	var runs int32
	thirdDone := make(chan struct{})
	handle, err := executor.ScheduleFixedInterval(0, time.Millisecond, func(ctx context.Context, scheduled time.Time) error {
		switch atomic.AddInt32(&runs, 1) {
		case 2:
			return fakeErr
		case 3:
			close(thirdDone)
		}
		return nil
	})
	require.NoError(err)

	select {
	case <-thirdDone:
	case <-time.After(time.Second):
		t.Fatal("third run did not happen within 1 second")
	}
	handle.Cancel()
	executor.Shutdown(true)

	records, err := store.FindByTask(handle.Id(), 0, 0)
	require.NoError(err)
	require.GreaterOrEqual(len(records), 3)

	assert.True(records[0].Succeeded())
	assert.False(records[1].Succeeded())
	assert.Equal(fakeErr.Error(), records[1].Err)

	for i, rec := range records {
		assert.Equal(handle.Id(), rec.TaskId, "record %d", i)
		assert.False(rec.StartedAt.IsZero())
		assert.False(rec.FinishedAt.IsZero())
		assert.False(rec.FinishedAt.Before(rec.StartedAt))
	}

	matched := FilterMeta(records, "job.kind", "backup")
	assert.Len(matched, len(records))
}

type failingStore struct {
	err error
}

func (s failingStore) Record(rec RunRecord) error { return s.err }
func (s failingStore) FindByTask(taskId string, offset, limit int) ([]RunRecord, error) {
	return nil, nil
}

func TestRecorder_storeError(t *testing.T) {
	assert := assert.New(t)

	fakeErr := errors.New("fake")
	recorder := NewRecorder(failingStore{err: fakeErr}, nil)

	var observed error
	recorder.OnStoreErr = func(err error) {
		observed = err
	}

	recorder.OnTaskDone(recurrent.TaskInfo{Id: "id-1"}, nil)
	assert.ErrorIs(observed, fakeErr)

	// without the callback the error is swallowed.
	recorder.OnStoreErr = nil
	recorder.OnTaskDone(recurrent.TaskInfo{Id: "id-1"}, nil)
}
