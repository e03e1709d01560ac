package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	store, err := NewSqlite3(
		":memory:",
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	return store
}

func TestGormStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(store.Record(mkRecord("task-a", i)))
	}
	require.NoError(store.Record(mkRecord("task-b", 9)))

	records, err := store.FindByTask("task-a", 0, 0)
	require.NoError(err)
	if assert.Len(records, 5) {
		for i := 1; i < len(records); i++ {
			assert.True(records[i].FinishedAt.After(records[i-1].FinishedAt), "oldest first")
		}
	}

	records, err = store.FindByTask("task-a", 2, 2)
	require.NoError(err)
	if assert.Len(records, 2) {
		assert.Equal(recordBase.Add(2*time.Minute), records[0].StartedAt.UTC())
		assert.Equal(recordBase.Add(3*time.Minute), records[1].StartedAt.UTC())
	}

	records, err = store.FindByTask("unknown", 0, 0)
	require.NoError(err)
	assert.Empty(records)
}

func TestGormStore_metaRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := newTestStore(t)

	rec := mkRecord("task-a", 0)
	rec.Err = "fake"
	rec.Meta = []byte(`{"attempt":1}`)
	require.NoError(store.Record(rec))

	records, err := store.FindByTask("task-a", 0, 0)
	require.NoError(err)
	require.Len(records, 1)

	assert.Equal(rec.Id, records[0].Id)
	assert.False(records[0].Succeeded())
	assert.Equal(time.Second, records[0].Took())

	matched := FilterMeta(records, "attempt", "1")
	assert.Len(matched, 1)
}
