package history

import (
	"github.com/google/uuid"
	"github.com/ngicks/recurrent"
	"gorm.io/datatypes"
)

var _ recurrent.ExecutorHooks = (*Recorder)(nil)

// Recorder is an ExecutorHooks implementation storing a RunRecord
// for every completed run.
//
// Storing happens on the executor's coordinating goroutine, so a slow
// Store delays fires. Use MemoryStore, or a sqlite file on fast storage.
type Recorder struct {
	recurrent.PassThroughHook

	store Store
	meta  datatypes.JSON
	// OnStoreErr, if non nil, is called when the Store rejects a record.
	OnStoreErr func(err error)
}

// NewRecorder returns a Recorder writing into store.
// meta, if non nil, must be a valid JSON document; it is attached
// to every stored record.
func NewRecorder(store Store, meta datatypes.JSON) *Recorder {
	return &Recorder{
		store: store,
		meta:  meta,
	}
}

func (r *Recorder) OnTaskDone(task recurrent.TaskInfo, err error) {
	errText := ""
	if err != nil {
		errText = err.Error()
	}

	storeErr := r.store.Record(RunRecord{
		Id:          uuid.NewString(),
		TaskId:      task.Id,
		ScheduledAt: task.ScheduledAt,
		StartedAt:   task.StartedAt,
		FinishedAt:  task.FinishedAt,
		Err:         errText,
		Meta:        r.meta,
	})
	if storeErr != nil && r.OnStoreErr != nil {
		r.OnStoreErr(storeErr)
	}
}
