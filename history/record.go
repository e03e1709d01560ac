// Package history persists run records of recurring tasks.
//
// It hooks into a recurrent.Executor through Recorder and stores one
// RunRecord per completed run, into memory or into a sqlite database.
package history

import (
	"time"

	"gorm.io/datatypes"
)

// RunRecord is one completed run of a recurring task.
type RunRecord struct {
	Id          string         `json:"id" gorm:"primaryKey,not null"`
	TaskId      string         `json:"task_id" gorm:"not null,index:task,sort:asc"`
	ScheduledAt time.Time      `json:"scheduled_at" gorm:"not null"`
	StartedAt   time.Time      `json:"started_at" gorm:"not null"`
	FinishedAt  time.Time      `json:"finished_at" gorm:"not null"`
	Err         string         `json:"err"`
	Meta        datatypes.JSON `json:"meta,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null,autoCreateTime:milli"`
}

// Succeeded reports the run completed without an error.
func (r RunRecord) Succeeded() bool {
	return r.Err == ""
}

// Took returns the run duration.
func (r RunRecord) Took() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
