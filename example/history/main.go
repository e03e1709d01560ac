package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ngicks/recurrent"
	"github.com/ngicks/recurrent/history"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	store, err := history.NewSqlite3(
		"./run_history.db",
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		panic(err)
	}

	recorder := history.NewRecorder(store, []byte(`{"job":{"kind":"example"}}`))
	recorder.OnStoreErr = func(err error) {
		fmt.Printf("store error: %+v\n", err)
	}

	executor, err := recurrent.New(recurrent.WithHooks(recorder))
	if err != nil {
		panic(err)
	}

	var count int
	handle, err := executor.ScheduleFixedInterval(0, 500*time.Millisecond, func(ctx context.Context, scheduled time.Time) error {
		count++
		if count%3 == 0 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		panic(err)
	}

	time.Sleep(3 * time.Second)

	handle.Cancel()
	executor.Shutdown(true)

	records, err := store.FindByTask(handle.Id(), 0, 0)
	if err != nil {
		panic(err)
	}
	for _, rec := range records {
		fmt.Printf(
			"run at %s took %s, succeeded = %t\n",
			rec.StartedAt.Format(time.RFC3339Nano),
			rec.Took(),
			rec.Succeeded(),
		)
	}
}
