package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ngicks/recurrent"
)

func main() {
	// 2 workers for 3 schedules: one due run always waits for a free worker,
	// but the coordinating goroutine keeps firing the others.
	executor, err := recurrent.NewPooled(2)
	if err != nil {
		panic(err)
	}

	start := time.Now()

	for i := 0; i < 3; i++ {
		i := i
		_, err := executor.ScheduleFixedRate(0, time.Second, func(ctx context.Context, scheduled time.Time) error {
			fmt.Printf("task %d: started after %s\n", i, time.Since(start))
			select {
			case <-time.After(1500 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			panic(err)
		}
	}

	time.Sleep(5 * time.Second)

	// abandon in-flight runs.
	executor.Shutdown(false)
	fmt.Println("done")
}
