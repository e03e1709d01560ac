package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ngicks/recurrent"
)

func main() {
	executor, err := recurrent.New()
	if err != nil {
		panic(err)
	}

	start := time.Now()

	interval, err := executor.ScheduleFixedInterval(0, time.Second, func(ctx context.Context, scheduled time.Time) error {
		fmt.Printf("interval: scheduled for %s, fired after %s\n", scheduled.Format(time.RFC3339Nano), time.Since(start))
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	if err != nil {
		panic(err)
	}

	rate, err := executor.ScheduleFixedRate(500*time.Millisecond, time.Second, func(ctx context.Context, scheduled time.Time) error {
		fmt.Printf("rate:     scheduled for %s, fired after %s\n", scheduled.Format(time.RFC3339Nano), time.Since(start))
		return nil
	})
	if err != nil {
		panic(err)
	}

	time.Sleep(5 * time.Second)

	interval.Cancel()
	rate.Cancel()

	executor.Shutdown(true)
	fmt.Println("done")
}
