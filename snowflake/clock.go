package snowflake

import (
	"runtime"
	"time"
)

// Clock is the time source the generator samples while minting.
type Clock interface {
	// NowMillis returns the wall clock time in unix milliseconds.
	NowMillis() int64
	// Sleep blocks for roughly d. A zero or negative d only yields.
	Sleep(d time.Duration)
}

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}

func (systemClock) Sleep(d time.Duration) {
	if d <= 0 {
		runtime.Gosched()
		return
	}
	time.Sleep(d)
}
