package flake

import (
	"errors"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// ErrNoMachineID is returned when no machine id can be derived to seed the
// generator.
var ErrNoMachineID = errors.New("machine id undeterminable")

var (
	mu     sync.Mutex
	flakes = map[string]*sonyflake.Sonyflake{}
)

// NextID returns the next safe to use ID for the given namespace.
func NextID(namespace string) (uint64, error) {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := flakes[namespace]; !ok {
		var s sonyflake.Settings
		s.StartTime = time.Date(2016, 4, 12, 9, 0, 0, 0, time.UTC)

		f := sonyflake.NewSonyflake(s)
		if f == nil {
			return 0, ErrNoMachineID
		}

		flakes[namespace] = f
	}

	return flakes[namespace].NextID()
}
