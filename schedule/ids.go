package schedule

import (
	"strconv"
	"sync/atomic"
	"time"
)

var lastEventStamp int64

// nextEventStamp returns strictly increasing unix-milli stamps so two events
// created in the same instant still get distinct ids. The guard runs in the
// same millisecond units the id is formatted in.
func nextEventStamp() int64 {
	for {
		now := time.Now().UnixMilli()
		last := atomic.LoadInt64(&lastEventStamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastEventStamp, last, now) {
			return now
		}
	}
}

// newEventID generates a time-based id for a user-created event. Seed events
// keep their short mnemonic ids.
func newEventID() string {
	return "e" + strconv.FormatInt(nextEventStamp(), 10)
}
