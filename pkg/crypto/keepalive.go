package crypto

import (
	"sync"
	"time"
)

// processStart anchors keep-alive id generation to the moment the process
// first asked for one, so ids are roughly elapsed milliseconds.
var (
	processStartOnce sync.Once
	processStart     time.Time

	keepAliveMu   sync.Mutex
	lastKeepAlive uint64
)

func anchor() time.Time {
	processStartOnce.Do(func() { processStart = time.Now() })
	return processStart
}

// GenerateKeepAliveID returns a monotonically increasing 64-bit id derived
// from milliseconds elapsed since the anchor. It need not be
// cryptographically random, but two successive calls are guaranteed to
// differ even when they land in the same millisecond.
func GenerateKeepAliveID() uint64 {
	id := uint64(time.Since(anchor()).Milliseconds())
	keepAliveMu.Lock()
	defer keepAliveMu.Unlock()
	if id <= lastKeepAlive {
		id = lastKeepAlive + 1
	}
	lastKeepAlive = id
	return id
}
