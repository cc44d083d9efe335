// Package clockutil provides the default Clock implementation used outside
// of tests, where a fake millisecond source is injected instead.
package clockutil

import (
	"time"

	"github.com/uni-regulations/rag-core/internal/ports"
)

// System is a ports.Clock backed by Go's monotonic clock reading.
type System struct{}

var _ ports.Clock = System{}

// processStart anchors NowMS readings; time.Since measures from its
// monotonic component, so readings never go backwards.
var processStart = time.Now()

// NowMS returns the milliseconds elapsed since process start.
func (System) NowMS() int64 {
	return time.Since(processStart).Milliseconds()
}
