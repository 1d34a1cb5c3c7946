package daemon

import (
	"time"

	"github.com/jmylchreest/platepix/internal/selection"
)

// NextRefresh returns when entries generated at now go stale: the first
// local midnight plus offset that lies after now.
func NextRefresh(now time.Time, loc *time.Location, offset time.Duration) time.Time {
	if candidate := selection.StartOfDay(now, loc).Add(offset); candidate.After(now) {
		return candidate
	}
	return selection.NextDay(now, loc).Add(offset)
}
