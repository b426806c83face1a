// Package progress turns record counts into coarse percentage milestones.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/agentstation/ordsync/pkg/constants"
)

// Reporter reports each threshold once, in ascending order.
type Reporter struct {
	mu      sync.Mutex
	pending []int
	out     io.Writer
}

// New returns a reporter over thresholds, which must be ascending. With no
// thresholds the defaults are used. Messages are printed to out when it is
// not nil.
func New(out io.Writer, thresholds ...int) *Reporter {
	if len(thresholds) == 0 {
		thresholds = constants.ProgressThresholds
	}
	pending := make([]int, len(thresholds))
	copy(pending, thresholds)
	return &Reporter{pending: pending, out: out}
}

// Report records that processed of total items are done. It returns the
// highest threshold newly crossed and true, or false when none was.
// Thresholds skipped over by a large step are dropped without being reported.
func (r *Reporter) Report(processed, total int) (int, bool) {
	if total <= 0 || processed < 0 {
		return 0, false
	}
	percentage := processed * 100 / total

	r.mu.Lock()
	defer r.mu.Unlock()

	crossed, ok := 0, false
	for len(r.pending) > 0 && r.pending[0] <= percentage {
		crossed, ok = r.pending[0], true
		r.pending = r.pending[1:]
	}
	if ok && r.out != nil {
		fmt.Fprintf(r.out, "%d percent of records written\n", crossed)
	}
	return crossed, ok
}

// Remaining returns the thresholds not yet reported.
func (r *Reporter) Remaining() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.pending))
	copy(out, r.pending)
	return out
}
