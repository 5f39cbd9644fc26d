package tableview

import "time"

// DefaultCollapseBelow is the container width, in device-independent pixels,
// under which the collapsible columns are hidden.
const DefaultCollapseBelow = 920

// DefaultResizeThrottle is the minimum spacing between two evaluations.
const DefaultResizeThrottle = 100 * time.Millisecond

// Visibility hides a fixed set of columns while the measured container width
// is below a single threshold. Evaluations are throttled on the trailing
// edge: a width observed too soon after the previous evaluation is held and
// applied by Flush.
type Visibility struct {
	threshold   int
	throttle    time.Duration
	collapsible []ColumnID

	measured  bool
	width     int
	hidden    map[ColumnID]bool
	lastEval  time.Time
	pending   bool
	pendingAt int
}

// NewVisibility returns a controller that hides collapse when the width is
// below threshold. Before the first measurement every column is visible.
func NewVisibility(threshold int, throttle time.Duration, collapse ...ColumnID) *Visibility {
	return &Visibility{
		threshold:   threshold,
		throttle:    throttle,
		collapsible: append([]ColumnID(nil), collapse...),
		hidden:      make(map[ColumnID]bool),
	}
}

// Observe records a new width measurement taken at now. It returns whether
// the visible set changed and, when the measurement was deferred, how long
// to wait before calling Flush. Non-positive widths are ignored.
func (v *Visibility) Observe(width int, now time.Time) (changed bool, wait time.Duration) {
	if width <= 0 {
		return false, 0
	}
	if wait := v.remaining(now); wait > 0 {
		v.pending = true
		v.pendingAt = width
		return false, wait
	}
	return v.evaluate(width, now), 0
}

// Flush applies a deferred measurement once the throttle window has passed.
func (v *Visibility) Flush(now time.Time) (changed bool, wait time.Duration) {
	if !v.pending {
		return false, 0
	}
	if wait := v.remaining(now); wait > 0 {
		return false, wait
	}
	return v.evaluate(v.pendingAt, now), 0
}

// Pending reports whether a deferred measurement waits for Flush.
func (v *Visibility) Pending() bool {
	return v.pending
}

func (v *Visibility) remaining(now time.Time) time.Duration {
	if v.lastEval.IsZero() || v.throttle <= 0 {
		return 0
	}
	elapsed := now.Sub(v.lastEval)
	if elapsed >= v.throttle {
		return 0
	}
	return v.throttle - elapsed
}

// evaluate applies width and drops any deferred measurement, which is older.
func (v *Visibility) evaluate(width int, now time.Time) bool {
	v.pending = false
	v.lastEval = now
	v.measured = true
	v.width = width
	collapse := width < v.threshold
	changed := false
	for _, id := range v.collapsible {
		if v.hidden[id] != collapse {
			changed = true
		}
		if collapse {
			v.hidden[id] = true
		} else {
			delete(v.hidden, id)
		}
	}
	return changed
}

// IsVisible reports whether column id is shown.
func (v *Visibility) IsVisible(id ColumnID) bool {
	return !v.hidden[id]
}

// AnyHidden reports whether at least one column is hidden.
func (v *Visibility) AnyHidden() bool {
	return len(v.hidden) > 0
}

// Width returns the last applied width and whether one was measured yet.
func (v *Visibility) Width() (int, bool) {
	return v.width, v.measured
}
