package directline

import (
	"sync"

	"github.com/soyeahso/botline/internal/logging"
)

// Timeline is the single point of truth for message ordering: the merged,
// deduplicated, newest-first view of every message activity seen so far,
// plus the monotonic watermark cursor.
//
// Merge calls apply atomically and in call order; a poll result and a live
// frame that race have no cross-source ordering guarantee, and id-based
// dedup is what keeps the timeline correct under any interleaving.
type Timeline struct {
	mu         sync.Mutex
	activities []Activity
	watermark  string

	onChange func(count int)
	onEvent  func(Activity)
	log      *logging.Logger
}

// NewTimeline creates an empty timeline.
func NewTimeline(log *logging.Logger) *Timeline {
	return &Timeline{log: log.Sub("timeline")}
}

// OnChange registers the handler invoked when the message count changes.
// One call per merge at most; in-place replacement raises nothing, so
// content-only updates never trigger a redundant full re-render.
func (t *Timeline) OnChange(fn func(count int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// OnEvent registers the handler invoked for non-message lifecycle activities
// (typing, conversationUpdate, endOfConversation, ...). These are never
// stored in the timeline.
func (t *Timeline) OnEvent(fn func(Activity)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEvent = fn
}

// Merge folds a batch into the timeline. The watermark advances only when
// the batch carries one that compares lexicographically greater than the
// current cursor; it never moves backward. An activity with no type aborts
// the remainder of the batch, since an unrecognizable entry invalidates
// trust in the rest of the batch ordering.
func (t *Timeline) Merge(set ActivitySet) {
	t.mu.Lock()

	if set.Watermark != "" && (t.watermark == "" || set.Watermark > t.watermark) {
		t.watermark = set.Watermark
	}

	var events []Activity
	countBefore := len(t.activities)

	for _, a := range set.Activities {
		if a.Type == "" {
			t.log.Warn().Msg("activity with no type; dropping remainder of batch")
			break
		}
		if a.Type == ActivityMessage {
			t.insertOrReplace(a)
			continue
		}
		events = append(events, a)
	}

	count := len(t.activities)
	changed := count != countBefore
	onChange, onEvent := t.onChange, t.onEvent
	t.mu.Unlock()

	if onEvent != nil {
		for _, a := range events {
			onEvent(a)
		}
	}
	if changed && onChange != nil {
		onChange(count)
	}
}

// insertOrReplace updates an existing entry in place when the activity is
// already known (content update, e.g. attachment metadata arriving after
// the text), otherwise inserts at the position preserving sort order.
// Called with the lock held.
func (t *Timeline) insertOrReplace(a Activity) {
	for i := range t.activities {
		if t.activities[i].equals(a) {
			t.activities[i] = a
			return
		}
	}
	for i := range t.activities {
		if a.before(t.activities[i]) {
			t.activities = append(t.activities, Activity{})
			copy(t.activities[i+1:], t.activities[i:])
			t.activities[i] = a
			return
		}
	}
	// unordered relative to everything present: insertion order decides
	t.activities = append(t.activities, a)
}

// AdvanceWatermark moves the cursor forward to w under the same
// lexicographic rule Merge applies. Used to seed a restored session; a
// backward or empty value is ignored.
func (t *Timeline) AdvanceWatermark(w string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if w != "" && (t.watermark == "" || w > t.watermark) {
		t.watermark = w
	}
}

// Watermark returns the current cursor, empty when none has been observed.
func (t *Timeline) Watermark() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.watermark
}

// Count returns the number of messages held.
func (t *Timeline) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.activities)
}

// Snapshot returns a consistent copy of the timeline, newest first.
func (t *Timeline) Snapshot() []Activity {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Activity, len(t.activities))
	copy(out, t.activities)
	return out
}

// Reset drops all messages and the watermark.
func (t *Timeline) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activities = nil
	t.watermark = ""
}
