package transcript

import (
	"strings"
	"sync"
)

// Unit is one piece of transcribed text anchored to the job's global timeline.
type Unit struct {
	Start float64
	End   float64
	Text  string
}

// Transcript is the ordered, append-only accumulation of units for one job.
// Appends are serialized by the owning controller; once frozen the transcript
// is read-only.
type Transcript struct {
	mu     sync.RWMutex
	units  []Unit
	frozen bool
}

// Append adds a unit to the end of the transcript. Units whose text is empty
// after trimming are dropped. Returns false when the unit was dropped or the
// transcript is already frozen.
func (t *Transcript) Append(u Unit) bool {
	u.Text = strings.TrimSpace(u.Text)
	if u.Text == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		return false
	}
	t.units = append(t.units, u)
	return true
}

// Freeze makes the transcript read-only. Idempotent.
func (t *Transcript) Freeze() {
	t.mu.Lock()
	t.frozen = true
	t.mu.Unlock()
}

// Frozen reports whether the transcript has been finalized.
func (t *Transcript) Frozen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frozen
}

// Units returns a copy of the accumulated units in append order.
func (t *Transcript) Units() []Unit {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Unit, len(t.units))
	copy(out, t.units)
	return out
}

// Len returns the number of accumulated units.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.units)
}
