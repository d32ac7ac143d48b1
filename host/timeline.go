package host

import (
	"sync"
	"time"
)

// Measure is one completed span reported by the guest.
type Measure struct {
	Name     string
	Start    string
	End      string
	Duration time.Duration
}

// Timeline records the marks and measures a guest reports.
type Timeline struct {
	marks    map[string]time.Time
	now      func() time.Time
	measures []Measure
	mu       sync.Mutex
}

// NewTimeline creates an empty Timeline.
func NewTimeline() *Timeline {
	return &Timeline{
		marks: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Mark records name at the current time. A repeated name overwrites the
// earlier mark.
func (t *Timeline) Mark(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marks[name] = t.now()
}

// Measure records the span between two marks. It reports false, and records
// nothing, when either mark is missing.
func (t *Timeline) Measure(name, start, end string) (Measure, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.marks[start]
	if !ok {
		return Measure{}, false
	}
	e, ok := t.marks[end]
	if !ok {
		return Measure{}, false
	}
	m := Measure{Name: name, Start: start, End: end, Duration: e.Sub(s)}
	t.measures = append(t.measures, m)
	return m, true
}

// Measures returns every recorded measure in order.
func (t *Timeline) Measures() []Measure {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Measure, len(t.measures))
	copy(out, t.measures)
	return out
}

// Find returns the first measure named name.
func (t *Timeline) Find(name string) (Measure, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.measures {
		if m.Name == name {
			return m, true
		}
	}
	return Measure{}, false
}

// Reset drops every mark and measure.
func (t *Timeline) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marks = make(map[string]time.Time)
	t.measures = nil
}
