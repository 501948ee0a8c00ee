package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/contentflow/internal/clock"
)

// Delta represents an incremental counter change emitted by bulk workers.
type Delta struct {
	Total     int
	Succeeded int
	Failed    int
	Running   int
}

// Progress keeps aggregated counters of one bulk operation. It is safe for
// concurrent use.
type Progress struct {
	Operation string
	StartedAt time.Time

	Total     int
	Succeeded int
	Failed    int
	Running   int

	sync.Mutex
	onChange func(Progress)
}

// Done reports whether every item has finished.
func (p *Progress) Done() bool {
	return p.Total > 0 && p.Succeeded+p.Failed == p.Total
}

// Update applies the supplied delta. The onChange callback, if any, receives
// a copy outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.Lock()
	p.Total += d.Total
	p.Succeeded += d.Succeeded
	p.Failed += d.Failed
	p.Running += d.Running
	snapshot := p.copyLocked()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copyLocked()
}

// OnChange registers a callback invoked after every Update; nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

func (p *Progress) copyLocked() Progress {
	return Progress{
		Operation: p.Operation,
		StartedAt: p.StartedAt,
		Total:     p.Total,
		Succeeded: p.Succeeded,
		Failed:    p.Failed,
		Running:   p.Running,
	}
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and
// returns both.
func WithNewTracker(ctx context.Context, operation string, onChange func(Progress)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		Operation: operation,
		StartedAt: clock.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies d to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
