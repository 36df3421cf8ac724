package cell

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Nucleus schedules lifecycle delivery. Built nodes are queued by Init and
// receive OnInit when the queue is flushed. Update passes are only delivered
// to nodes whose tracked state changed, so that a burst of changes results in
// at most one update pass per node.
//
// The queue is safe for concurrent use. Hooks run on the goroutine calling
// Flush, which is the Run goroutine when the event loop is used.
type Nucleus struct {
	mu     sync.Mutex
	queue  []*Phenotype
	queued map[string]struct{}

	// work is the event loop's queue of tree-mutating functions.
	work chan func()

	log     zerolog.Logger
	metrics *Metrics
}

type NucleusOption func(*Nucleus)

// WithLogger sets the logger of the Nucleus and of the Reconcilers using it.
func WithLogger(l zerolog.Logger) NucleusOption {
	return func(nu *Nucleus) {
		nu.log = l
	}
}

// WithMetrics records scheduling activity in m.
func WithMetrics(m *Metrics) NucleusOption {
	return func(nu *Nucleus) {
		nu.metrics = m
	}
}

func NewNucleus(options ...NucleusOption) *Nucleus {
	nu := &Nucleus{
		queued: make(map[string]struct{}),
		work:   make(chan func()),
		log:    zerolog.Nop(),
	}
	for _, option := range options {
		option(nu)
	}
	return nu
}

// Reset drops every pending node.
func (nu *Nucleus) Reset() {
	nu.mu.Lock()
	defer nu.mu.Unlock()
	nu.queue = nil
	nu.queued = make(map[string]struct{})
	nu.metrics.setQueueLength(0)
}

// Build records the baseline tracked state of p from its Genotype. Nothing is
// queued.
func (nu *Nucleus) Build(p *Phenotype) {
	if p.state == nil {
		p.state = make(map[string]any)
	}
	p.Genotype.Each(func(key string, value any) bool {
		if Classify(p, key) == KeyInherited {
			p.state[key] = value
		}
		return true
	})
}

// Bind makes p eligible for delivery by this Nucleus.
func (nu *Nucleus) Bind(p *Phenotype) {
	if p.nucleus == nu {
		return
	}
	p.nucleus = nu
}

// Queue schedules p for the next flush. A node is queued at most once per
// flush.
func (nu *Nucleus) Queue(p *Phenotype) {
	nu.Bind(p)

	nu.mu.Lock()
	defer nu.mu.Unlock()
	if _, ok := nu.queued[p.ID]; ok {
		return
	}
	nu.queued[p.ID] = struct{}{}
	nu.queue = append(nu.queue, p)
	nu.metrics.incQueued()
	nu.metrics.setQueueLength(len(nu.queue))
}

// Pending returns the number of queued nodes.
func (nu *Nucleus) Pending() int {
	nu.mu.Lock()
	defer nu.mu.Unlock()
	return len(nu.queue)
}

// Update runs the update hook of p and marks it updated. It does nothing and
// returns false when p is detached or already updated.
func (nu *Nucleus) Update(p *Phenotype) bool {
	if !p.Attached() {
		nu.log.Trace().Str("id", p.ID).Msg("update skipped: detached")
		nu.metrics.incSkipped("detached")
		return false
	}
	if p.Meta.Updated {
		nu.log.Trace().Str("id", p.ID).Msg("update skipped: already updated")
		nu.metrics.incSkipped("updated")
		return false
	}
	p.Lifecycle().OnUpdate(p)
	p.Meta.Updated = true
	nu.metrics.incUpdates()
	return true
}

// Flush delivers the queued nodes in order: OnInit the first time a node is
// delivered, then Update if its tracked state changed since the last flush.
// Initialization alone never leads to an update pass. Detached nodes are
// dropped. Nodes queued while flushing wait for the next flush. It returns the
// number of update passes.
func (nu *Nucleus) Flush() int {
	nu.mu.Lock()
	batch := nu.queue
	nu.queue = nil
	nu.queued = make(map[string]struct{})
	nu.metrics.setQueueLength(0)
	nu.mu.Unlock()

	var delivered int
	for _, p := range batch {
		if !p.Attached() {
			nu.log.Trace().Str("id", p.ID).Msg("delivery dropped: detached")
			nu.metrics.incSkipped("detached")
			continue
		}
		stale := p.stale
		p.stale = false
		if !p.initialized {
			p.initialized = true
			p.Lifecycle().OnInit(p)
		}
		if stale && nu.Update(p) {
			delivered++
		}
	}
	nu.metrics.incFlushes()
	if len(batch) > 0 {
		nu.log.Debug().Int("queued", len(batch)).Int("delivered", delivered).Msg("flush")
	}
	return delivered
}

// Do posts fn to the goroutine executing Run. It never blocks the caller.
func (nu *Nucleus) Do(fn func()) {
	go func() {
		nu.work <- fn
	}()
}

// Run is the event loop: it executes the functions posted with Do one at a
// time and flushes the queue after each of them. It returns when ctx is done.
func (nu *Nucleus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-nu.work:
			fn()
			if nu.Pending() > 0 {
				nu.Flush()
			}
		}
	}
}
