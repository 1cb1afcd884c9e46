package jobs

import (
	"context"
	"sync"

	"github.com/stwalsh4118/taxsale/api/internal/logger"
)

// Resolver links auction history to calendar events.
type Resolver interface {
	Resolve(ctx context.Context) (int64, error)
}

// Dispatcher runs the resolver in the background on demand. Triggers that
// arrive while a run is pending collapse into that run.
type Dispatcher struct {
	resolver Resolver
	log      *logger.Logger
	wake     chan struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Call Start before triggering.
func NewDispatcher(resolver Resolver, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		log:      log,
		wake:     make(chan struct{}, 1),
	}
}

// Start launches the background worker. It runs until ctx is done or Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go d.loop(ctx)
}

// Trigger requests a resolver run and never blocks.
func (d *Dispatcher) Trigger() {
	if d == nil {
		return
	}
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Stop cancels the worker and waits for an in-flight run to return.
func (d *Dispatcher) Stop() {
	if d == nil || d.cancel == nil {
		return
	}
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.wake:
			linked, err := d.resolver.Resolve(ctx)
			if err != nil {
				if ctx.Err() == nil {
					d.log.Error("Linkage run failed", err, nil)
				}
				continue
			}
			d.log.Debug("Linkage run finished", map[string]interface{}{
				"linked": linked,
			})
		}
	}
}
