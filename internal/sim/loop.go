package sim

import (
	"context"
	"log/slog"

	"github.com/dmaloff/tilelookup/internal/lookup"
)

// DefaultQueueSize bounds the pending event channel.
const DefaultQueueSize = 1024

// Loop owns the lookup engine and is its only writer. Events posted from
// any goroutine are applied one at a time, each handler running to
// completion before the next is taken.
type Loop struct {
	engine *lookup.Engine
	events chan Event
}

// NewLoop wraps an engine. queueSize <= 0 falls back to DefaultQueueSize.
func NewLoop(engine *lookup.Engine, queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Loop{
		engine: engine,
		events: make(chan Event, queueSize),
	}
}

// Post queues an event for processing. Blocks when the queue is full or
// the context is cancelled, whichever comes first.
func (l *Loop) Post(ctx context.Context, ev Event) error {
	select {
	case l.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inspect runs fn inside the loop goroutine and waits for it to finish.
// fn receives the engine and may call its query methods or dispatch
// handlers directly; it must not post events back into the loop.
func (l *Loop) Inspect(ctx context.Context, fn func(*lookup.Engine)) error {
	req := inspect{done: make(chan struct{})}
	req.fn = func() {
		defer close(req.done)
		fn(l.engine)
	}
	if err := l.Post(ctx, req); err != nil {
		return err
	}
	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run consumes events until the context is cancelled. The in-flight
// handler always completes; queued events beyond it are dropped.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("lookup event loop started", "queue", cap(l.events))
	for {
		select {
		case <-ctx.Done():
			slog.Info("lookup event loop stopping")
			return ctx.Err()
		case ev := <-l.events:
			l.dispatch(ev)
		}
	}
}

func (l *Loop) dispatch(ev Event) {
	switch e := ev.(type) {
	case EntityInitialized:
		l.engine.HandleEntityInitialized(e.Entity)
	case EntityDeleted:
		l.engine.HandleEntityDeleted(e.Entity)
	case ContainerInserted:
		l.engine.HandleContainerInserted(e.Entity)
	case ContainerRemoved:
		l.engine.HandleContainerRemoved(e.Entity)
	case Moved:
		l.engine.HandleMoved(e.Entity, e.Position, e.Box)
	case TileChanged:
		l.engine.HandleTileChanged(e.Grid, e.Tile)
	case GridCreated:
		l.engine.HandleGridCreated(e.Grid)
	case GridRemoved:
		l.engine.HandleGridRemoved(e.Grid)
	case inspect:
		e.fn()
	default:
		slog.Warn("unknown event kind dropped", "event", ev)
	}
}
