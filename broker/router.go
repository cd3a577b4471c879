package broker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/alphadose/haxmap"

	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// Handler processes one delivery. Implementations must be idempotent or
// tolerant of duplicate invocations: delivery is at-least-once.
type Handler interface {
	HandleMessage(ctx context.Context, d Delivery) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, d Delivery) error

func (f HandlerFunc) HandleMessage(ctx context.Context, d Delivery) error {
	return f(ctx, d)
}

// route is one registry entry. Async entries declare their execution style
// explicitly instead of being introspected at dispatch time; the router runs
// them on their own goroutine and represents completion as a waitable result
// channel, keeping both styles behind the same Handler contract.
type route struct {
	handler Handler
	async   bool
}

// Router maps topics to their handlers and drives batch dispatch. Handler
// outcomes gate the offset commit per message: success commits, failure
// routes to the dead-letter topic and then commits, so a poisoned message is
// neither redelivered forever nor silently lost.
type Router struct {
	routes *haxmap.Map[string, route]
	dlq    *Deadletters
	log    *slog.Logger
}

// NewRouter creates a router. The dead-letter router is required: without a
// place to put failed messages there is no safe way to advance offsets.
func NewRouter(dlq *Deadletters, log *slog.Logger) *Router {
	if dlq == nil {
		panic("dead-letter router cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Router{routes: haxmap.New[string, route](), dlq: dlq, log: log}
}

// Register binds a synchronous handler to a topic, replacing any previous
// registration.
func (r *Router) Register(topic string, h Handler) {
	r.routes.Set(topic, route{handler: h})
}

// RegisterAsync binds a handler that runs on its own goroutine per message.
// Dispatch still waits for completion before committing, so async handlers
// change the execution style, not the delivery guarantee.
func (r *Router) RegisterAsync(topic string, h Handler) {
	r.routes.Set(topic, route{handler: h, async: true})
}

// Dispatch processes a polled batch. Failures are isolated per message: a
// handler error or panic for message j never prevents messages j+1..K from
// being processed. Returns the number of successfully handled messages and
// the number routed to the dead-letter topic.
func (r *Router) Dispatch(ctx context.Context, batch []Delivery) (processed, failed int) {
	for _, d := range batch {
		if err := r.dispatchOne(ctx, d); err != nil {
			failed++
			if r.dlq.Route(ctx, d, err) {
				r.commit(d)
			}
			// An unroutable failure leaves the message unacked so the
			// broker redelivers it once the ack window lapses.
			continue
		}
		processed++
		r.commit(d)
	}
	return processed, failed
}

func (r *Router) dispatchOne(ctx context.Context, d Delivery) (err error) {
	entry, ok := r.routes.Get(d.Meta.Topic)
	if !ok {
		// No handler registered: commit and move on, this group does not
		// care about the topic.
		r.log.Debug("no handler for topic", slogx.Topic(d.Meta.Topic))
		return nil
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v\n%s", p, debug.Stack())
		}
	}()

	if !entry.async {
		return entry.handler.HandleMessage(ctx, d)
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("handler panic: %v", p)
			}
		}()
		done <- entry.handler.HandleMessage(ctx, d)
	}()
	select {
	case err = <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Router) commit(d Delivery) {
	if err := d.Commit(); err != nil {
		r.log.Warn("offset commit failed",
			slogx.Topic(d.Meta.Topic), slogx.Partition(d.Meta.Partition),
			slogx.Offset(d.Meta.Offset), slogx.Error(err))
	}
}

// Topics returns the registered topic names.
func (r *Router) Topics() []string {
	var out []string
	r.routes.ForEach(func(topic string, _ route) bool {
		out = append(out, topic)
		return true
	})
	return out
}
