package controller

import (
	"context"
	"errors"
)

var ErrStopped = errors.New("controller loop stopped")

type request struct {
	ctx    context.Context
	intent Intent
	reply  chan result
}

type result struct {
	view View
	err  error
}

// Loop applies intents one at a time, in the order they were submitted. Store
// calls never overlap, and writes to a file are neither reordered nor merged.
type Loop struct {
	c        *Controller
	requests chan request
	done     chan struct{}
}

func NewLoop(c *Controller) *Loop {
	return &Loop{
		c:        c,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
}

// Run serves submissions until ctx ends. An intent that was accepted is always
// applied in full, even if its submitter gives up waiting.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-l.requests:
			view, err := l.c.Dispatch(context.WithoutCancel(req.ctx), req.intent)
			req.reply <- result{view: view, err: err}
		}
	}
}

// Submit hands an intent to the loop and waits for its view. It fails with
// ErrStopped once Run has returned, and with ctx's error if ctx ends before
// the loop accepts the intent.
func (l *Loop) Submit(ctx context.Context, in Intent) (View, error) {
	req := request{ctx: ctx, intent: in, reply: make(chan result, 1)}
	select {
	case l.requests <- req:
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-l.done:
		return View{}, ErrStopped
	}
	res := <-req.reply
	return res.view, res.err
}
