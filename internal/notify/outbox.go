package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/fairyhunter13/storefront-service/internal/mail"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

var (
	// ErrClosed is returned once the outbox stops taking confirmations.
	ErrClosed = errors.New("outbox closed")
	// ErrNoRecipient rejects a message without a To address.
	ErrNoRecipient = errors.New("message has no recipient")
	// ErrPending means a confirmation for the order is already waiting.
	ErrPending = errors.New("confirmation already pending")
)

// job is one confirmation waiting to be sent.
type job struct {
	orderID string
	msg     mail.Message
}

// Stats is a snapshot of the outbox counters.
type Stats struct {
	Queued   uint64 `json:"queued"`
	Sent     uint64 `json:"sent"`
	Failed   uint64 `json:"failed"`
	Rejected uint64 `json:"rejected"`
	Pending  int    `json:"pending"`
}

// Settled reports whether every queued confirmation has an outcome.
func (s Stats) Settled() bool { return s.Queued == s.Sent+s.Failed }

// Outbox holds rendered confirmations until a worker takes them. Enqueue
// never blocks; one feeder goroutine hands the oldest message to whichever
// worker is free.
type Outbox struct {
	mu        sync.Mutex
	pending   []job
	orders    map[string]struct{} // queued or being sent
	closed    bool
	watermark int
	warned    bool
	stats     Stats

	wake chan struct{}
	out  chan job
}

// NewOutbox creates an Outbox. A backlog above watermark is logged once per
// crossing; zero disables the warning.
func NewOutbox(watermark int) *Outbox {
	return &Outbox{
		orders:    make(map[string]struct{}),
		watermark: watermark,
		wake:      make(chan struct{}, 1),
		out:       make(chan job),
	}
}

// Run feeds workers until ctx is done.
func (o *Outbox) Run(ctx context.Context) {
	for {
		o.mu.Lock()
		var head job
		var out chan job
		if len(o.pending) > 0 {
			head, out = o.pending[0], o.out
		}
		o.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-o.wake:
		case out <- head:
			o.mu.Lock()
			o.pending = o.pending[1:]
			o.mu.Unlock()
		}
	}
}

// Enqueue adds the confirmation for orderID.
func (o *Outbox) Enqueue(orderID string, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case o.closed:
		o.stats.Rejected++
		return ErrClosed
	case msg.To == "":
		o.stats.Rejected++
		return ErrNoRecipient
	}
	if _, dup := o.orders[orderID]; dup {
		o.stats.Rejected++
		return ErrPending
	}
	o.orders[orderID] = struct{}{}
	o.pending = append(o.pending, job{orderID: orderID, msg: msg})
	o.stats.Queued++
	o.checkWatermarkLocked()
	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

func (o *Outbox) checkWatermarkLocked() {
	if o.watermark <= 0 {
		return
	}
	n := len(o.pending)
	switch {
	case n > o.watermark && !o.warned:
		o.warned = true
		obs.Logger.Warn("mail_backlog_high", "pending", n, "high_watermark", o.watermark)
	case n <= o.watermark:
		o.warned = false
	}
}

// Jobs is where workers take confirmations from.
func (o *Outbox) Jobs() <-chan job { return o.out }

// Done records the outcome of a send taken from Jobs.
func (o *Outbox) Done(orderID string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.orders, orderID)
	if err != nil {
		o.stats.Failed++
		return
	}
	o.stats.Sent++
}

// Close stops intake. Queued confirmations are still handed out.
func (o *Outbox) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
}

// Closed reports whether intake is closed.
func (o *Outbox) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Stats returns a snapshot of the counters.
func (o *Outbox) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.stats
	s.Pending = len(o.pending)
	return s
}
