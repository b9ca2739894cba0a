// Package notify sends order confirmation emails in the background. Delivery
// is best effort: failures are logged and counted, never retried.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/mail"
	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

// Dispatcher owns the outbox and a fixed pool of sending workers.
type Dispatcher struct {
	box         *Outbox
	sender      mail.Sender
	workers     int
	sendTimeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options tune a Dispatcher. Zero values pick defaults.
type Options struct {
	Workers       int
	SendTimeout   time.Duration
	HighWatermark int
}

// NewDispatcher constructs a Dispatcher sending through s.
func NewDispatcher(s mail.Sender, opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 15 * time.Second
	}
	return &Dispatcher{
		box:         NewOutbox(opts.HighWatermark),
		sender:      s,
		workers:     opts.Workers,
		sendTimeout: opts.SendTimeout,
	}
}

// Start launches the feeder and workers.
func (d *Dispatcher) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	go d.box.Run(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	obs.Logger.Info("mail_workers_started", "worker_count", d.workers)
}

// Stop cancels the workers and waits for them to exit.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.box.Jobs():
			d.box.Done(j.orderID, d.send(j))
		}
	}
}

func (d *Dispatcher) send(j job) error {
	// Sends outlive the request that queued them.
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()
	if err := d.sender.Send(ctx, j.msg); err != nil {
		obs.MailFailed.Add(1)
		obs.Logger.Error("order_confirmation_failed", "order_id", j.orderID, "to", j.msg.To, "error", err)
		return err
	}
	obs.MailSent.Add(1)
	obs.Logger.Info("order_confirmation_sent", "order_id", j.orderID, "to", j.msg.To)
	return nil
}

// OrderPlaced renders and queues the confirmation for o.
func (d *Dispatcher) OrderPlaced(_ context.Context, o model.Order, customer model.Identity) {
	msg, err := mail.NewConfirmation(mail.NewPayload(o, customer))
	if err != nil {
		obs.MailFailed.Add(1)
		obs.Logger.Error("order_confirmation_render_failed", "order_id", o.ID, "error", err)
		return
	}
	err = d.box.Enqueue(o.ID, msg)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoRecipient):
		obs.Logger.Warn("order_confirmation_skipped", "order_id", o.ID, "reason", "no_email")
	default:
		obs.MailDropped.Add(1)
		obs.Logger.Warn("order_confirmation_dropped", "order_id", o.ID, "error", err)
	}
}

// CloseIntake stops accepting confirmations.
func (d *Dispatcher) CloseIntake() { d.box.Close() }

// Stats exposes the outbox counters.
func (d *Dispatcher) Stats() Stats { return d.box.Stats() }

// WorkerCount returns the size of the worker pool.
func (d *Dispatcher) WorkerCount() int { return d.workers }

// DrainUntil blocks until every queued confirmation has an outcome or ctx is
// done.
func (d *Dispatcher) DrainUntil(ctx context.Context) bool {
	for {
		if d.box.Stats().Settled() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
