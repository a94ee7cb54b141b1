package delivery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vegshop/internal/domain"
	"vegshop/internal/service/receipt"
)

// Deliverer hands a receipt to one outside channel and returns its
// confirmation id.
type Deliverer interface {
	Channel() string
	Deliver(ctx context.Context, order domain.Order, doc receipt.Document) (string, error)
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
)

// Job is the externally visible state of one queued delivery.
type Job struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	Channel        string    `json:"channel"`
	Status         Status    `json:"status"`
	Attempts       int       `json:"attempts"`
	ConfirmationID string    `json:"confirmationId,omitempty"`
	LastError      string    `json:"lastError,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type entry struct {
	job      Job
	order    domain.Order
	doc      receipt.Document
	inFlight bool
}

// DrainReport counts the outcome of one Drain pass.
type DrainReport struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Outbox queues receipt deliveries after a commit. Failures stay queued and
// never reach the checkout result.
type Outbox struct {
	mu         sync.Mutex
	entries    []*entry
	deliverers map[string]Deliverer
	order      []string
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewOutbox(deliverers []Deliverer, timeout time.Duration, logger *zap.Logger) *Outbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	o := &Outbox{
		deliverers: map[string]Deliverer{},
		timeout:    timeout,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, d := range deliverers {
		if d == nil {
			continue
		}
		if _, dup := o.deliverers[d.Channel()]; dup {
			continue
		}
		o.deliverers[d.Channel()] = d
		o.order = append(o.order, d.Channel())
	}
	return o
}

// Channels lists the configured channels in registration order.
func (o *Outbox) Channels() []string {
	return append([]string(nil), o.order...)
}

// Enqueue queues one job per configured channel.
func (o *Outbox) Enqueue(order domain.Order, doc receipt.Document) []Job {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	jobs := make([]Job, 0, len(o.order))
	for _, ch := range o.order {
		e := &entry{
			job: Job{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				Channel:   ch,
				Status:    StatusPending,
				CreatedAt: now,
				UpdatedAt: now,
			},
			order: order,
			doc:   doc,
		}
		o.entries = append(o.entries, e)
		jobs = append(jobs, e.job)
	}
	return jobs
}

// Jobs returns every job, delivered or not, oldest first.
func (o *Outbox) Jobs() []Job {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Job, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, e.job)
	}
	return out
}

// Pending counts jobs not yet delivered.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, e := range o.entries {
		if e.job.Status == StatusPending {
			n++
		}
	}
	return n
}

// Drain attempts every pending job once. Deliveries run without holding the
// lock; a job already being attempted by another Drain is skipped.
func (o *Outbox) Drain(ctx context.Context) DrainReport {
	o.mu.Lock()
	var batch []*entry
	for _, e := range o.entries {
		if e.job.Status == StatusPending && !e.inFlight {
			e.inFlight = true
			batch = append(batch, e)
		}
	}
	o.mu.Unlock()

	var report DrainReport
	for _, e := range batch {
		confirmation, err := o.attempt(ctx, e)

		o.mu.Lock()
		e.inFlight = false
		e.job.Attempts++
		e.job.UpdatedAt = o.now()
		if err != nil {
			e.job.LastError = err.Error()
			report.Failed++
		} else {
			e.job.Status = StatusDelivered
			e.job.ConfirmationID = confirmation
			e.job.LastError = ""
			report.Delivered++
		}
		attempts := e.job.Attempts
		o.mu.Unlock()

		fields := []zap.Field{
			zap.String("job_id", e.job.ID),
			zap.String("order_id", e.job.OrderID),
			zap.String("channel", e.job.Channel),
			zap.Int("attempts", attempts),
		}
		if err != nil {
			o.logger.Warn("delivery: attempt failed", append(fields, zap.Error(err))...)
			continue
		}
		o.logger.Info("delivery: delivered", append(fields, zap.String("confirmation_id", confirmation))...)
	}
	return report
}

func (o *Outbox) attempt(ctx context.Context, e *entry) (string, error) {
	d, ok := o.deliverers[e.job.Channel]
	if !ok {
		return "", errors.New("delivery: channel not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return d.Deliver(ctx, e.order, e.doc)
}

// Run drains on every tick until ctx is done.
func (o *Outbox) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if o.Pending() > 0 {
				o.Drain(ctx)
			}
		}
	}
}
