package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/infrastructure/mailapi"
	"github.com/bookswap-api/internal/infrastructure/sns"
	"github.com/bookswap-api/internal/pkg/id"
	"github.com/bookswap-api/internal/pkg/validate"
)

// Priority selects the delivery policy for a job.
type Priority int

const (
	// PriorityNormal respects the recipient's stored preference for the kind.
	PriorityNormal Priority = iota
	// PriorityHigh bypasses the preference gate and additionally sends an SMS
	// when the recipient has a phone number. Used for accepted swaps.
	PriorityHigh
)

// Job is one notification to one recipient for one triggering event. Jobs
// are transient; a dropped job is lost, delivery is best effort.
type Job struct {
	Kind     domain.NotificationKind
	UserID   string
	Message  string
	Priority Priority
}

// Notifier is the enqueue-only view services use to fire notifications
// without ever failing the triggering action.
type Notifier interface {
	Enqueue(job Job)
}

type prefStore interface {
	Get(ctx context.Context, userID string) (*domain.NotificationPreference, error)
}

type recipientStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type recordStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

// DispatcherConfig bounds the retry policy and the worker pool.
type DispatcherConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Workers     int
	QueueSize   int
}

// Dispatcher delivers notifications: an in-app record is always written,
// then email delivery is gated on the recipient's preference (unless the job
// is high priority) and retried with exponential backoff. Per-attempt
// timeouts come from the mail client's HTTP timeout.
type Dispatcher struct {
	prefs   prefStore
	users   recipientStore
	records recordStore
	mail    mailapi.Sender
	sms     sns.SMSSender

	maxAttempts int
	baseDelay   time.Duration
	workers     int

	jobs chan Job
	wg   sync.WaitGroup

	// sleep is swapped out in tests to observe backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(prefs prefStore, users recipientStore, records recordStore, mail mailapi.Sender, sms sns.SMSSender, cfg DispatcherConfig) *Dispatcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	return &Dispatcher{
		prefs:       prefs,
		users:       users,
		records:     records,
		mail:        mail,
		sms:         sms,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		workers:     cfg.Workers,
		jobs:        make(chan Job, cfg.QueueSize),
		sleep:       sleepCtx,
	}
}

// Start launches the worker pool. Workers run until Stop closes the queue;
// in-flight retries finish even if the triggering request has already
// returned.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for job := range d.jobs {
				d.Dispatch(context.Background(), job)
			}
		}()
	}
}

// Stop closes the queue and waits for workers to drain it.
func (d *Dispatcher) Stop() {
	close(d.jobs)
	d.wg.Wait()
}

// Enqueue hands a job to the worker pool without blocking. When the queue is
// full the job is dropped and logged; notification failures must never
// propagate to the triggering action.
func (d *Dispatcher) Enqueue(job Job) {
	select {
	case d.jobs <- job:
	default:
		slog.Warn("notification queue full, dropping job", "kind", job.Kind, "user_id", job.UserID)
	}
}

// Dispatch runs one job to a terminal state and reports whether the email
// was delivered. A skip (preference disabled, no email, invalid email) is a
// normal false, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) bool {
	// Preference and recipient are fetched concurrently. A preference store
	// failure fails open: assume all kinds enabled.
	prefCh := make(chan *domain.NotificationPreference, 1)
	go func() {
		p, err := d.prefs.Get(ctx, job.UserID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				slog.Warn("preference lookup failed, assuming enabled", "user_id", job.UserID, "err", err)
			}
			p = domain.DefaultPreference(job.UserID)
		}
		prefCh <- p
	}()

	u, err := d.users.Get(ctx, job.UserID)
	pref := <-prefCh
	if err != nil {
		slog.Warn("notification recipient lookup failed", "user_id", job.UserID, "err", err)
		return false
	}

	d.writeRecord(ctx, job)

	if job.Priority != PriorityHigh && !pref.Allows(job.Kind) {
		return false
	}

	if job.Priority == PriorityHigh && d.sms != nil && u.Phone != nil && *u.Phone != "" {
		if err := d.sms.SendSMS(ctx, *u.Phone, job.Message); err != nil {
			slog.Warn("sms delivery failed", "user_id", job.UserID, "err", err)
		}
	}

	if u.Email == "" {
		return false
	}
	if !validate.Email(u.Email) {
		slog.Warn("recipient email failed structural check, skipping", "user_id", job.UserID)
		return false
	}

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.mail.Send(ctx, job.Kind, u.Email)
		if err == nil {
			return true
		}
		slog.Warn("notification delivery failed",
			"kind", job.Kind, "user_id", job.UserID, "attempt", attempt, "err", err)
		if attempt < d.maxAttempts {
			if err := d.sleep(ctx, d.baseDelay<<(attempt-1)); err != nil {
				return false
			}
		}
	}
	return false
}

// writeRecord stores the in-app notification. It is written regardless of
// whether the email goes out, so the notifications feed reflects every event.
func (d *Dispatcher) writeRecord(ctx context.Context, job Job) {
	now := time.Now().UTC()
	rec := &domain.Notification{
		NotificationID: id.New(),
		UserID:         job.UserID,
		Kind:           job.Kind,
		Message:        job.Message,
		Readed:         0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := d.records.Put(ctx, rec); err != nil {
		slog.Warn("failed to write in-app notification", "user_id", job.UserID, "err", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
