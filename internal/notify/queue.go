// Package notify keeps the process-wide notification queue fed by polling the
// server's flash endpoint.
//
// Each message moves Pending → Visible → Dismissed exactly once. A visible
// message is dismissed by its own expiry timer or by Dismiss, whichever comes
// first; the loser is a no-op.
package notify

import (
	"context"
	"os"
	"sync"
	"time"

	"pocketbank-cli/internal/domain"

	"github.com/charmbracelet/log"
)

const (
	DefaultInterval = 3 * time.Second
	DefaultTTL      = 2 * time.Second

	subscriberBuffer = 64
)

// Source is where pending messages come from.
type Source interface {
	FetchNotifications(ctx context.Context) ([]domain.NotificationMessage, error)
}

type Notification struct {
	ID         uint64
	Message    domain.NotificationMessage
	AppendedAt time.Time
}

type EventKind int

const (
	Appended EventKind = iota
	Dismissed
)

type Reason int

const (
	ReasonNone Reason = iota
	Expired
	Manual
	Teardown
)

func (r Reason) String() string {
	switch r {
	case Expired:
		return "expired"
	case Manual:
		return "manual"
	case Teardown:
		return "teardown"
	default:
		return "none"
	}
}

type Event struct {
	Kind         EventKind
	Notification Notification
	Reason       Reason
}

type Option func(*Queue)

func WithInterval(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.interval = d
		}
	}
}

func WithTTL(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.ttl = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.log = l
		}
	}
}

type entry struct {
	n     Notification
	timer *time.Timer
}

type Queue struct {
	source   Source
	interval time.Duration
	ttl      time.Duration
	log      *log.Logger

	mu      sync.Mutex
	entries []*entry
	nextID  uint64
	running bool
	epoch   uint64
	cancel  context.CancelFunc
	done    chan struct{}

	subs    map[uint64]chan Event
	nextSub uint64
}

func New(source Source, opts ...Option) *Queue {
	q := &Queue{
		source:   source,
		interval: DefaultInterval,
		ttl:      DefaultTTL,
		log:      log.NewWithOptions(os.Stderr, log.Options{Prefix: "notify"}),
		subs:     make(map[uint64]chan Event),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start begins polling: once immediately, then every interval until Stop or
// until ctx is done. Calling Start on a running queue does nothing.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	q.running = true
	q.epoch++
	q.cancel = cancel
	q.done = make(chan struct{})
	epoch, done := q.epoch, q.done
	q.mu.Unlock()

	q.log.Debug("polling started", "interval", q.interval, "ttl", q.ttl)
	go q.run(ctx, epoch, done)
}

// Stop cancels the poll loop and every pending expiry timer and empties the
// queue, publishing Dismissed with reason Teardown for each message still
// visible. It returns once the poll loop has exited.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	cancel, done := q.cancel, q.done
	q.cancel, q.done = nil, nil
	q.mu.Unlock()

	cancel()
	<-done

	q.mu.Lock()
	for _, e := range q.entries {
		e.timer.Stop()
		q.publish(Event{Kind: Dismissed, Notification: e.n, Reason: Teardown})
	}
	q.entries = nil
	q.mu.Unlock()

	q.log.Debug("polling stopped")
}

func (q *Queue) run(ctx context.Context, epoch uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	q.poll(ctx, epoch)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.poll(ctx, epoch)
		}
	}
}

func (q *Queue) poll(ctx context.Context, epoch uint64) {
	msgs, err := q.source.FetchNotifications(ctx)
	if err != nil {
		if ctx.Err() == nil {
			q.log.Warn("poll failed, retrying next interval", "err", err)
		}
		return
	}
	q.append(epoch, msgs)
}

func (q *Queue) append(epoch uint64, msgs []domain.NotificationMessage) {
	if len(msgs) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	// a poll that finished after Stop belongs to a torn-down view
	if !q.running || q.epoch != epoch {
		return
	}

	now := time.Now()
	for _, m := range msgs {
		q.nextID++
		id := q.nextID
		e := &entry{n: Notification{ID: id, Message: m, AppendedAt: now}}
		e.timer = time.AfterFunc(q.ttl, func() { q.dismiss(id, Expired) })
		q.entries = append(q.entries, e)
		q.publish(Event{Kind: Appended, Notification: e.n})
	}
	q.log.Debug("notifications appended", "count", len(msgs), "queued", len(q.entries))
}

// Dismiss removes the message with the given id. It reports false when the
// message is already gone.
func (q *Queue) Dismiss(id uint64) bool {
	return q.dismiss(id, Manual)
}

func (q *Queue) dismiss(id uint64, reason Reason) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.n.ID != id {
			continue
		}
		e.timer.Stop()
		q.entries = append(q.entries[:i], q.entries[i+1:]...)
		q.publish(Event{Kind: Dismissed, Notification: e.n, Reason: reason})
		return true
	}
	return false
}

// Messages returns the visible queue, oldest first.
func (q *Queue) Messages() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.n
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Subscribe returns a channel of queue events in the order they happened and
// a func that unsubscribes and closes it. Every Appended message is followed
// by exactly one Dismissed unless the event was dropped. Events are dropped for a subscriber
// whose buffer is full; Messages stays authoritative.
func (q *Queue) Subscribe() (<-chan Event, func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextSub++
	id := q.nextSub
	ch := make(chan Event, subscriberBuffer)
	q.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			q.mu.Lock()
			defer q.mu.Unlock()
			delete(q.subs, id)
			close(ch)
		})
	}
}

// publish must be called with q.mu held.
func (q *Queue) publish(ev Event) {
	for id, ch := range q.subs {
		select {
		case ch <- ev:
		default:
			q.log.Warn("subscriber too slow, event dropped", "subscriber", id, "notification", ev.Notification.ID)
		}
	}
}
