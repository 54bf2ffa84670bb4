// Package announce implements the transient announcement sink: a queue
// of human-readable outcome messages consumed by the front-end's live
// region. Entries expire on their own unless dismissed earlier.
package announce

import (
	"slices"
	"sync"
	"time"

	"github.com/ai-scholar/scholar-admin/internal/uniuri"
)

// DefaultTTL is how long an announcement stays visible unless
// dismissed.
const DefaultTTL = 8 * time.Second

// Severity of an announcement.
type Severity string

const (
	// SeverityInfo is a routine outcome notice.
	SeverityInfo Severity = "info"
	// SeverityError is a surfaced failure notice.
	SeverityError Severity = "error"
)

// Announcement is one queued message.
type Announcement struct {
	ID       string    `json:"id"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	PostedAt time.Time `json:"postedAt"`

	expiresAt time.Time
}

// Announcer is the queue. The clock is injectable for tests.
type Announcer struct {
	mu      sync.Mutex
	entries []Announcement
	clock   func() time.Time
	ttl     time.Duration
}

// Option configures an Announcer.
type Option func(*Announcer)

// WithClock overrides the announcer clock.
func WithClock(clock func() time.Time) Option {
	return func(a *Announcer) { a.clock = clock }
}

// WithTTL overrides the expiry window.
func WithTTL(ttl time.Duration) Option {
	return func(a *Announcer) { a.ttl = ttl }
}

// New creates an announcer.
func New(opts ...Option) *Announcer {
	a := &Announcer{
		clock: time.Now,
		ttl:   DefaultTTL,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Info queues a routine outcome message.
func (a *Announcer) Info(message string) {
	a.post(SeverityInfo, message)
}

// Error queues a failure message.
func (a *Announcer) Error(message string) {
	a.post(SeverityError, message)
}

func (a *Announcer) post(severity Severity, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock()
	a.pruneLocked(now)

	a.entries = append(a.entries, Announcement{
		ID:        uniuri.NewLen(8),
		Severity:  severity,
		Message:   message,
		PostedAt:  now,
		expiresAt: now.Add(a.ttl),
	})
}

// Messages returns the live announcements, oldest first. Expired
// entries are pruned on the way out.
func (a *Announcer) Messages() []Announcement {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pruneLocked(a.clock())

	return slices.Clone(a.entries)
}

// Dismiss removes an announcement before it expires. It reports
// whether the ID was found.
func (a *Announcer) Dismiss(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, entry := range a.entries {
		if entry.ID == id {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			return true
		}
	}

	return false
}

// pruneLocked drops entries past their expiry. Caller holds the lock.
func (a *Announcer) pruneLocked(now time.Time) {
	live := a.entries[:0]
	for _, entry := range a.entries {
		if entry.expiresAt.After(now) {
			live = append(live, entry)
		}
	}
	a.entries = live
}
