package announce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock is a manually advanced clock.
type tickingClock struct {
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	return c.now
}

func (c *tickingClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestAnnouncer() (*Announcer, *tickingClock) {
	clock := &tickingClock{now: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}
	return New(WithClock(clock.Now)), clock
}

func TestAnnounceAndRead(t *testing.T) {
	a, _ := newTestAnnouncer()

	a.Info("Settings saved successfully")
	a.Error("Storage is full. Free up some space and try again.")

	messages := a.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, SeverityInfo, messages[0].Severity)
	assert.Equal(t, "Settings saved successfully", messages[0].Message)
	assert.Equal(t, SeverityError, messages[1].Severity)
	assert.NotEmpty(t, messages[0].ID)
	assert.NotEqual(t, messages[0].ID, messages[1].ID)
}

func TestAnnouncementsExpire(t *testing.T) {
	a, clock := newTestAnnouncer()

	a.Error("transient failure")
	require.Len(t, a.Messages(), 1)

	clock.Advance(DefaultTTL - time.Millisecond)
	assert.Len(t, a.Messages(), 1, "still visible just before the window closes")

	clock.Advance(2 * time.Millisecond)
	assert.Empty(t, a.Messages(), "auto-cleared after the expiry window")
}

func TestDismiss(t *testing.T) {
	a, _ := newTestAnnouncer()

	a.Info("first")
	a.Info("second")

	messages := a.Messages()
	require.Len(t, messages, 2)

	assert.True(t, a.Dismiss(messages[0].ID))
	assert.False(t, a.Dismiss(messages[0].ID), "second dismissal of the same ID misses")

	remaining := a.Messages()
	require.Len(t, remaining, 1)
	assert.Equal(t, "second", remaining[0].Message)
}

func TestOrderingIsOldestFirst(t *testing.T) {
	a, clock := newTestAnnouncer()

	a.Info("one")
	clock.Advance(time.Second)
	a.Info("two")
	clock.Advance(time.Second)
	a.Info("three")

	messages := a.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Message)
	assert.Equal(t, "three", messages[2].Message)
}
