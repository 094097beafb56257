// Package activity keeps a rolling, human-readable log of what the agent
// did, and fans new lines out to live subscribers.
package activity

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 200

// subscriberBuffer is the channel size handed to each subscriber.
const subscriberBuffer = 32

// Entry is one activity line.
type Entry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// String renders the entry as "[HH:MM:SS] message" in local time.
func (e Entry) String() string {
	return "[" + e.Time.Local().Format(time.TimeOnly) + "] " + e.Message
}

// Log is a bounded ring of entries. It is safe for concurrent use.
type Log struct {
	clock clockwork.Clock

	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
	subs    map[int]chan Entry
	nextSub int
}

// New creates a Log holding at most capacity entries. A nil clock uses
// the real one.
func New(capacity int, clock clockwork.Clock) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Log{
		clock:   clock,
		entries: make([]Entry, capacity),
		subs:    make(map[int]chan Entry),
	}
}

// Add appends a line, evicting the oldest when full, and notifies
// subscribers. A subscriber whose buffer is full misses the line.
func (l *Log) Add(message string) Entry {
	e := Entry{Time: l.clock.Now(), Message: message}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}

	for _, ch := range l.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return e
}

// Entries returns the retained entries, newest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.next
	if l.full {
		n = len(l.entries)
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out
}

// Lines returns up to limit rendered entries, newest first. A
// non-positive limit returns all of them.
func (l *Log) Lines(limit int) []string {
	entries := l.Entries()
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines
}

// Subscribe returns a channel receiving every entry added from now on and
// a cancel func that closes it. Cancel is idempotent.
func (l *Log) Subscribe() (<-chan Entry, func()) {
	ch := make(chan Entry, subscriberBuffer)

	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}
