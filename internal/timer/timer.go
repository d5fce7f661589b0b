// Package timer provides the per-exercise countdown.
//
// Remaining time is always recomputed from the start instant, so late or
// bunched ticks never make the countdown drift. Ticks carry the
// countdown's ID and a generation tag; a tick from an earlier run (before
// a Stop, Start or Reset) is dropped and does not reschedule.
package timer

import (
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
)

// DefaultInterval is how often a running countdown refreshes.
const DefaultInterval = 100 * time.Millisecond

var lastID atomic.Int64

func nextID() int {
	return int(lastID.Add(1))
}

// TickMsg refreshes a running countdown.
type TickMsg struct {
	ID   int
	Time time.Time
	tag  int
}

// ExpiredMsg is emitted once when a countdown reaches zero.
type ExpiredMsg struct {
	ID int
}

// State is a read-only snapshot of a countdown.
type State struct {
	Limit     time.Duration
	Remaining time.Duration
	Running   bool
	Expired   bool
}

// Progress returns the remaining fraction in [0, 1].
func (s State) Progress() float64 {
	if s.Limit <= 0 {
		return 0
	}
	p := float64(s.Remaining) / float64(s.Limit)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Seconds returns the remaining whole seconds, rounded up so that the
// display only shows 0 once the countdown has expired.
func (s State) Seconds() int {
	if s.Remaining <= 0 {
		return 0
	}
	return int((s.Remaining + time.Second - 1) / time.Second)
}

// Countdown counts down from a limit and expires exactly once per run.
type Countdown struct {
	id       int
	tag      int
	clock    func() time.Time
	interval time.Duration
	onExpire func()

	limit     time.Duration
	startedAt time.Time
	remaining time.Duration
	running   bool
	expired   bool
}

// Option configures a Countdown.
type Option func(*Countdown)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Countdown) { c.clock = now }
}

// WithInterval sets the refresh interval.
func WithInterval(d time.Duration) Option {
	return func(c *Countdown) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithOnExpire registers a hook called once per run on expiry.
func WithOnExpire(fn func()) Option {
	return func(c *Countdown) { c.onExpire = fn }
}

// New creates an idle countdown.
func New(opts ...Option) *Countdown {
	c := &Countdown{
		id:       nextID(),
		clock:    time.Now,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID identifies this countdown's messages.
func (c *Countdown) ID() int { return c.id }

// Start resets the countdown to limit and begins running. A limit of
// zero or less expires immediately. The returned command drives the
// countdown inside a bubbletea program.
func (c *Countdown) Start(limit time.Duration) tea.Cmd {
	c.tag++
	c.limit = max(limit, 0)
	c.startedAt = c.clock()
	c.remaining = c.limit
	c.expired = false
	c.running = true

	if c.limit == 0 {
		c.expire()
		return c.expiredCmd()
	}
	return c.tick()
}

// Stop halts the countdown without resetting the remaining time. It
// never triggers expiry.
func (c *Countdown) Stop() {
	if !c.running {
		return
	}
	c.remaining = c.computeRemaining()
	c.running = false
	c.tag++
}

// Reset returns the countdown to idle with nothing remaining.
func (c *Countdown) Reset() {
	c.tag++
	c.limit = 0
	c.remaining = 0
	c.startedAt = time.Time{}
	c.running = false
	c.expired = false
}

// Refresh recomputes the remaining time from the clock. It reports true
// when this call caused the expiry.
func (c *Countdown) Refresh() bool {
	if !c.running {
		return false
	}
	c.remaining = c.computeRemaining()
	if c.remaining > 0 {
		return false
	}
	return c.expire()
}

// Update handles TickMsg values addressed to this countdown. Stale ticks
// return nil so the tick chain ends.
func (c *Countdown) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != c.id || tick.tag != c.tag || !c.running {
		return nil
	}
	if c.Refresh() {
		return c.expiredCmd()
	}
	return c.tick()
}

// State returns a snapshot, refreshed from the clock if running.
func (c *Countdown) State() State {
	remaining := c.remaining
	if c.running {
		remaining = c.computeRemaining()
	}
	return State{
		Limit:     c.limit,
		Remaining: remaining,
		Running:   c.running,
		Expired:   c.expired,
	}
}

// Remaining is shorthand for State().Remaining.
func (c *Countdown) Remaining() time.Duration {
	return c.State().Remaining
}

func (c *Countdown) computeRemaining() time.Duration {
	left := c.limit - c.clock().Sub(c.startedAt)
	if left < 0 {
		return 0
	}
	if left > c.limit {
		return c.limit
	}
	return left
}

func (c *Countdown) expire() bool {
	if c.expired {
		return false
	}
	c.expired = true
	c.running = false
	c.remaining = 0
	c.tag++
	if c.onExpire != nil {
		c.onExpire()
	}
	return true
}

func (c *Countdown) tick() tea.Cmd {
	id, tag := c.id, c.tag
	return tea.Tick(c.interval, func(t time.Time) tea.Msg {
		return TickMsg{ID: id, Time: t, tag: tag}
	})
}

func (c *Countdown) expiredCmd() tea.Cmd {
	id := c.id
	return func() tea.Msg { return ExpiredMsg{ID: id} }
}
