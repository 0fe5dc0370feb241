// Package progress blends independently-paced phases of one publish job
// into a single monotonic 0–100 percentage with banded status messages.
//
// Two compositions are supported. The two-phase real composition maps
// local compression onto [0,90] and the upload onto [90,100]. The blended
// composition additionally runs a synthetic timer ramp against [0,80] in
// parallel with real compression (also [0,80]) so that tiny inputs still
// show a minimum perceived duration; the pipeline waits for both before
// moving on. Whatever the sources do, the displayed percentage never
// decreases and the status message never moves backward.
package progress

import "sync"

// Phase maps a source's own 0–1 fraction onto a band of the displayed
// percentage.
type Phase struct {
	Lo, Hi int
}

var (
	// PhaseCompression is the real compression band of the two-phase
	// composition.
	PhaseCompression = Phase{0, 90}

	// PhaseUpload is the upload band; it begins where compression ends.
	PhaseUpload = Phase{90, 100}

	// PhaseRamp is the band shared by the synthetic timer and real
	// compression in the blended composition.
	PhaseRamp = Phase{0, 80}
)

// DefaultMessages are the rotating status phrases. Five messages means
// each owns a 20%-wide band.
var DefaultMessages = []string{
	"Warming up the compressor...",
	"Squeezing your files...",
	"Locking everything down...",
	"Sealing the vault...",
	"Almost there...",
}

// Update is one emitted progress state.
type Update struct {
	Percent int
	Message string
}

// Composer folds progress reports into a monotonic display state.
// Safe for concurrent reporters (the timer ramp and the real compression
// run on separate goroutines in the blended composition).
type Composer struct {
	mu       sync.Mutex
	messages []string
	emit     func(Update)

	percent  int
	msgIndex int
}

// NewComposer returns a composer with at least one status message.
// emit may be nil; updates are then only observable through Percent.
func NewComposer(messages []string, emit func(Update)) *Composer {
	if len(messages) == 0 {
		messages = DefaultMessages
	}
	return &Composer{messages: messages, emit: emit}
}

// Report maps fraction (clamped to [0,1]) onto the phase's band and
// advances the displayed percentage if the result is higher than what is
// already shown. Reports may arrive in any order; regressions are ignored.
func (c *Composer) Report(p Phase, fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	pct := p.Lo + int(fraction*float64(p.Hi-p.Lo))
	if pct > p.Hi {
		pct = p.Hi
	}
	c.advance(pct)
}

// Complete forces the display to exactly 100 with the last message.
func (c *Composer) Complete() {
	c.advance(100)
}

// Fail resets the display to zero. The job is over; monotonicity holds
// per job, not across its failure boundary.
func (c *Composer) Fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.percent = 0
	c.msgIndex = 0
	if c.emit != nil {
		c.emit(Update{Percent: 0, Message: c.messages[0]})
	}
}

// Percent returns the currently displayed percentage.
func (c *Composer) Percent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.percent
}

// Message returns the currently displayed status message.
func (c *Composer) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages[c.msgIndex]
}

// advance emits while holding the lock so the emitted sequence is itself
// non-decreasing, not just the internal state. Emit callbacks must not
// call back into the composer.
func (c *Composer) advance(pct int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pct <= c.percent {
		return
	}
	c.percent = pct

	// Each message owns an equal-width band; the index only ever advances.
	idx := pct * len(c.messages) / 100
	if idx > len(c.messages)-1 {
		idx = len(c.messages) - 1
	}
	if idx > c.msgIndex {
		c.msgIndex = idx
	}

	if c.emit != nil {
		c.emit(Update{Percent: c.percent, Message: c.messages[c.msgIndex]})
	}
}
