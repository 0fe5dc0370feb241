package progress

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposer_TwoPhaseBands(t *testing.T) {
	var updates []Update
	c := NewComposer(DefaultMessages, func(u Update) { updates = append(updates, u) })

	c.Report(PhaseCompression, 0.5)
	assert.Equal(t, 45, c.Percent())

	c.Report(PhaseCompression, 1.0)
	assert.Equal(t, 90, c.Percent())

	c.Report(PhaseUpload, 0.5)
	assert.Equal(t, 95, c.Percent())

	c.Complete()
	assert.Equal(t, 100, c.Percent())

	require.NotEmpty(t, updates)
	assert.Equal(t, 100, updates[len(updates)-1].Percent)
	assert.Equal(t, DefaultMessages[len(DefaultMessages)-1], updates[len(updates)-1].Message)
}

func TestComposer_NeverRegresses(t *testing.T) {
	var updates []Update
	c := NewComposer(DefaultMessages, func(u Update) { updates = append(updates, u) })

	// Reports in arbitrary order, including regressions from both phases.
	fractions := []struct {
		phase Phase
		f     float64
	}{
		{PhaseCompression, 0.9},
		{PhaseCompression, 0.1},
		{PhaseUpload, 0.0},
		{PhaseCompression, 0.95},
		{PhaseRamp, 0.3},
		{PhaseUpload, 0.2},
		{PhaseUpload, 0.1},
		{PhaseUpload, 1.0},
	}
	for _, r := range fractions {
		c.Report(r.phase, r.f)
	}
	c.Complete()

	last := -1
	for _, u := range updates {
		assert.GreaterOrEqual(t, u.Percent, last)
		last = u.Percent
	}
	assert.Equal(t, 100, last)
}

func TestComposer_RandomizedMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	phases := []Phase{PhaseCompression, PhaseUpload, PhaseRamp}

	var updates []Update
	c := NewComposer(DefaultMessages, func(u Update) { updates = append(updates, u) })

	for i := 0; i < 500; i++ {
		c.Report(phases[rng.Intn(len(phases))], rng.Float64())
	}
	c.Complete()

	last := -1
	for _, u := range updates {
		require.GreaterOrEqual(t, u.Percent, last)
		last = u.Percent
	}
	assert.Equal(t, 100, last)
}

func TestComposer_MessageBandsAdvanceOnly(t *testing.T) {
	c := NewComposer(DefaultMessages, nil)

	c.Report(PhaseCompression, 0.1) // 9% -> band 0
	assert.Equal(t, DefaultMessages[0], c.Message())

	c.Report(PhaseCompression, 0.5) // 45% -> band 2
	assert.Equal(t, DefaultMessages[2], c.Message())

	// A stalled percentage must not move the message backward.
	c.Report(PhaseCompression, 0.2)
	assert.Equal(t, DefaultMessages[2], c.Message())

	c.Complete()
	assert.Equal(t, DefaultMessages[4], c.Message())
}

func TestComposer_ConcurrentReporters(t *testing.T) {
	var mu sync.Mutex
	var updates []Update
	c := NewComposer(DefaultMessages, func(u Update) {
		mu.Lock()
		updates = append(updates, u)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				c.Report(PhaseRamp, rng.Float64())
			}
		}(int64(g))
	}
	wg.Wait()
	c.Complete()

	last := -1
	for _, u := range updates {
		require.GreaterOrEqual(t, u.Percent, last)
		last = u.Percent
	}
	assert.Equal(t, 100, last)
}

// More messages than percentage points must narrow the bands, not panic.
func TestComposer_ManyMessages(t *testing.T) {
	messages := make([]string, 120)
	for i := range messages {
		messages[i] = "step"
	}
	c := NewComposer(messages, nil)

	c.Report(PhaseCompression, 0.5)
	assert.Equal(t, 45, c.Percent())
	c.Complete()
	assert.Equal(t, 100, c.Percent())
	assert.Equal(t, "step", c.Message())
}

func TestComposer_Fail(t *testing.T) {
	var updates []Update
	c := NewComposer(DefaultMessages, func(u Update) { updates = append(updates, u) })

	c.Report(PhaseCompression, 0.8)
	c.Fail()

	assert.Equal(t, 0, c.Percent())
	assert.Equal(t, 0, updates[len(updates)-1].Percent)
}
