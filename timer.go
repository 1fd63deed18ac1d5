package statline

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
)

// Lap is a single intermediate timing checkpoint recorded within a running timer.
type Lap struct {
	Name    string
	Elapsed time.Duration
}

// Timer measures execution durations with pause/resume and lap checkpoints. A timer is created
// running; stopping it emits the pause-adjusted total as a histogram observation when a usable
// name exists.
//
// A Timer is a single-caller handle and is not safe for concurrent use.
type Timer struct {
	name   string
	client *Client
	clk    clock.Clock

	startTime      time.Time
	lapStartTime   time.Time
	laps           []Lap
	stopped        bool
	paused         bool
	pauseTime      time.Time
	pausedDuration time.Duration
}

// Timer creates and starts a timer. The name is optional: an unnamed timer still measures and
// records laps, but emits nothing on stop unless a name is supplied at that point.
func (c *Client) Timer(format string, args ...interface{}) *Timer {
	t := &Timer{
		name:   formatName(c.prefix, format, args...),
		client: c,
		clk:    c.clk,
	}
	t.Start()

	return t
}

// Timing creates a named timer and returns a callback that stops it before invoking fn.
// Returns ErrNameRequired when no usable name is present, since a timing callback without a
// name could never emit and indicates a mistake at the call site.
func (c *Client) Timing(name string, fn func()) (func(), error) {
	t := c.Timer(name)
	if t.name == "" {
		return nil, ErrNameRequired
	}

	return t.Wrap(fn), nil
}

// Start begins a wholly new timing session: the start and lap reference points reset to now
// and all accumulated pause state clears. Previously recorded laps are retained.
func (t *Timer) Start() {
	now := t.clk.Now()

	t.startTime = now
	t.lapStartTime = now
	t.stopped = false
	t.paused = false
	t.pauseTime = time.Time{}
	t.pausedDuration = 0
}

// Lap records a checkpoint: the time elapsed since the previous lap (or start) is appended to
// the lap sequence and the lap reference point resets to now. A named lap additionally emits a
// histogram observation of the rounded elapsed milliseconds; an empty name records the lap but
// emits nothing. Laps sharing a name are all recorded and all independently emitted.
func (t *Timer) Lap(name string) time.Duration {
	now := t.clk.Now()
	elapsed := now.Sub(t.lapStartTime)
	t.lapStartTime = now

	lapName := ""
	if name != "" {
		lapName = formatName(t.client.prefix, name)
	}
	t.laps = append(t.laps, Lap{Name: lapName, Elapsed: elapsed})

	if lapName != "" {
		t.client.emitDuration(lapName, elapsed)
	}

	return elapsed
}

// Laps reads a copy of the recorded lap sequence, in call order.
func (t *Timer) Laps() []Lap {
	laps := make([]Lap, len(t.laps))
	copy(laps, t.laps)

	return laps
}

// Pause suspends elapsed-time accounting. Returns the pause-adjusted time elapsed since start
// at the moment of pausing, or false if the timer is not running.
func (t *Timer) Pause() (time.Duration, bool) {
	if t.paused || t.stopped {
		return 0, false
	}

	now := t.clk.Now()
	t.paused = true
	t.pauseTime = now

	return now.Sub(t.startTime) - t.pausedDuration, true
}

// Resume closes the current pause interval, folding its duration into the accumulated paused
// time. Returns the duration of the just-closed interval, or false if the timer is not paused.
func (t *Timer) Resume() (time.Duration, bool) {
	if !t.paused {
		return 0, false
	}

	interval := t.clk.Now().Sub(t.pauseTime)
	t.pausedDuration += interval
	t.paused = false
	t.pauseTime = time.Time{}

	return interval, true
}

// Stop halts the timer and reports the pause-adjusted total elapsed time, emitting it as a
// histogram observation under the timer's own name when one is set. Stop is idempotent: calls
// after the first perform no side effects and return false.
func (t *Timer) Stop() (time.Duration, bool) {
	return t.stop(t.name)
}

// StopAs behaves like Stop but emits under an explicitly formatted name, falling back to the
// timer's own name when the formatted name is empty.
func (t *Timer) StopAs(format string, args ...interface{}) (time.Duration, bool) {
	name := formatName(t.client.prefix, format, args...)
	if name == "" {
		name = t.name
	}

	return t.stop(name)
}

func (t *Timer) stop(name string) (time.Duration, bool) {
	if t.stopped {
		return 0, false
	}

	// A paused timer implicitly resumes so the open pause interval is accounted for.
	t.Resume()
	t.stopped = true

	elapsed := t.clk.Now().Sub(t.startTime) - t.pausedDuration
	if name != "" {
		t.client.emitDuration(name, elapsed)
	}

	return elapsed, true
}

// Wrap returns a callback that stops the timer, with its usual emission semantics, before
// invoking fn.
func (t *Timer) Wrap(fn func()) func() {
	return func() {
		t.Stop()
		fn()
	}
}

// ElapsedTime reports wall time elapsed since the timer started. It is intentionally not
// adjusted for paused intervals, unlike the totals reported by Pause and Stop; callers wanting
// the pause-adjusted duration must stop or pause the timer.
func (t *Timer) ElapsedTime() time.Duration {
	return t.clk.Now().Sub(t.startTime)
}

// Name reads the timer's formatted name, which may be empty.
func (t *Timer) Name() string {
	return t.name
}

// roundMillis converts a duration to whole milliseconds, rounding half away from zero.
func roundMillis(d time.Duration) float64 {
	return math.Round(float64(d) / float64(time.Millisecond))
}
