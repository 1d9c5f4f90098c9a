// Package recorder holds the mouse/click/scroll recording state machine
// behind the generated recorder script. The Go object is the source of
// truth for the protocol's semantics; internal/beacon emits a script
// mirroring it.
package recorder

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"
)

// Options tunes a recording session.
type Options struct {
	Duration     time.Duration // session length before auto-stop
	Throttle     time.Duration // minimum interval between sends
	MaxMovements int           // stored movement samples per session
}

// Sample is one recorded mouse position.
type Sample struct {
	X       int   `json:"x"`
	Y       int   `json:"y"`
	Elapsed int64 `json:"t"` // ms since session start
}

// Beacon is one outbound recorder ping.
type Beacon struct {
	Event  string
	Fields map[string]string
}

// SendFunc delivers a beacon; delivery is best-effort fire-and-forget.
type SendFunc func(Beacon)

// CancelFunc cancels a scheduled callback; reports whether it was pending.
type CancelFunc func() bool

// Scheduler runs fn after d and returns a cancel handle.
type Scheduler func(d time.Duration, fn func()) CancelFunc

// Recorder is the per-page-context recording state machine: Idle until a
// triggering event, Recording for Duration, then Idle again. All sends
// pass one shared throttle gate, session boundaries included; that can
// drop mouse-start/mouse-end beacons landing inside a throttle window,
// which is the accepted server-load tradeoff.
type Recorder struct {
	mu   sync.Mutex
	opts Options
	send SendFunc
	now  func() time.Time
	sched Scheduler

	recording  bool
	startedAt  time.Time
	moveCount  int
	samples    []Sample
	cancelStop CancelFunc
	lastSent   time.Time
}

// New builds a recorder on the real clock.
func New(opts Options, send SendFunc) *Recorder {
	return NewWithScheduler(opts, send, time.Now, func(d time.Duration, fn func()) CancelFunc {
		return time.AfterFunc(d, fn).Stop
	})
}

// NewWithScheduler injects the clock and timer, for tests.
func NewWithScheduler(opts Options, send SendFunc, now func() time.Time, sched Scheduler) *Recorder {
	if opts.Duration <= 0 {
		opts.Duration = 10 * time.Second
	}
	if opts.Throttle <= 0 {
		opts.Throttle = time.Second
	}
	if opts.MaxMovements <= 0 {
		opts.MaxMovements = 100
	}
	return &Recorder{opts: opts, send: send, now: now, sched: sched}
}

// Init fires the one-time environment beacon with viewport dimensions.
// Independent of the recording state machine.
func (r *Recorder) Init(viewportW, viewportH int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendLocked("mouse-init", map[string]string{
		"mode": "mouse",
		"vw":   strconv.Itoa(viewportW),
		"vh":   strconv.Itoa(viewportH),
	})
}

// Start begins a recording session. No-op while already recording.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startLocked()
}

func (r *Recorder) startLocked() {
	if r.recording {
		return
	}
	r.recording = true
	r.startedAt = r.now()
	r.moveCount = 0
	r.samples = r.samples[:0]
	r.sendLocked("mouse-start", map[string]string{
		"mode": "mouse-movement",
		"ts":   strconv.FormatInt(r.startedAt.UnixMilli(), 10),
	})
	r.cancelStop = r.sched(r.opts.Duration, r.Stop)
}

// Stop ends the session and fires the summary beacon. Idempotent;
// calling it while Idle is a no-op.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	r.recording = false
	if r.cancelStop != nil {
		r.cancelStop()
		r.cancelStop = nil
	}
	elapsed := r.now().Sub(r.startedAt)
	head := r.samples
	if len(head) > 5 {
		head = head[:5]
	}
	snapshot, _ := json.Marshal(head)
	r.sendLocked("mouse-end", map[string]string{
		"mode":      "mouse-movement",
		"duration":  strconv.FormatInt(elapsed.Milliseconds(), 10),
		"movements": strconv.Itoa(r.moveCount),
		"samples":   string(snapshot),
	})
}

// Recording reports the current state.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// HandleMove processes one mousemove. The first event of an idle
// recorder starts a session; every move is counted, stored up to
// MaxMovements (no eviction once full), and every 5th move fires a
// throttled progress beacon.
func (r *Recorder) HandleMove(x, y int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		r.startLocked()
	}
	r.moveCount++
	elapsed := r.now().Sub(r.startedAt)
	if len(r.samples) < r.opts.MaxMovements {
		r.samples = append(r.samples, Sample{X: x, Y: y, Elapsed: elapsed.Milliseconds()})
	}
	if r.moveCount%5 == 0 {
		r.sendLocked("mouse-update", map[string]string{
			"mode":      "mouse-movement",
			"movements": strconv.Itoa(r.moveCount),
			"elapsed":   strconv.FormatInt(elapsed.Milliseconds(), 10),
			"x":         strconv.Itoa(x),
			"y":         strconv.Itoa(y),
		})
	}
}

// HandleClick processes one click, starting a session if idle.
func (r *Recorder) HandleClick(x, y, button int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		r.startLocked()
	}
	r.sendLocked("mouse-click", map[string]string{
		"mode":   "mouse-movement",
		"x":      strconv.Itoa(x),
		"y":      strconv.Itoa(y),
		"button": strconv.Itoa(button),
	})
}

// HandleScroll processes one scroll, starting a session if idle.
func (r *Recorder) HandleScroll(offsetX, offsetY int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		r.startLocked()
	}
	r.sendLocked("scroll", map[string]string{
		"mode": "mouse-movement",
		"sx":   strconv.Itoa(offsetX),
		"sy":   strconv.Itoa(offsetY),
	})
}

// MoveCount returns the number of movements in the current session.
func (r *Recorder) MoveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.moveCount
}

// Samples returns a copy of the stored movement samples.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// sendLocked applies the global throttle gate and dispatches. The gate
// timestamp advances only on a send that actually went out.
func (r *Recorder) sendLocked(event string, fields map[string]string) bool {
	now := r.now()
	if !r.lastSent.IsZero() && now.Sub(r.lastSent) < r.opts.Throttle {
		return false
	}
	r.lastSent = now
	if r.send != nil {
		r.send(Beacon{Event: event, Fields: fields})
	}
	return true
}
