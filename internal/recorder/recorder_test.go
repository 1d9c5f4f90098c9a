package recorder

import (
	"encoding/json"
	"testing"
	"time"
)

// harness drives the recorder with a manual clock and captured timers.
type harness struct {
	now      time.Time
	sent     []Beacon
	stopFns  []func()
	canceled int
}

func newHarness(opts Options) (*Recorder, *harness) {
	h := &harness{now: time.Unix(1700000000, 0)}
	r := NewWithScheduler(opts,
		func(b Beacon) { h.sent = append(h.sent, b) },
		func() time.Time { return h.now },
		func(d time.Duration, fn func()) CancelFunc {
			h.stopFns = append(h.stopFns, fn)
			return func() bool { h.canceled++; return true }
		},
	)
	return r, h
}

func (h *harness) advance(d time.Duration) { h.now = h.now.Add(d) }

func (h *harness) events() []string {
	out := make([]string, len(h.sent))
	for i, b := range h.sent {
		out[i] = b.Event
	}
	return out
}

func TestRecorder_StartStopLifecycle(t *testing.T) {
	r, h := newHarness(Options{Duration: 10 * time.Second, Throttle: time.Second})

	r.Start()
	if !r.Recording() {
		t.Fatal("should be recording after Start")
	}
	if len(h.sent) != 1 || h.sent[0].Event != "mouse-start" {
		t.Fatalf("events = %v, want [mouse-start]", h.events())
	}
	if len(h.stopFns) != 1 {
		t.Fatalf("auto-stop should be scheduled once, got %d", len(h.stopFns))
	}

	h.advance(3 * time.Second)
	r.Stop()
	if r.Recording() {
		t.Fatal("should be idle after Stop")
	}
	if h.canceled != 1 {
		t.Errorf("pending auto-stop timer should be canceled")
	}
	last := h.sent[len(h.sent)-1]
	if last.Event != "mouse-end" {
		t.Fatalf("events = %v, want mouse-end last", h.events())
	}
	if last.Fields["duration"] != "3000" {
		t.Errorf("duration = %v, want 3000", last.Fields["duration"])
	}
}

func TestRecorder_StopWhileIdleIsNoOp(t *testing.T) {
	r, h := newHarness(Options{})
	r.Stop()
	r.Stop()
	if len(h.sent) != 0 {
		t.Errorf("idle Stop must not send, got %v", h.events())
	}
}

func TestRecorder_StartIsIdempotent(t *testing.T) {
	r, h := newHarness(Options{Throttle: time.Millisecond})
	r.Start()
	h.advance(time.Second)
	r.Start()
	if got := h.events(); len(got) != 1 {
		t.Errorf("double Start sent %v", got)
	}
	if len(h.stopFns) != 1 {
		t.Errorf("double Start scheduled %d timers", len(h.stopFns))
	}
}

func TestRecorder_AutoStopAfterDuration(t *testing.T) {
	r, h := newHarness(Options{Duration: 10 * time.Second, Throttle: time.Second})
	r.Start()
	h.advance(10 * time.Second)
	h.stopFns[0]() // the scheduled timer fires
	if r.Recording() {
		t.Fatal("auto-stop should return recorder to idle")
	}
	last := h.sent[len(h.sent)-1]
	if last.Event != "mouse-end" || last.Fields["duration"] != "10000" {
		t.Errorf("got %v %v", last.Event, last.Fields)
	}
}

func TestRecorder_FirstEventStartsSession(t *testing.T) {
	for _, tc := range []struct {
		name    string
		trigger func(r *Recorder)
	}{
		{"mousemove", func(r *Recorder) { r.HandleMove(10, 20) }},
		{"click", func(r *Recorder) { r.HandleClick(1, 2, 0) }},
		{"scroll", func(r *Recorder) { r.HandleScroll(0, 300) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, h := newHarness(Options{})
			tc.trigger(r)
			if !r.Recording() {
				t.Fatal("triggering event should start recording")
			}
			if h.sent[0].Event != "mouse-start" {
				t.Errorf("first beacon = %v, want mouse-start", h.sent[0].Event)
			}
		})
	}
}

func TestRecorder_MovementSamplingAndUpdates(t *testing.T) {
	r, h := newHarness(Options{MaxMovements: 3, Throttle: time.Millisecond})
	r.Start()

	for i := 1; i <= 10; i++ {
		h.advance(100 * time.Millisecond)
		r.HandleMove(i, i*2)
	}

	if r.MoveCount() != 10 {
		t.Errorf("MoveCount = %d, want 10 (capped samples still counted)", r.MoveCount())
	}
	samples := r.Samples()
	if len(samples) != 3 {
		t.Fatalf("samples = %d, want cap of 3", len(samples))
	}
	// first three moves kept, later ones not stored and nothing evicted
	if samples[0].X != 1 || samples[2].X != 3 {
		t.Errorf("wrong samples kept: %+v", samples)
	}

	updates := 0
	for _, b := range h.sent {
		if b.Event == "mouse-update" {
			updates++
		}
	}
	if updates != 2 { // moves 5 and 10
		t.Errorf("updates = %d, want 2", updates)
	}
}

func TestRecorder_EndSnapshotCapsAtFiveSamples(t *testing.T) {
	r, h := newHarness(Options{MaxMovements: 50, Throttle: time.Millisecond})
	r.Start()
	for i := 0; i < 9; i++ {
		h.advance(time.Second)
		r.HandleMove(i, i)
	}
	r.Stop()

	last := h.sent[len(h.sent)-1]
	if last.Event != "mouse-end" {
		t.Fatalf("events = %v", h.events())
	}
	var snap []Sample
	if err := json.Unmarshal([]byte(last.Fields["samples"]), &snap); err != nil {
		t.Fatalf("samples field not JSON: %v", err)
	}
	if len(snap) != 5 {
		t.Errorf("snapshot = %d samples, want 5", len(snap))
	}
	if last.Fields["movements"] != "9" {
		t.Errorf("movements = %v, want 9", last.Fields["movements"])
	}
}

func TestRecorder_Throttle(t *testing.T) {
	t.Run("sends inside the window are suppressed", func(t *testing.T) {
		r, h := newHarness(Options{Throttle: time.Second, MaxMovements: 100})
		r.Start() // mouse-start goes out, opens the window

		h.advance(200 * time.Millisecond)
		r.HandleClick(1, 1, 0)
		h.advance(200 * time.Millisecond)
		r.HandleClick(2, 2, 0)

		if got := len(h.sent); got != 1 {
			t.Errorf("sends = %d (%v), want 1", got, h.events())
		}
	})

	t.Run("sends outside the window each go out", func(t *testing.T) {
		r, h := newHarness(Options{Throttle: time.Second})
		r.Start()
		h.advance(1100 * time.Millisecond)
		r.HandleClick(1, 1, 0)
		h.advance(1100 * time.Millisecond)
		r.HandleClick(2, 2, 0)

		if got := len(h.sent); got != 3 {
			t.Errorf("sends = %d (%v), want 3", got, h.events())
		}
	})

	t.Run("suppressed send does not advance the gate", func(t *testing.T) {
		r, h := newHarness(Options{Throttle: time.Second})
		r.Start()
		h.advance(900 * time.Millisecond)
		r.HandleClick(1, 1, 0) // suppressed
		h.advance(200 * time.Millisecond)
		r.HandleClick(2, 2, 0) // 1.1s since last successful send

		if got := len(h.sent); got != 2 {
			t.Errorf("sends = %d (%v), want 2", got, h.events())
		}
	})

	t.Run("boundary beacons can be dropped by the shared gate", func(t *testing.T) {
		r, h := newHarness(Options{Throttle: 10 * time.Second})
		r.Init(1920, 1080) // opens the window
		h.advance(time.Second)
		r.Start() // mouse-start suppressed: accepted lossy tradeoff
		if got := h.events(); len(got) != 1 || got[0] != "mouse-init" {
			t.Errorf("events = %v, want only mouse-init", got)
		}
	})
}

func TestRecorder_Init(t *testing.T) {
	r, h := newHarness(Options{})
	r.Init(1280, 720)
	if len(h.sent) != 1 || h.sent[0].Event != "mouse-init" {
		t.Fatalf("events = %v", h.events())
	}
	if h.sent[0].Fields["vw"] != "1280" || h.sent[0].Fields["vh"] != "720" {
		t.Errorf("viewport fields = %v", h.sent[0].Fields)
	}
	if r.Recording() {
		t.Error("Init must not start a session")
	}
}

func TestRecorder_RestartsAfterStop(t *testing.T) {
	r, h := newHarness(Options{Throttle: time.Millisecond})
	r.Start()
	h.advance(time.Second)
	for i := 0; i < 4; i++ {
		r.HandleMove(i, i)
	}
	r.Stop()
	h.advance(time.Second)

	r.HandleMove(99, 99)
	if !r.Recording() {
		t.Fatal("event after stop should begin a new session")
	}
	if r.MoveCount() != 1 {
		t.Errorf("new session MoveCount = %d, want 1 (counters reset)", r.MoveCount())
	}
}
