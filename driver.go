package feedback

import (
	"fmt"
	"log/slog"
	"time"
)

// FrameHost delivers frame callbacks at the display cadence. Each
// RequestFrame call schedules fn to run exactly once, on the frame goroutine.
type FrameHost interface {
	RequestFrame(fn func(now time.Time))
}

// Drawer renders one frame. *Engine implements it.
type Drawer interface {
	Draw() error
}

// minAdjustedDelay is where AdjustDelay starts when slowing down from an
// unthrottled loop, and below which a shrinking delay snaps back to zero.
const minAdjustedDelay = time.Second / 60

// Driver schedules Drawer.Draw on a FrameHost. It is either stopped or
// running; while running it keeps exactly one frame request outstanding.
//
// With a non-zero delay, a callback arriving sooner than delay after the
// last drawn frame is skipped but still reschedules, so the visual cadence
// is decoupled from the host cadence.
type Driver struct {
	host   FrameHost
	drawer Drawer
	log    *slog.Logger

	running bool
	pending bool
	last    time.Time
	delay   time.Duration

	drawn   uint64
	skipped uint64
	failed  uint64
}

// NewDriver creates a stopped driver.
func NewDriver(host FrameHost, drawer Drawer) *Driver {
	return &Driver{
		host:   host,
		drawer: drawer,
		log:    Logger(),
	}
}

// SetLogger overrides the package logger for this driver.
func (d *Driver) SetLogger(l *slog.Logger) {
	if l == nil {
		l = Logger()
	}
	d.log = l
}

// Running reports whether the driver is scheduling frames.
func (d *Driver) Running() bool { return d.running }

// Start begins scheduling frames. No-op when already running.
func (d *Driver) Start() {
	if d.running {
		return
	}
	d.running = true
	d.log.Info("feedback: driver started", "delay", d.delay)
	d.request()
}

// Stop cancels future frames. No-op when already stopped. A frame that is
// executing completes; a request still queued on the host will do nothing.
func (d *Driver) Stop() {
	if !d.running {
		return
	}
	d.running = false
	d.log.Info("feedback: driver stopped", "drawn", d.drawn, "skipped", d.skipped)
}

// Toggle flips between running and stopped and returns the new state.
func (d *Driver) Toggle() bool {
	if d.running {
		d.Stop()
	} else {
		d.Start()
	}
	return d.running
}

// Step draws a single frame immediately, regardless of state and delay.
func (d *Driver) Step(now time.Time) error {
	return d.execute(now)
}

// Delay returns the minimum time between drawn frames.
func (d *Driver) Delay() time.Duration { return d.delay }

// SetDelay sets the minimum time between drawn frames. Zero draws on every
// host callback.
func (d *Driver) SetDelay(delay time.Duration) error {
	if delay < 0 {
		return fmt.Errorf("%w: delay %v", ErrInvalidParameter, delay)
	}
	d.delay = delay
	return nil
}

// AdjustDelay multiplies the delay by factor. Growing from zero starts at
// one 60 Hz frame; shrinking below it returns to zero.
func (d *Driver) AdjustDelay(factor float64) error {
	if !finite(factor) || factor <= 0 {
		return fmt.Errorf("%w: delay factor %v", ErrInvalidParameter, factor)
	}
	next := time.Duration(float64(d.delay) * factor)
	switch {
	case d.delay == 0 && factor > 1:
		next = minAdjustedDelay
	case next < minAdjustedDelay && factor < 1:
		next = 0
	}
	d.delay = next
	d.log.Debug("feedback: delay", "delay", d.delay)
	return nil
}

// Stats returns how many callbacks drew, were skipped by the delay, and
// failed.
func (d *Driver) Stats() (drawn, skipped, failed uint64) {
	return d.drawn, d.skipped, d.failed
}

func (d *Driver) request() {
	if d.pending {
		return
	}
	d.pending = true
	d.host.RequestFrame(d.frame)
}

func (d *Driver) frame(now time.Time) {
	d.pending = false
	if !d.running {
		return
	}
	if d.delay == 0 || now.Sub(d.last) > d.delay {
		// Errors are logged by execute; the next callback is the retry.
		_ = d.execute(now)
	} else {
		d.skipped++
	}
	if d.running {
		d.request()
	}
}

func (d *Driver) execute(now time.Time) error {
	start := time.Now()
	err := d.drawer.Draw()
	d.last = now
	if err != nil {
		d.failed++
		d.log.Warn("feedback: draw failed", "err", err)
		return err
	}
	d.drawn++
	if elapsed := time.Since(start); elapsed > debugSlowFrame {
		d.log.Debug("feedback: slow frame", "elapsed", elapsed)
	}
	return nil
}

// QueueHost is a FrameHost that holds requests until Advance runs them.
// The app advances it once per displayed frame; tests advance it by hand.
type QueueHost struct {
	queue []func(time.Time)
	spare []func(time.Time)
}

// RequestFrame queues fn for the next Advance.
func (h *QueueHost) RequestFrame(fn func(now time.Time)) {
	h.queue = append(h.queue, fn)
}

// Pending returns the number of queued callbacks.
func (h *QueueHost) Pending() int {
	return len(h.queue)
}

// Advance runs every callback queued before the call. Callbacks queued
// while advancing wait for the next Advance.
func (h *QueueHost) Advance(now time.Time) int {
	run := h.queue
	h.queue = h.spare[:0]
	for _, fn := range run {
		fn(now)
	}
	clear(run)
	h.spare = run[:0]
	return len(run)
}
