package feedback

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *Engine, *QueueHost) {
	t.Helper()
	s := newTestSurface(t, 8, 8, SurfaceOptions{})
	e := newTestEngine(t, s, quietConfig())
	host := &QueueHost{}
	d := NewDispatcher(e, NewDriver(host, e))
	d.ExportDir = t.TempDir()
	return d, e, host
}

func TestDefaultKeymap(t *testing.T) {
	km := DefaultKeymap()
	tests := []struct {
		key   ebiten.Key
		shift bool
		want  Command
	}{
		{ebiten.KeyR, false, CommandRotateDown},
		{ebiten.KeyR, true, CommandRotateUp},
		{ebiten.KeyG, false, CommandGravityDown},
		{ebiten.KeyG, true, CommandGravityUp},
		{ebiten.KeyN, false, CommandToggleNoise},
		{ebiten.KeyN, true, CommandToggleNoise},
		{ebiten.KeyC, false, CommandClear},
		{ebiten.KeyC, true, CommandClear},
		{ebiten.KeySpace, false, CommandToggleRunning},
		{ebiten.KeySpace, true, CommandToggleRunning},
		{ebiten.KeyT, false, CommandCycleShape},
		{ebiten.KeyT, true, CommandCycleShape},
		{ebiten.KeyS, false, CommandExport},
		{ebiten.KeyS, true, CommandExport},
		{ebiten.KeyB, false, CommandBurst},
		{ebiten.KeyB, true, CommandBurst},
		{ebiten.KeyNumpadAdd, true, CommandFaster},
		{ebiten.KeyEqual, true, CommandFaster},
		{ebiten.KeyMinus, false, CommandSlower},
		{ebiten.KeyQ, false, CommandNone},
	}
	for _, tt := range tests {
		if got := km.Lookup(KeyChord{Key: tt.key, Shift: tt.shift}); got != tt.want {
			t.Errorf("Lookup(%v, shift=%v) = %v, want %v", tt.key, tt.shift, got, tt.want)
		}
	}
}

func TestParseCommand(t *testing.T) {
	for c := CommandRotateDown; c <= CommandSlower; c++ {
		got, err := ParseCommand(c.String())
		if err != nil || got != c {
			t.Errorf("ParseCommand(%q) = %v, %v; want %v", c.String(), got, err, c)
		}
	}
	for _, name := range []string{"none", "jump", ""} {
		if _, err := ParseCommand(name); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("ParseCommand(%q) err = %v, want ErrInvalidParameter", name, err)
		}
	}
}

func TestDispatchAdjusts(t *testing.T) {
	tests := []struct {
		cmd     Command
		gravity float64
		rotate  float64
	}{
		{CommandRotateDown, DefaultGravity, DefaultRotate * AdjustDownFactor},
		{CommandRotateUp, DefaultGravity, DefaultRotate * AdjustUpFactor},
		{CommandGravityDown, DefaultGravity * AdjustDownFactor, DefaultRotate},
		{CommandGravityUp, DefaultGravity * AdjustUpFactor, DefaultRotate},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			d, e, _ := newTestDispatcher(t)
			mustNoErr(t, d.Dispatch(tt.cmd))
			assertNear(t, "gravity", e.Gravity(), tt.gravity)
			assertNear(t, "rotate", e.Rotate(), tt.rotate)
		})
	}
}

func TestDispatchToggles(t *testing.T) {
	d, e, host := newTestDispatcher(t)

	mustNoErr(t, d.Dispatch(CommandToggleNoise))
	if !e.Noise() {
		t.Error("noise should be on after toggle")
	}
	mustNoErr(t, d.Dispatch(CommandToggleRunning))
	if !d.Driver().Running() || host.Pending() != 1 {
		t.Errorf("running = %v, pending = %d; want true, 1", d.Driver().Running(), host.Pending())
	}
	mustNoErr(t, d.Dispatch(CommandToggleRunning))
	if d.Driver().Running() {
		t.Error("second toggle should stop the driver")
	}
	mustNoErr(t, d.Dispatch(CommandCycleShape))
	if e.Pointer().Kind != ShapeSquare {
		t.Errorf("pointer shape = %v, want square", e.Pointer().Kind)
	}
}

func TestDispatchClearAndBurst(t *testing.T) {
	d, e, _ := newTestDispatcher(t)
	mustNoErr(t, d.Dispatch(CommandClear))
	buf := readState(t, e.Surface())
	if got := pixelAt(buf, 8, 3, 3); got != [4]byte{0, 0, 0, 255} {
		t.Errorf("after clear pixel = %v, want opaque black", got)
	}
	mustNoErr(t, d.Dispatch(CommandBurst))
}

func TestDispatchSpeed(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	mustNoErr(t, d.Dispatch(CommandSlower))
	if d.Driver().Delay() != minAdjustedDelay {
		t.Errorf("Delay = %v, want %v", d.Driver().Delay(), minAdjustedDelay)
	}
	mustNoErr(t, d.Dispatch(CommandFaster))
	if d.Driver().Delay() != 0 {
		t.Errorf("Delay = %v, want 0", d.Driver().Delay())
	}
}

func TestDispatchWithoutDriver(t *testing.T) {
	_, e, _ := newTestDispatcher(t)
	d := NewDispatcher(e, nil)
	for _, cmd := range []Command{CommandToggleRunning, CommandFaster} {
		if err := d.Dispatch(cmd); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Dispatch(%v) err = %v, want ErrInvalidParameter", cmd, err)
		}
	}
}

func TestDispatchUnknown(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	if err := d.Dispatch(Command(200)); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Dispatch(200) err = %v, want ErrInvalidParameter", err)
	}
	mustNoErr(t, d.Dispatch(CommandNone))
}

func TestDispatchExport(t *testing.T) {
	d, e, _ := newTestDispatcher(t)
	mustNoErr(t, e.Clear())
	var got []ExportResult
	d.OnExport = func(res ExportResult) { got = append(got, res) }

	mustNoErr(t, d.Dispatch(CommandExport))
	if len(got) != 1 {
		t.Fatalf("OnExport called %d times, want 1", len(got))
	}
	if filepath.Dir(got[0].Path) != d.ExportDir {
		t.Errorf("export dir = %q, want %q", filepath.Dir(got[0].Path), d.ExportDir)
	}
	if _, err := os.Stat(got[0].Path); err != nil {
		t.Errorf("exported file: %v", err)
	}
	if got[0].Image.NRGBAAt(0, 0).A != 255 {
		t.Error("exported image should be opaque")
	}
}

func TestPointerEventOutsideLeaves(t *testing.T) {
	d, e, _ := newTestDispatcher(t)
	d.pointerEvent(4, 4)
	if !e.Pointer().Present {
		t.Fatal("pointer should be present inside the surface")
	}
	assertNear(t, "x", e.Pointer().Position.X, 0)
	assertNear(t, "y", e.Pointer().Position.Y, 0)
	for _, p := range [][2]float64{{-1, 4}, {4, -1}, {8, 4}, {4, 8}} {
		d.pointerEvent(4, 4)
		d.pointerEvent(p[0], p[1])
		if e.Pointer().Present {
			t.Errorf("pointer at %v should be absent", p)
		}
	}
}

// --- Inject queue ---

func TestInjectOneEventPerFrame(t *testing.T) {
	d, e, _ := newTestDispatcher(t)
	d.InjectMove(2, 2)
	d.InjectCommand(CommandCycleShape)
	d.InjectLeave()
	if d.Injected() != 3 {
		t.Fatalf("Injected = %d, want 3", d.Injected())
	}

	ok, err := d.ProcessInjected()
	if !ok || err != nil || !e.Pointer().Present {
		t.Fatalf("move: ok=%v err=%v present=%v", ok, err, e.Pointer().Present)
	}
	ok, err = d.ProcessInjected()
	if !ok || err != nil || e.Pointer().Kind != ShapeSquare {
		t.Fatalf("command: ok=%v err=%v kind=%v", ok, err, e.Pointer().Kind)
	}
	ok, err = d.ProcessInjected()
	if !ok || err != nil || e.Pointer().Present {
		t.Fatalf("leave: ok=%v err=%v present=%v", ok, err, e.Pointer().Present)
	}
	if ok, _ := d.ProcessInjected(); ok {
		t.Error("empty queue should report no event")
	}
}

func TestInjectPath(t *testing.T) {
	d, e, _ := newTestDispatcher(t)
	d.InjectPath(0, 0, 6, 6, 4)
	if d.Injected() != 4 {
		t.Fatalf("Injected = %d, want 4", d.Injected())
	}
	var xs []float64
	for d.Injected() > 0 {
		if _, err := d.ProcessInjected(); err != nil {
			t.Fatal(err)
		}
		xs = append(xs, e.Pointer().Position.X)
	}
	want := []float64{-1, -0.5, 0, 0.5}
	for i := range want {
		assertNear(t, "x", xs[i], want[i])
	}

	d.InjectPath(1, 1, 3, 3, 1)
	if d.Injected() != 1 {
		t.Errorf("single-frame path queued %d events, want 1", d.Injected())
	}
}

func TestInjectedInputDrivesFrames(t *testing.T) {
	d, e, host := newTestDispatcher(t)
	d.Driver().Start()
	d.InjectMove(4, 4)
	for i := range 3 {
		if _, err := d.ProcessInjected(); err != nil {
			t.Fatal(err)
		}
		host.Advance(t0.Add(time.Duration(i) * time.Second))
	}
	if e.Frames() != 3 {
		t.Errorf("Frames = %d, want 3", e.Frames())
	}
}
