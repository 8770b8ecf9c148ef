package feedback

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig configures Run and NewApp.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height are the surface size in pixels; the window opens
	// at the same size. Zero means 640×480.
	Width, Height int
	// Engine tunes the feedback loop. The zero value means DefaultConfig.
	Engine *Config
	// Surface selects the blend mode and sampling filter.
	Surface SurfaceOptions
	// Delay is the minimum time between drawn frames.
	Delay time.Duration
	// Paused starts the app with the driver stopped.
	Paused bool
	// ShowFPS draws the FPS counter.
	ShowFPS bool
	// Enhance brightens the presented frame and exports. Zero means 1.
	Enhance float64
	// ExportDir and ExportFormat control the export key.
	ExportDir    string
	ExportFormat Format
	// Keymap overrides DefaultKeymap.
	Keymap Keymap
	// Script, if set, is replayed one step per frame.
	Script *ScriptRunner
	// ExitOnScriptDone ends the game once Script completes.
	ExitOnScriptDone bool
}

// errScriptDone terminates the game loop after a script completes.
var errScriptDone = errors.New("feedback: script done")

// App is the interactive host: an ebiten.Game that drives an Engine on an
// EbitenSurface and routes keyboard and pointer input to it.
type App struct {
	cfg      RunConfig
	surface  *EbitenSurface
	engine   *Engine
	host     *QueueHost
	driver   *Driver
	dispatch *Dispatcher
	keymap   Keymap
	panel    *Panel
	overlay  *Overlay
	script   *ScriptRunner

	cursor    image.Point
	hasCursor bool
	cmds      []Command
	keys      []ebiten.Key
}

// NewApp builds the app and its engine. The driver is started unless
// cfg.Paused is set.
func NewApp(cfg RunConfig) (*App, error) {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.Keymap == nil {
		cfg.Keymap = DefaultKeymap()
	}
	ecfg := DefaultConfig()
	if cfg.Engine != nil {
		ecfg = *cfg.Engine
	}

	surface, err := NewEbitenSurface(cfg.Width, cfg.Height, cfg.Surface)
	if err != nil {
		return nil, err
	}
	engine, err := NewEngine(surface, ecfg)
	if err != nil {
		surface.Dispose()
		return nil, err
	}
	overlay, err := NewOverlay(cfg.Keymap, 14)
	if err != nil {
		surface.Dispose()
		return nil, err
	}
	overlay.ShowFPS = cfg.ShowFPS

	a := &App{
		cfg:     cfg,
		surface: surface,
		engine:  engine,
		host:    &QueueHost{},
		keymap:  cfg.Keymap,
		panel:   NewPanel(),
		overlay: overlay,
		script:  cfg.Script,
	}
	a.driver = NewDriver(a.host, engine)
	if err := a.driver.SetDelay(cfg.Delay); err != nil {
		surface.Dispose()
		return nil, err
	}
	a.dispatch = NewDispatcher(engine, a.driver)
	if cfg.ExportDir != "" {
		a.dispatch.ExportDir = cfg.ExportDir
	}
	a.dispatch.ExportOptions = ExportOptions{Format: cfg.ExportFormat, Enhance: cfg.Enhance}
	a.dispatch.OnExport = func(res ExportResult) {
		a.panel.Show(res)
		a.overlay.Toast("saved "+res.Path, 2)
	}

	if err := engine.Clear(); err != nil {
		surface.Dispose()
		return nil, err
	}
	if ecfg.BurstSize > 0 {
		if err := engine.Burst(ecfg.BurstSize); err != nil {
			Logger().Warn("feedback: initial burst failed", "err", err)
		}
	}
	if !cfg.Paused {
		a.driver.Start()
	}
	return a, nil
}

// Engine returns the app engine.
func (a *App) Engine() *Engine { return a.engine }

// Driver returns the app driver.
func (a *App) Driver() *Driver { return a.driver }

// Dispatcher returns the app input dispatcher, for injecting input.
func (a *App) Dispatcher() *Dispatcher { return a.dispatch }

// Update handles input. Frames are drawn from Draw so that the feedback
// loop runs at the display cadence.
func (a *App) Update() error {
	dt := 1 / float64(ebiten.TPS())

	if a.script != nil {
		if err := a.script.Step(a.dispatch); err != nil {
			a.overlay.Toast(err.Error(), 3)
		}
		if a.script.Done() && a.cfg.ExitOnScriptDone {
			return errScriptDone
		}
	}
	injected, err := a.dispatch.ProcessInjected()
	if err != nil {
		a.overlay.Toast(err.Error(), 3)
	}
	if !injected {
		a.pollPointer()
	}

	a.cmds, a.keys = a.keymap.pollCommands(a.cmds[:0], a.keys)
	for _, cmd := range a.cmds {
		if err := a.dispatch.Dispatch(cmd); err != nil {
			a.overlay.Toast(err.Error(), 3)
			continue
		}
		a.commandToast(cmd)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.panel.Hide()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if a.panel.Contains(float64(x), float64(y), a.cfg.Height) {
			a.panel.Hide()
		}
	}
	a.overlay.ShowHelp = ebiten.IsKeyPressed(ebiten.KeyH)

	a.panel.Update(float32(dt))
	a.overlay.Update(dt)
	return nil
}

// pollPointer forwards cursor moves. A cursor that has not moved since the
// last tick is not re-sent, so an injected leave sticks until the real
// cursor moves again.
func (a *App) pollPointer() {
	if !ebiten.IsFocused() {
		if a.hasCursor {
			a.hasCursor = false
			a.engine.PointerLeft()
		}
		return
	}
	x, y := ebiten.CursorPosition()
	p := image.Pt(x, y)
	if a.hasCursor && p == a.cursor {
		return
	}
	a.cursor, a.hasCursor = p, true
	if a.panel.Contains(float64(x), float64(y), a.cfg.Height) {
		a.engine.PointerLeft()
		return
	}
	a.dispatch.pointerEvent(float64(x), float64(y))
}

func (a *App) commandToast(cmd Command) {
	e := a.engine
	switch cmd {
	case CommandRotateDown, CommandRotateUp:
		a.overlay.Toast(fmt.Sprintf("rotate %.4f", e.Rotate()), 1)
	case CommandGravityDown, CommandGravityUp:
		a.overlay.Toast(fmt.Sprintf("gravity %.4f", e.Gravity()), 1)
	case CommandToggleNoise:
		a.overlay.Toast(fmt.Sprintf("noise %t", e.Noise()), 1)
	case CommandToggleRunning:
		if a.driver.Running() {
			a.overlay.Toast("running", 1)
		} else {
			a.overlay.Toast("paused", 1)
		}
	case CommandCycleShape:
		a.overlay.Toast("pointer "+e.Pointer().Kind.String(), 1)
	case CommandFaster, CommandSlower:
		a.overlay.Toast("delay "+a.driver.Delay().String(), 1)
	}
}

// Draw advances the feedback loop by one host frame and presents the state.
func (a *App) Draw(screen *ebiten.Image) {
	a.host.Advance(time.Now())

	op := &ebiten.DrawImageOptions{}
	op.Blend = ebiten.BlendCopy
	if k := a.cfg.Enhance; k > 0 && k != 1 {
		op.ColorScale.Scale(float32(k), float32(k), float32(k), 1)
	}
	screen.DrawImage(a.surface.State(), op)

	a.panel.Draw(screen, a.overlay.Face())
	drawn, skipped, failed := a.driver.Stats()
	a.overlay.Draw(screen, fmt.Sprintf("frames %d/%d/%d", drawn, skipped, failed))
}

// Layout fixes the logical screen to the surface size.
func (a *App) Layout(_, _ int) (int, int) {
	return a.cfg.Width, a.cfg.Height
}

// Close stops the driver and releases GPU resources.
func (a *App) Close() {
	a.driver.Stop()
	a.surface.Dispose()
}

// Run opens a window and runs the feedback app until it is closed.
func Run(cfg RunConfig) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	title := cfg.Title
	if title == "" {
		title = "Feedback"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(app.cfg.Width, app.cfg.Height)
	if err := ebiten.RunGame(app); err != nil && !errors.Is(err, errScriptDone) {
		return err
	}
	return nil
}
