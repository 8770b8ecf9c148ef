package feedback

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Command is a user-level operation bound to a key.
type Command uint8

const (
	CommandNone Command = iota
	CommandRotateDown
	CommandRotateUp
	CommandGravityDown
	CommandGravityUp
	CommandToggleNoise
	CommandClear
	CommandToggleRunning
	CommandCycleShape
	CommandExport
	CommandBurst
	CommandFaster
	CommandSlower
)

var commandNames = [...]string{
	CommandNone:          "none",
	CommandRotateDown:    "rotate-down",
	CommandRotateUp:      "rotate-up",
	CommandGravityDown:   "gravity-down",
	CommandGravityUp:     "gravity-up",
	CommandToggleNoise:   "noise",
	CommandClear:         "clear",
	CommandToggleRunning: "toggle",
	CommandCycleShape:    "shape",
	CommandExport:        "export",
	CommandBurst:         "burst",
	CommandFaster:        "faster",
	CommandSlower:        "slower",
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("Command(%d)", c)
}

// ParseCommand returns the command with the given name.
func ParseCommand(name string) (Command, error) {
	for i, n := range commandNames {
		if n == name && Command(i) != CommandNone {
			return Command(i), nil
		}
	}
	return CommandNone, fmt.Errorf("%w: unknown command %q", ErrInvalidParameter, name)
}

// Adjustment factors for the parameter keys. Lowercase shrinks, uppercase
// grows; the two are not exact inverses.
const (
	AdjustDownFactor = 0.99099
	AdjustUpFactor   = 1.01
	// SpeedFactor scales the driver delay for the faster and slower keys.
	SpeedFactor = 1.1
)

// KeyChord is a key with an optional shift modifier.
type KeyChord struct {
	Key   ebiten.Key
	Shift bool
}

// Keymap binds key chords to commands.
type Keymap map[KeyChord]Command

// DefaultKeymap returns the standard bindings. Only R and G tell shift
// apart; every other key fires with or without it.
func DefaultKeymap() Keymap {
	m := Keymap{
		{Key: ebiten.KeyR}:                  CommandRotateDown,
		{Key: ebiten.KeyR, Shift: true}:     CommandRotateUp,
		{Key: ebiten.KeyG}:                  CommandGravityDown,
		{Key: ebiten.KeyG, Shift: true}:     CommandGravityUp,
		{Key: ebiten.KeyEqual, Shift: true}: CommandFaster,
		{Key: ebiten.KeyMinus}:              CommandSlower,
	}
	m.bindEither(ebiten.KeyN, CommandToggleNoise)
	m.bindEither(ebiten.KeyC, CommandClear)
	m.bindEither(ebiten.KeySpace, CommandToggleRunning)
	m.bindEither(ebiten.KeyT, CommandCycleShape)
	m.bindEither(ebiten.KeyS, CommandExport)
	m.bindEither(ebiten.KeyB, CommandBurst)
	m.bindEither(ebiten.KeyNumpadAdd, CommandFaster)
	m.bindEither(ebiten.KeyNumpadSubtract, CommandSlower)
	return m
}

// bindEither binds k to cmd with and without shift.
func (m Keymap) bindEither(k ebiten.Key, cmd Command) {
	m[KeyChord{Key: k}] = cmd
	m[KeyChord{Key: k, Shift: true}] = cmd
}

// Lookup returns the command bound to k, or CommandNone.
func (m Keymap) Lookup(k KeyChord) Command {
	return m[k]
}

// shiftPressed reports whether either shift key is held.
func shiftPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyShift) ||
		ebiten.IsKeyPressed(ebiten.KeyShiftLeft) ||
		ebiten.IsKeyPressed(ebiten.KeyShiftRight)
}

// pollCommands appends the commands for keys pressed this tick to buf.
func (m Keymap) pollCommands(buf []Command, keys []ebiten.Key) ([]Command, []ebiten.Key) {
	keys = inpututil.AppendJustPressedKeys(keys[:0])
	shift := shiftPressed()
	for _, k := range keys {
		if cmd := m.Lookup(KeyChord{Key: k, Shift: shift}); cmd != CommandNone {
			buf = append(buf, cmd)
		}
	}
	return buf, keys
}

// ExportResult describes a completed export.
type ExportResult struct {
	Path  string
	Image *image.NRGBA
}

// Dispatcher routes commands and pointer events to an engine and its
// driver. Each command maps to exactly one operation.
type Dispatcher struct {
	engine *Engine
	driver *Driver

	// ExportDir is where CommandExport writes. Empty means the working
	// directory.
	ExportDir string
	// ExportOptions controls the encoder used by CommandExport.
	ExportOptions ExportOptions
	// OnExport, if set, is called after every successful export.
	OnExport func(ExportResult)

	injectQueue []InputEvent
}

// NewDispatcher creates a dispatcher for e and d. d may be nil, in which
// case the running and speed commands fail.
func NewDispatcher(e *Engine, d *Driver) *Dispatcher {
	return &Dispatcher{engine: e, driver: d, ExportDir: "."}
}

// Engine returns the engine commands are applied to.
func (d *Dispatcher) Engine() *Engine { return d.engine }

// Driver returns the driver, or nil.
func (d *Dispatcher) Driver() *Driver { return d.driver }

// Dispatch runs cmd.
func (d *Dispatcher) Dispatch(cmd Command) error {
	e := d.engine
	var err error
	switch cmd {
	case CommandNone:
	case CommandRotateDown:
		err = e.Adjust(ParamRotate, AdjustDownFactor)
	case CommandRotateUp:
		err = e.Adjust(ParamRotate, AdjustUpFactor)
	case CommandGravityDown:
		err = e.Adjust(ParamGravity, AdjustDownFactor)
	case CommandGravityUp:
		err = e.Adjust(ParamGravity, AdjustUpFactor)
	case CommandToggleNoise:
		e.ToggleNoise()
	case CommandClear:
		err = e.Clear()
	case CommandToggleRunning:
		if d.driver == nil {
			return fmt.Errorf("%w: no driver", ErrInvalidParameter)
		}
		d.driver.Toggle()
	case CommandCycleShape:
		e.CyclePointerShape()
	case CommandExport:
		_, err = d.Export("")
	case CommandBurst:
		err = e.Burst(e.cfg.BurstSize)
	case CommandFaster, CommandSlower:
		if d.driver == nil {
			return fmt.Errorf("%w: no driver", ErrInvalidParameter)
		}
		f := 1 / SpeedFactor
		if cmd == CommandSlower {
			f = SpeedFactor
		}
		err = d.driver.AdjustDelay(f)
	default:
		return fmt.Errorf("%w: command %d", ErrInvalidParameter, cmd)
	}
	if err != nil {
		e.log.Warn("feedback: command failed", "command", cmd.String(), "err", err)
		return err
	}
	e.log.Debug("feedback: command", "command", cmd.String())
	return nil
}

// Export writes the engine state to ExportDir and reports it to OnExport.
func (d *Dispatcher) Export(label string) (ExportResult, error) {
	img, err := Snapshot(d.engine.surface)
	if err != nil {
		return ExportResult{}, err
	}
	if label == "" {
		label = "feedback"
	}
	path, err := SaveImage(d.ExportDir, label, img, d.ExportOptions)
	if err != nil {
		return ExportResult{}, err
	}
	res := ExportResult{Path: path, Image: img}
	if d.OnExport != nil {
		d.OnExport(res)
	}
	return res, nil
}

// pointerEvent forwards a pointer position in surface pixels. Positions
// outside the surface count as the pointer leaving.
func (d *Dispatcher) pointerEvent(px, py float64) {
	w, h := d.engine.surface.Size()
	if px < 0 || py < 0 || px >= float64(w) || py >= float64(h) {
		d.engine.PointerLeft()
		return
	}
	d.engine.PointerMoved(px, py)
}
