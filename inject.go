package feedback

// InputKind identifies a synthetic input event.
type InputKind uint8

const (
	InputMove InputKind = iota
	InputLeave
	InputCommand
)

// InputEvent is a queued synthetic input. Move positions are surface pixels
// with the origin at the top left, exactly like real cursor input.
type InputEvent struct {
	Kind    InputKind
	X, Y    float64
	Command Command
}

// InjectMove queues a pointer move to surface pixel (x, y). The event is
// consumed on the next ProcessInjected call.
func (d *Dispatcher) InjectMove(x, y float64) {
	d.injectQueue = append(d.injectQueue, InputEvent{Kind: InputMove, X: x, Y: y})
}

// InjectLeave queues the pointer leaving the surface.
func (d *Dispatcher) InjectLeave() {
	d.injectQueue = append(d.injectQueue, InputEvent{Kind: InputLeave})
}

// InjectCommand queues cmd as if its key had been pressed.
func (d *Dispatcher) InjectCommand(cmd Command) {
	d.injectQueue = append(d.injectQueue, InputEvent{Kind: InputCommand, Command: cmd})
}

// InjectPath queues moves linearly interpolated from (fromX, fromY) to
// (toX, toY), one per frame. frames below 2 queues a single move to the
// destination.
func (d *Dispatcher) InjectPath(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		d.InjectMove(toX, toY)
		return
	}
	for i := range frames {
		t := float64(i) / float64(frames-1)
		d.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// Injected returns the number of queued synthetic events.
func (d *Dispatcher) Injected() int {
	return len(d.injectQueue)
}

// ProcessInjected pops one event from the inject queue and applies it.
// Returns true if an event was consumed, in which case real pointer input
// should be skipped for the frame.
func (d *Dispatcher) ProcessInjected() (bool, error) {
	if len(d.injectQueue) == 0 {
		return false, nil
	}
	evt := d.injectQueue[0]
	copy(d.injectQueue, d.injectQueue[1:])
	d.injectQueue = d.injectQueue[:len(d.injectQueue)-1]
	return true, d.Handle(evt)
}

// Handle applies evt immediately.
func (d *Dispatcher) Handle(evt InputEvent) error {
	switch evt.Kind {
	case InputMove:
		d.pointerEvent(evt.X, evt.Y)
	case InputLeave:
		d.engine.PointerLeft()
	case InputCommand:
		return d.Dispatch(evt.Command)
	}
	return nil
}
