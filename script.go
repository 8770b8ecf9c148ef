package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
)

// scriptStep is a single action in a session script.
type scriptStep struct {
	Action  string  `json:"action"`
	Label   string  `json:"label,omitempty"`
	Command string  `json:"command,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	ToX     float64 `json:"toX,omitempty"`
	ToY     float64 `json:"toY,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays a recorded session through a Dispatcher, one step
// per frame. Moves and keys go through the inject queue so they reach the
// engine exactly like live input.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	exports   []ExportResult
}

// LoadScript parses a JSON session script. Every step is validated up
// front so a bad script fails before anything runs.
//
//	{"steps": [
//	  {"action": "move", "x": 100, "y": 80, "toX": 300, "toY": 200, "frames": 30},
//	  {"action": "key", "command": "shape"},
//	  {"action": "wait", "frames": 60},
//	  {"action": "export", "label": "spiral"},
//	  {"action": "leave"}
//	]}
func LoadScript(data []byte) (*ScriptRunner, error) {
	var s script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, errors.New("parse script: no steps")
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "move", "leave", "wait", "export":
		case "key":
			if _, err := ParseCommand(st.Command); err != nil {
				return nil, fmt.Errorf("parse script: step %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: s.Steps}, nil
}

// Done reports whether every step has executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Exports returns the results of the export steps run so far.
func (r *ScriptRunner) Exports() []ExportResult {
	return r.exports
}

// Step advances the runner by one frame. Call it once per frame before
// d.ProcessInjected.
func (r *ScriptRunner) Step(d *Dispatcher) error {
	if r.done {
		return nil
	}
	// Wait for pending injections to drain before advancing.
	if d.Injected() > 0 {
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	var err error
	switch st.Action {
	case "move":
		if st.Frames > 1 {
			d.InjectPath(st.X, st.Y, st.ToX, st.ToY, st.Frames)
		} else {
			d.InjectMove(st.X, st.Y)
		}
	case "leave":
		d.InjectLeave()
	case "key":
		cmd, _ := ParseCommand(st.Command)
		d.InjectCommand(cmd)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "export":
		var res ExportResult
		res, err = d.Export(st.Label)
		if err == nil {
			r.exports = append(r.exports, res)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && d.Injected() == 0 {
		r.done = true
	}
	if err != nil {
		return fmt.Errorf("script step %d: %w", r.cursor-1, err)
	}
	return nil
}
