package feedback

import (
	"bytes"
	"fmt"
	"image/color"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Overlay draws the help sheet, short status toasts and the FPS counter on
// top of the presented frame.
type Overlay struct {
	face *text.GoTextFace
	help string

	toast     string
	toastLeft float64

	// ShowHelp draws the key help sheet.
	ShowHelp bool
	// ShowFPS draws the FPS/TPS counter in the top left corner.
	ShowFPS bool
}

const toastFade = 0.3 // seconds

// NewOverlay loads the Go Regular face at size and builds the help sheet
// from km.
func NewOverlay(km Keymap, size float64) (*Overlay, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("feedback: overlay font: %w", err)
	}
	return &Overlay{
		face: &text.GoTextFace{Source: src, Size: size},
		help: HelpText(km),
	}, nil
}

// Face returns the overlay font face.
func (o *Overlay) Face() text.Face { return o.face }

// Toast shows msg for the given number of seconds.
func (o *Overlay) Toast(msg string, seconds float64) {
	o.toast = msg
	o.toastLeft = seconds
}

// Message returns the current toast, or "" when none is showing.
func (o *Overlay) Message() string {
	if o.toastLeft <= 0 {
		return ""
	}
	return o.toast
}

// Update advances toast timers by dt seconds.
func (o *Overlay) Update(dt float64) {
	if o.toastLeft > 0 {
		o.toastLeft -= dt
	}
}

// Draw renders the overlay onto dst. status is printed under the FPS
// counter when ShowFPS is set.
func (o *Overlay) Draw(dst *ebiten.Image, status string) {
	if o.ShowFPS {
		ebitenutil.DebugPrint(dst, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\n%s", ebiten.ActualFPS(), ebiten.ActualTPS(), status))
	}
	if o.ShowHelp {
		o.drawText(dst, o.help, 24, 48, 1)
	}
	if msg := o.Message(); msg != "" {
		alpha := min(o.toastLeft/toastFade, 1)
		h := dst.Bounds().Dy()
		o.drawText(dst, msg, 24, float64(h)-2*o.face.Size, alpha)
	}
}

func (o *Overlay) drawText(dst *ebiten.Image, s string, x, y, alpha float64) {
	m := o.face.Metrics()
	op := &text.DrawOptions{}
	op.LineSpacing = m.HAscent + m.HDescent + m.HLineGap
	// Shadow first for contrast on bright feedback.
	op.GeoM.Translate(x+1, y+1)
	op.ColorScale.ScaleWithColor(color.Black)
	op.ColorScale.ScaleAlpha(float32(alpha))
	text.Draw(dst, s, o.face, op)

	op.GeoM.Reset()
	op.GeoM.Translate(x, y)
	op.ColorScale.Reset()
	op.ColorScale.ScaleWithColor(color.White)
	op.ColorScale.ScaleAlpha(float32(alpha))
	text.Draw(dst, s, o.face, op)
}

// HelpText lists the bindings of km, one per line, ordered by command.
func HelpText(km Keymap) string {
	type binding struct {
		cmd  Command
		keys string
	}
	byCmd := map[Command][]string{}
	for chord, cmd := range km {
		if chord.Shift && km[KeyChord{Key: chord.Key}] == cmd {
			continue // same command either way; list the plain key
		}
		name := chord.Key.String()
		if chord.Shift {
			name = "Shift+" + name
		}
		byCmd[cmd] = append(byCmd[cmd], name)
	}
	lines := make([]binding, 0, len(byCmd))
	for cmd, keys := range byCmd {
		slices.Sort(keys)
		lines = append(lines, binding{cmd, strings.Join(keys, ", ")})
	}
	slices.SortFunc(lines, func(a, b binding) int { return int(a.cmd) - int(b.cmd) })

	var sb strings.Builder
	sb.WriteString("H  help (hold)\n")
	for _, l := range lines {
		fmt.Fprintf(&sb, "%s  %s\n", l.keys, l.cmd)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
