package feedback

import (
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Download panel geometry and timing.
const (
	PanelHeight   = 110
	PanelDuration = 0.5 // seconds
	panelPadding  = 5
)

var panelBackground = color.RGBA{R: 16, G: 16, B: 16, A: 224}

// Panel is the slide-in strip along the bottom of the window that shows
// the last exported image and where it was saved.
type Panel struct {
	tween  *gween.Tween
	height float64
	open   bool

	result ExportResult
	thumb  *ebiten.Image
	stale  bool
}

// NewPanel returns a hidden panel.
func NewPanel() *Panel {
	return &Panel{}
}

// Show displays res and slides the panel open.
func (p *Panel) Show(res ExportResult) {
	p.result = res
	p.stale = true
	p.slide(true)
}

// Hide slides the panel closed.
func (p *Panel) Hide() {
	p.slide(false)
}

func (p *Panel) slide(open bool) {
	if p.open == open && p.tween == nil {
		return
	}
	p.open = open
	to := float32(0)
	if open {
		to = PanelHeight
	}
	// Retargeting mid-slide keeps the remaining distance proportional.
	dur := float32(PanelDuration * math.Abs(float64(to)-p.height) / PanelHeight)
	if dur <= 0 {
		p.tween = nil
		p.height = float64(to)
		return
	}
	p.tween = gween.New(float32(p.height), to, dur, ease.OutCubic)
}

// Update advances the slide by dt seconds.
func (p *Panel) Update(dt float32) {
	if p.tween == nil {
		return
	}
	v, done := p.tween.Update(dt)
	p.height = float64(v)
	if done {
		p.tween = nil
	}
}

// Height returns the visible height in pixels.
func (p *Panel) Height() float64 { return p.height }

// Open reports whether the panel is open or opening.
func (p *Panel) Open() bool { return p.open }

// Animating reports whether a slide is in progress.
func (p *Panel) Animating() bool { return p.tween != nil }

// Result returns the export shown in the panel.
func (p *Panel) Result() ExportResult { return p.result }

// Contains reports whether screen point (x, y) is over the visible panel on
// a screen of height screenH.
func (p *Panel) Contains(x, y float64, screenH int) bool {
	return p.height > 0 && x >= 0 && y >= float64(screenH)-p.height && y < float64(screenH)
}

// Draw renders the panel onto dst. face may be nil to skip the caption.
func (p *Panel) Draw(dst *ebiten.Image, face text.Face) {
	if p.height < 1 {
		return
	}
	b := dst.Bounds()
	top := b.Max.Y - int(p.height)
	strip := dst.SubImage(image.Rect(b.Min.X, top, b.Max.X, b.Max.Y)).(*ebiten.Image)
	strip.Fill(panelBackground)

	if p.stale {
		p.refreshThumb()
	}
	x := float64(b.Min.X + panelPadding)
	if p.thumb != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(x, float64(top+panelPadding))
		strip.DrawImage(p.thumb, op)
		x += float64(p.thumb.Bounds().Dx() + 2*panelPadding)
	}
	if face != nil && p.result.Path != "" {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x, float64(top+panelPadding))
		op.ColorScale.ScaleWithColor(color.White)
		op.LineSpacing = face.Metrics().HAscent + face.Metrics().HDescent
		text.Draw(strip, "saved "+filepath.Base(p.result.Path)+"\n"+filepath.Dir(p.result.Path), face, op)
	}
}

// refreshThumb rebuilds the thumbnail so it fits the open panel height.
func (p *Panel) refreshThumb() {
	p.stale = false
	if p.thumb != nil {
		p.thumb.Deallocate()
		p.thumb = nil
	}
	img := p.result.Image
	if img == nil || img.Rect.Dy() == 0 {
		return
	}
	box := PanelHeight - 2*panelPadding
	thumb, err := scale(img, float64(box)/float64(img.Rect.Dy()))
	if err != nil {
		return
	}
	p.thumb = ebiten.NewImageFromImage(thumb)
}
