package feedback

import "errors"

var (
	// ErrNoSurface is returned when an engine is built without a drawable
	// surface or the surface has no pixels.
	ErrNoSurface = errors.New("feedback: no drawable surface")
	// ErrInvalidParameter is returned for degenerate or non-finite inputs.
	ErrInvalidParameter = errors.New("feedback: invalid parameter")
	// ErrDrawFailed is returned when a single draw call could not complete.
	// The frame is abandoned; the next frame may succeed.
	ErrDrawFailed = errors.New("feedback: draw failed")
	// ErrUnknownFormat is returned by the exporter for unsupported formats.
	ErrUnknownFormat = errors.New("feedback: unknown image format")
)

// Surface is the drawable target plus the persistent state texture.
//
// A frame is a sequence of BeginFrame, any number of DrawState and
// FillShape calls, and a final Snapshot. Coordinates are normalized device
// coordinates: the unit quad [-1,1]² covers the whole surface with +Y up.
type Surface interface {
	// Size returns the fixed pixel dimensions chosen at construction.
	Size() (w, h int)
	// Blend returns the surface-wide blend mode.
	Blend() BlendMode

	// BeginFrame resets the drawable target to transparent and binds the
	// state texture as the readable input.
	BeginFrame() error
	// DrawState composites the state texture, drawn as the unit quad,
	// through m onto the drawable target. The first draw of a frame copies
	// instead of blending, so modes that scale by the destination still
	// start from the previous frame.
	DrawState(m Transform) error
	// FillShape composites a procedural shape tinted by c. The unit quad is
	// positioned by placement and then by accumulation.
	FillShape(kind ShapeKind, c Color, placement, accumulation Transform) error
	// Snapshot copies the drawable target into the state texture.
	Snapshot() error

	// Clear fills the state texture with c.
	Clear(c Color) error
	// ReadState copies the state texture into dst as premultiplied RGBA
	// bytes, row-major from the top-left. len(dst) must be 4*w*h.
	ReadState(dst []byte) error
	// ReadTarget copies the last composited frame as premultiplied RGBA bytes
	// in the same layout as ReadState.
	ReadTarget(dst []byte) error

	// Dispose releases the surface. It must not be used afterwards.
	Dispose()
}

// SurfaceOptions configures a Surface implementation.
type SurfaceOptions struct {
	// Blend is the compositing mode for every draw.
	Blend BlendMode
	// Filter selects state texture sampling.
	Filter Filter
}

// drawError wraps a backend failure so callers can match ErrDrawFailed.
func drawError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &surfaceError{op: op, err: err}
}

type surfaceError struct {
	op  string
	err error
}

func (e *surfaceError) Error() string {
	return "feedback: " + e.op + ": " + e.err.Error()
}

func (e *surfaceError) Unwrap() []error {
	return []error{ErrDrawFailed, e.err}
}
