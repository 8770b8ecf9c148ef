package feedback

import "time"

// frameStats holds per-frame timing and draw metrics.
// Only populated when the engine is in debug mode.
type frameStats struct {
	total        time.Duration
	shapes       int
	disturbances int
}

// SetDebug enables or disables debug mode. When enabled, every frame logs
// its duration and shape counts at debug level.
func (e *Engine) SetDebug(enabled bool) {
	e.debug = enabled
}

// debugLog reports the last frame's stats.
func (e *Engine) debugLog() {
	e.log.Debug("feedback: frame",
		"frame", e.frames,
		"total", e.stats.total,
		"shapes", e.stats.shapes,
		"disturbances", e.stats.disturbances,
		"gravity", e.gravity,
		"rotate", e.rotate,
	)
}

// debugSlowFrame is the frame duration above which the driver logs a slow frame.
const debugSlowFrame = 50 * time.Millisecond
