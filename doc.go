// Package feedback is a generative video-feedback renderer for [Ebitengine].
//
// Every frame the previous frame is drawn back onto itself through a slowly
// zooming and turning affine transform. A pointer-driven shape and random
// disturbances are painted on top, and the result becomes the input to the
// next frame. Tiny inputs grow into spirals, tunnels and kaleidoscopic
// trails.
//
// # Quick start
//
// [Run] opens a window with the default look and key bindings:
//
//	feedback.Run(feedback.RunConfig{
//		Title: "Feedback", Width: 800, Height: 600, ShowFPS: true,
//	})
//
// Hold H for the key sheet. R/G tune rotation and gravity, space pauses,
// S exports the current frame.
//
// # Headless use
//
// The engine draws on any [Surface]. [SoftwareSurface] renders on the CPU
// and needs no window, which suits tests and batch rendering:
//
//	s, _ := feedback.NewSoftwareSurface(256, 256, feedback.SurfaceOptions{})
//	e, _ := feedback.NewEngine(s, feedback.DefaultConfig())
//	e.Clear()
//	for range 120 {
//		e.Draw()
//	}
//	feedback.Export(f, s, feedback.ExportOptions{})
//
// # Scheduling
//
// A [Driver] asks a [FrameHost] for one frame at a time and calls
// [Engine.Draw] from each callback. [App] uses a [QueueHost] advanced once
// per displayed frame.
//
// [Ebitengine]: https://ebitengine.org
package feedback
