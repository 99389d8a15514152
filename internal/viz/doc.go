// Package viz is the live terminal frontend built on Bubble Tea.
//
//   - [App]: preset menu that opens the live view
//   - [Model]: live view; mouse motion over the canvas drives the adapter
//   - [Canvas]: braille dot grid the surface is filled into
//   - Themes with 5 built-in color schemes
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	r       - Reset the water to rest
//	R       - Restore the session's control values
//	D       - Restore the stock defaults
//	Tab     - Select the next control
//	Up/Down - Nudge the selected control
//	e       - Type a value for the selected control
//	i b     - Switch interaction / boundary
//	v p o   - Toggle volume correction, propagation, pull
//	s       - Save an SVG snapshot
//	t       - Cycle color themes
//	?       - Show help overlay
//
// One braille dot covers [DotSize] surface pixels, so terminal resizes map
// to surface resizes and reset the water.
package viz
