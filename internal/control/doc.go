// Package control is the interaction layer between a frontend and a wave field.
//
//   - [Adapter]: pointer move/press/release and resize handling, the decaying
//     active window, and the field-mode [physics.Influence]
//   - [Surface]: named controls bound to field parameters, with text input
//     validation and an atomic reset
//   - [IndexAt]: pointer x to sample index mapping
//
// # Usage
//
//	a := control.NewAdapter(field, dynamo.SystemClock{})
//	a.Move(x, y)               // from the frontend's event loop
//	field.Advance(a.Influence(time.Now()))
//
// Frontends run events and ticks on one goroutine; nothing here locks.
package control
