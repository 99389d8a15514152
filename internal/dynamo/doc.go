// Package dynamo provides the primitives shared by the simulation packages.
//
//   - [Heights]: snapshot of the sample chain handed to renderers and metrics
//   - [Configurable]: named runtime knobs (the wave field implements it)
//   - [Clock]: time source for the pointer active window; [ManualClock] for tests
//   - sentinel errors such as [ErrMalformedInput] and [ErrUnknownParam]
//
// # Thread Safety
//
// Nothing here synchronizes access to a field. A field and its adapter are
// driven from one goroutine; only [ManualClock] is safe to share.
package dynamo
