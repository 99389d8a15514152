// Package physics implements the water surface: a 1D chain of height samples
// coupled to their neighbors by springs.
//
// [Field.Advance] runs one step: neighbor coupling from the pre-step heights,
// damping, integration, the boundary policy, then the optional volume
// correction, equilibrium pull and second-pass propagation selected by [Mode].
//
//	f := physics.NewField(100, 800, 600)
//	f.Mode.Propagate = true
//	for range ticks {
//	    f.Advance(nil)
//	}
//
// [Field] implements [dynamo.Configurable]; every knob in [Params] plus
// "level" can be changed by name between steps.
package physics
