// Package analysis provides offline tools for recorded or replayed runs.
//
//   - [PowerSpectrum], [DominantFrequency]: how fast a sample oscillates
//   - [DominantWavelength]: the strongest spatial period of one frame
//   - [PhaseRecorder], [PhasePortraitToASCII]: displacement against velocity
//   - [SeparationRate], [SeparationSpectrum]: whether disturbances die out
//
// A negative separation rate means the chosen parameters are stable:
//
//	rate := analysis.SeparationRate(a, b, 500)
//	if rate > 0 {
//	    // damping or tension is out of range
//	}
package analysis
