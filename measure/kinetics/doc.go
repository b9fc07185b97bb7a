// Package kinetics fits time traces of single wavelengths.
//
// [Step] models a rise or fall as an error-function step on a linear
// background and is meant for the first seconds of a reaction. [Decay] fits
// a single exponential with offset, a*exp(-b*t) + c, to whole traces.
//
// Both select the recorded wavelength closest to the requested one, so the
// analysed wavelength may differ slightly from the configured value; it is
// reported in the result.
package kinetics
