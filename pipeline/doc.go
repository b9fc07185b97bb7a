// Package pipeline runs the processing stages over a set of raw spectrometer
// dumps and writes the stage tables and diagnostic plots.
//
// Stages run in a fixed order:
//
//  1. load every file matched by the input patterns
//  2. average replicates into mean.csv
//  3. subtract the background spectrum (optional)
//  4. remove a polynomial baseline per spectrum (optional)
//  5. Savitzky–Golay smoothing (optional)
//  6. wavelength-over-time and spectra-over-time plots (optional)
//  7. write final.csv and, on request, final.parquet
//
// Each stage produces a new table; the input of a stage is never modified.
// Once the table is empty the remaining stages are skipped.
package pipeline
