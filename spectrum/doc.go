// Package spectrum holds the wavelength-indexed absorbance table shared by
// every processing stage, together with its text, CSV and Parquet codecs.
//
// A [Table] has one row per wavelength and one column per timepoint. Columns
// are stored column-major because every stage (background subtraction,
// baseline correction, smoothing) works on one spectrum at a time.
//
// # Loading
//
// Raw instrument dumps are whitespace-delimited text: an optional header, a
// block of numeric rows (wavelength followed by one absorbance per
// timepoint) and an optional footer. [Load] applies a single parsing rule:
//
//  1. skip the configured number of header lines
//  2. drop the configured number of footer lines from the end
//  3. read rows until a line starting with non-numeric text or two
//     consecutive blank lines; single blank lines are ignored
//  4. skip rows that are malformed (a bad numeric field or a field count that
//     differs from the first accepted row)
//
// [LoadBackground] applies the same rule to a two-column reference file.
//
// # Aggregation
//
// [Mean] concatenates replicate tables and averages absorbance per
// wavelength and timepoint label:
//
//	a, _ := spectrum.LoadFile("run1.asc", spectrum.WithInterval(0.1))
//	b, _ := spectrum.LoadFile("run2.asc", spectrum.WithInterval(0.1))
//	mean, err := spectrum.Mean(a, b)
package spectrum
