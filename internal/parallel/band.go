// Package parallel provides the row-band worker pool that dispatches pixel
// kernels across goroutines.
//
// An image is cut into horizontal bands of whole rows. Bands never overlap,
// so workers write disjoint byte ranges and need no locking. Each band is a
// single work item; the pool balances uneven bands by work stealing.
package parallel

// DefaultBandHeight is the number of rows per band when none is configured.
// 64 rows of a 1920px RGBA image is ~480KB, large enough to amortize
// scheduling and small enough to spread across many cores.
const DefaultBandHeight = 64

// Band is a half-open span of rows [Y0, Y1).
type Band struct {
	// Index is the band's position from the top (0-based).
	Index int

	// Y0 is the first row of the band.
	Y0 int

	// Y1 is one past the last row of the band.
	Y1 int
}

// Rows returns the number of rows in the band.
func (b Band) Rows() int {
	return b.Y1 - b.Y0
}

// SplitRows divides height rows into bands of bandHeight rows.
// The last band may be shorter. A non-positive bandHeight selects
// DefaultBandHeight. Returns nil when height is not positive.
func SplitRows(height, bandHeight int) []Band {
	if height <= 0 {
		return nil
	}
	if bandHeight <= 0 {
		bandHeight = DefaultBandHeight
	}

	n := (height + bandHeight - 1) / bandHeight
	bands := make([]Band, n)
	for i := range bands {
		y0 := i * bandHeight
		bands[i] = Band{Index: i, Y0: y0, Y1: min(y0+bandHeight, height)}
	}
	return bands
}
