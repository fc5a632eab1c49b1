package chain

import "runtime"

// fallbackWorkers is used when the hardware concurrency is not reported.
const fallbackWorkers = 8

// Band is the row range [Start, End) written by one worker.
type Band struct {
	Start, End int
}

// Rows returns the number of rows in the band.
func (b Band) Rows() int { return b.End - b.Start }

// Bands partitions height rows into at most workers contiguous bands of
// ceil(height/workers) rows. The last band takes the remainder and empty
// bands are dropped, so short images yield fewer bands than workers.
func Bands(height, workers int) []Band {
	workers = max(workers, 1)
	if height <= 0 {
		return nil
	}
	size := (height + workers - 1) / workers
	bands := make([]Band, 0, workers)
	for i := 0; i < workers; i++ {
		start := i * size
		end := min(height, start+size)
		if i == workers-1 {
			end = height
		}
		if start >= end {
			continue
		}
		bands = append(bands, Band{Start: start, End: end})
	}
	return bands
}

// DefaultWorkers returns the hardware concurrency, falling back to 8 when unreported.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n <= 0 {
		return fallbackWorkers
	}
	return n
}
