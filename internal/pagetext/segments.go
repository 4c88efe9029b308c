package pagetext

import (
	"path/filepath"
	"sort"
)

// Segment is a half-open range of 0-based page indexes [Start, End).
// Segmenting bounds peak memory; it never affects extraction results.
type Segment struct {
	Start, End int
}

// Segments splits totalPages into fixed-size batches.
func Segments(totalPages, size int) []Segment {
	if totalPages <= 0 {
		return nil
	}
	if size <= 0 {
		size = 1
	}
	segs := make([]Segment, 0, (totalPages+size-1)/size)
	for start := 0; start < totalPages; start += size {
		end := start + size
		if end > totalPages {
			end = totalPages
		}
		segs = append(segs, Segment{Start: start, End: end})
	}
	return segs
}

func globPNGs(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
