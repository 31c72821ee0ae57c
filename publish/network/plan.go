package network

import (
	"fmt"
)

// ChunkRange addresses one contiguous slice of the payload. Start and End are
// inclusive byte offsets; a zero-length range is encoded as End == Start-1.
type ChunkRange struct {
	Start     int64
	End       int64
	TotalSize int64
	Index     int
}

// Length returns the number of payload bytes the range covers.
func (r ChunkRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange formats the range the way the backend expects it on the wire.
func (r ChunkRange) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.TotalSize)
}

// Plan is the ordered sequence of ranges for one upload. It is computed once
// per upload and never mutated afterwards.
type Plan struct {
	Ranges    []ChunkRange
	TotalSize int64
	ChunkSize int64
}

// PlanChunks splits totalSize bytes into ranges of at most chunkSize bytes.
// A zero totalSize still yields a single zero-length range, so even an empty
// payload results in exactly one transmission and the backend always receives
// a create signal.
func PlanChunks(totalSize, chunkSize int64) (Plan, error) {
	if chunkSize <= 0 {
		return Plan{}, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if totalSize < 0 {
		return Plan{}, fmt.Errorf("total size must not be negative, got %d", totalSize)
	}

	if totalSize == 0 {
		return Plan{
			Ranges:    []ChunkRange{{Start: 0, End: -1, TotalSize: 0, Index: 0}},
			TotalSize: 0,
			ChunkSize: chunkSize,
		}, nil
	}

	count := int((totalSize + chunkSize - 1) / chunkSize)
	ranges := make([]ChunkRange, 0, count)
	for i := 0; i < count; i++ {
		start := int64(i) * chunkSize
		end := start + chunkSize - 1
		if end > totalSize-1 {
			end = totalSize - 1
		}
		ranges = append(ranges, ChunkRange{
			Start:     start,
			End:       end,
			TotalSize: totalSize,
			Index:     i,
		})
	}

	return Plan{Ranges: ranges, TotalSize: totalSize, ChunkSize: chunkSize}, nil
}
