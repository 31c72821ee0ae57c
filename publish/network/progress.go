package network

// Snapshot is a point-in-time report of upload completion, derived from the
// counters the backend acknowledged. Progress is an integer percentage in
// [0, 100].
type Snapshot struct {
	Progress       int
	SizeUploaded   int64
	ChunksUploaded int
	ChunksTotal    int
}

// ProgressFunc is invoked after every acknowledged chunk, synchronously with
// the upload loop. Returning a non-nil error aborts the remaining chunks.
type ProgressFunc func(Snapshot) error

func newSnapshot(sizeUploaded, totalSize int64, chunksUploaded, chunksTotal int, terminal bool) Snapshot {
	var progress int
	switch {
	case terminal || totalSize == 0:
		progress = 100
	default:
		progress = int(sizeUploaded * 100 / totalSize)
		if progress > 100 {
			progress = 100
		}
	}

	return Snapshot{
		Progress:       progress,
		SizeUploaded:   sizeUploaded,
		ChunksUploaded: chunksUploaded,
		ChunksTotal:    chunksTotal,
	}
}
