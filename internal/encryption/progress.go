package encryption

// Reporter receives the progress of a single encryption or decryption as a ratio in [0, 1].
// It is called synchronously after every chunk and must not block.
type Reporter interface {
	Report(progress float64)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(progress float64)

// Report calls f(progress).
func (f ReporterFunc) Report(progress float64) {
	f(progress)
}

func ratio(done, total int64) float64 {
	if total <= 0 || done >= total {
		return 1
	}

	return float64(done) / float64(total)
}
