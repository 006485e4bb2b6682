package pkg

import (
	"io"
	"sync"

	"go.uber.org/multierr"
)

// CombinedWriter writes every message to all of its writers. A failing
// writer does not stop the others, its error is combined into the result.
type CombinedWriter struct {
	mu      sync.Mutex
	Writers []io.Writer
	Err     error
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		Writers: append([]io.Writer(nil), writers...),
	}
}

func (cw *CombinedWriter) Write(p []byte) (n int, err error) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		n += written
	}
	cw.Err = err
	return n, err
}
