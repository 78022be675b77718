package sink

import (
	"bufio"
	"fmt"
	"os"

	"github.com/route-beacon/pbgp-decode/internal/bgperr"
)

// FileSink appends newline-terminated records to a file, buffering
// writes and flushing on Close.
type FileSink struct {
	f *os.File
	w *bufio.Writer
}

func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", bgperr.ErrSink, path, err)
	}
	return &FileSink{f: f, w: bufio.NewWriter(f)}, nil
}

func (s *FileSink) Write(record string) error {
	if _, err := s.w.WriteString(record); err != nil {
		return fmt.Errorf("%w: write: %v", bgperr.ErrSink, err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("%w: write: %v", bgperr.ErrSink, err)
	}
	return nil
}

func (s *FileSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("%w: flush: %v", bgperr.ErrSink, err)
	}
	return s.f.Close()
}
