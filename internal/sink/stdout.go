package sink

import (
	"bufio"
	"fmt"
	"io"

	"github.com/route-beacon/pbgp-decode/internal/bgperr"
)

// StdoutSink writes newline-terminated records to a writer, normally
// os.Stdout.
type StdoutSink struct {
	w *bufio.Writer
}

func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{w: bufio.NewWriter(w)}
}

func (s *StdoutSink) Write(record string) error {
	if _, err := s.w.WriteString(record); err != nil {
		return fmt.Errorf("%w: write: %v", bgperr.ErrSink, err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("%w: write: %v", bgperr.ErrSink, err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", bgperr.ErrSink, err)
	}
	return nil
}

func (s *StdoutSink) Close() error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", bgperr.ErrSink, err)
	}
	return nil
}
