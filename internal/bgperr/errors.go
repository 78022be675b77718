// Package bgperr defines the error taxonomy shared across the decode and
// pipeline packages. Errors are plain wrapped values, not a class
// hierarchy: callers use errors.Is/errors.As against the sentinels below.
package bgperr

import "errors"

var (
	// ErrNoMessages means a TCP payload contained no BGP marker at all.
	// This is routine — a capture also carries TCP control segments —
	// and is never surfaced to the user.
	ErrNoMessages = errors.New("bgp: no messages found in payload")

	// ErrFactory means the declared BGP header length disagreed with the
	// slice length. The slice is dropped; parsing of sibling slices
	// continues.
	ErrFactory = errors.New("bgp: header length disagreement")

	// ErrDecode wraps a failure decoding a single attribute, capability,
	// or optional parameter. The containing structure is marked errored
	// and retained; it never aborts the enclosing message.
	ErrDecode = errors.New("bgp: decode error")

	// ErrFilter marks a filter that could not be evaluated against a
	// message (e.g. the relevant attribute is absent). Equivalent to a
	// filter miss.
	ErrFilter = errors.New("bgp: filter error")

	// ErrFormat means a formatter failed to serialize a message. The
	// record is dropped and logged; the pipeline continues.
	ErrFormat = errors.New("bgp: format error")

	// ErrSink wraps a sink write or connect failure.
	ErrSink = errors.New("bgp: sink error")

	// ErrConfig means a configuration value (formatter, sink, field
	// name) could not be recognized. Fatal at startup.
	ErrConfig = errors.New("bgp: config error")

	// ErrCapture wraps a capture-source I/O failure.
	ErrCapture = errors.New("bgp: capture error")
)
