// Package bgp decodes BGP-4 messages (RFC 4271 and its common extensions)
// from the byte slices a packet splitter has already separated from a TCP
// payload. It does not touch the network or the filesystem.
package bgp

import "github.com/route-beacon/pbgp-decode/internal/bgperr"

var (
	errDecode     = bgperr.ErrDecode
	errFactory    = bgperr.ErrFactory
	errNoMessages = bgperr.ErrNoMessages
)
