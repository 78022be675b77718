package filter

import (
	"strconv"

	"github.com/route-beacon/pbgp-decode/internal/pcapio"
)

// PreFilter decides, from frame metadata alone, whether a frame is worth
// splitting and decoding. Pre-filters run before any BGP parsing so a
// capture full of uninteresting traffic never pays the decode cost.
type PreFilter interface {
	Match(ctx pcapio.Context) bool
}

// SourceIPFilter matches a frame's source IP address against a list of
// dotted-quad or IPv6 strings.
type SourceIPFilter struct{ Values []string }

func (f SourceIPFilter) Match(ctx pcapio.Context) bool {
	return matchString(ctx.SourceIP.String(), f.Values)
}

// DestinationIPFilter matches a frame's destination IP address.
type DestinationIPFilter struct{ Values []string }

func (f DestinationIPFilter) Match(ctx pcapio.Context) bool {
	return matchString(ctx.DestinationIP.String(), f.Values)
}

// SourceMACFilter matches a frame's source MAC address, tolerating the
// punctuation variations clearInput normalizes away.
type SourceMACFilter struct{ Values []string }

func (f SourceMACFilter) Match(ctx pcapio.Context) bool {
	return matchMAC(ctx.SourceMAC.String(), f.Values)
}

// DestinationMACFilter matches a frame's destination MAC address.
type DestinationMACFilter struct{ Values []string }

func (f DestinationMACFilter) Match(ctx pcapio.Context) bool {
	return matchMAC(ctx.DestinationMAC.String(), f.Values)
}

// TimestampFilter matches a frame's capture time, truncated to whole
// seconds, against a list of integer-second values, with the same
// OR-within/AND-across/negation semantics as every other filter.
type TimestampFilter struct{ Values []string }

func (f TimestampFilter) Match(ctx pcapio.Context) bool {
	return matchString(strconv.FormatInt(ctx.Timestamp.Unix(), 10), f.Values)
}

func matchString(actual string, values []string) bool {
	for _, v := range values {
		v, negated := splitNegation(v)
		if negated {
			if actual != v {
				return true
			}
		} else if actual == v {
			return true
		}
	}
	return false
}

func matchMAC(actual string, values []string) bool {
	actual = clearInput(actual)
	for _, v := range values {
		v, negated := splitNegation(v)
		v = clearInput(v)
		if negated {
			if actual != v {
				return true
			}
		} else if actual == v {
			return true
		}
	}
	return false
}
