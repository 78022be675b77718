package filter

import (
	"strconv"
	"strings"

	"github.com/route-beacon/pbgp-decode/internal/bgp"
)

// PostFilter decides whether a decoded message should continue to the
// formatter/sink stage.
type PostFilter interface {
	Match(msg *bgp.Message) bool
}

// MessageTypeFilter matches a message's type against a list of values,
// each either a type name (OPEN, UPDATE, KEEPALIVE, NOTIFICATION,
// ROUTE-REFRESH) or its numeric code. A message matches only when its
// type equals one of the configured values; earlier revisions of this
// filter collapsed to accept-everything and the tests pin against a
// regression.
type MessageTypeFilter struct{ Values []string }

func (f MessageTypeFilter) Match(msg *bgp.Message) bool {
	name := msg.TypeName()
	code := strconv.Itoa(int(msg.Type))
	for _, v := range f.Values {
		v, negated := splitNegation(v)
		v = strings.ToUpper(v)
		eq := v == name || v == code
		if negated {
			if !eq {
				return true
			}
		} else if eq {
			return true
		}
	}
	return false
}

// MessageSubTypeFilter matches an UPDATE message's derived subtype
// (ANNOUNCE, WITHDRAWAL, BOTH, NONE). Non-UPDATE messages never match.
type MessageSubTypeFilter struct{ Values []string }

func (f MessageSubTypeFilter) Match(msg *bgp.Message) bool {
	if msg.Update == nil {
		return false
	}
	name := msg.Update.Subtype.String()
	for _, v := range f.Values {
		v, negated := splitNegation(v)
		v = strings.ToUpper(v)
		eq := v == name
		if negated {
			if !eq {
				return true
			}
		} else if eq {
			return true
		}
	}
	return false
}

// MessageSizeFilter matches a message's declared header length against a
// list of integer values.
type MessageSizeFilter struct{ Values []string }

func (f MessageSizeFilter) Match(msg *bgp.Message) bool {
	return matchUint(uint32(msg.Length), f.Values)
}

// NextHopFilter matches the NEXT_HOP path attribute of an UPDATE message.
type NextHopFilter struct{ Values []string }

func (f NextHopFilter) Match(msg *bgp.Message) bool {
	if msg.Update == nil {
		return false
	}
	for _, attr := range msg.Update.PathAttributes {
		if attr.Type != bgp.AttrNextHop || attr.NextHop == nil {
			continue
		}
		if matchString(attr.NextHop.String(), f.Values) {
			return true
		}
	}
	return false
}

// NlriFilter matches any announced NLRI prefix string (CIDR notation).
type NlriFilter struct{ Values []string }

func (f NlriFilter) Match(msg *bgp.Message) bool {
	if msg.Update == nil {
		return false
	}
	for _, r := range msg.Update.NLRI {
		if matchString(r.String(), f.Values) {
			return true
		}
	}
	return false
}

// WithdrawnFilter matches any withdrawn-route prefix string.
type WithdrawnFilter struct{ Values []string }

func (f WithdrawnFilter) Match(msg *bgp.Message) bool {
	if msg.Update == nil {
		return false
	}
	for _, r := range msg.Update.WithdrawnRoutes {
		if matchString(r.String(), f.Values) {
			return true
		}
	}
	return false
}

// AsnFilter matches any ASN appearing anywhere in the AS_PATH.
type AsnFilter struct{ Values []string }

func (f AsnFilter) Match(msg *bgp.Message) bool {
	if msg.Update == nil {
		return false
	}
	for _, attr := range msg.Update.PathAttributes {
		if attr.Type != bgp.AttrASPath && attr.Type != bgp.AttrAS4Path {
			continue
		}
		for _, seg := range attr.ASPath {
			for _, asn := range seg.ASNs {
				if matchUint(asn, f.Values) {
					return true
				}
			}
		}
	}
	return false
}

// LastAsnFilter matches only the last ASN in the AS_PATH (the origin AS).
type LastAsnFilter struct{ Values []string }

func (f LastAsnFilter) Match(msg *bgp.Message) bool {
	if msg.Update == nil {
		return false
	}
	for _, attr := range msg.Update.PathAttributes {
		if attr.Type != bgp.AttrASPath && attr.Type != bgp.AttrAS4Path {
			continue
		}
		if len(attr.ASPath) == 0 {
			continue
		}
		last := attr.ASPath[len(attr.ASPath)-1]
		if len(last.ASNs) == 0 {
			continue
		}
		if matchUint(last.ASNs[len(last.ASNs)-1], f.Values) {
			return true
		}
	}
	return false
}

// CommunityAsnFilter matches the ASN half of a standard community.
type CommunityAsnFilter struct{ Values []string }

func (f CommunityAsnFilter) Match(msg *bgp.Message) bool {
	if msg.Update == nil {
		return false
	}
	for _, attr := range msg.Update.PathAttributes {
		if attr.Type != bgp.AttrCommunities {
			continue
		}
		for _, c := range attr.Communities {
			if matchUint(uint32(c.ASN), f.Values) {
				return true
			}
		}
	}
	return false
}

// CommunityValueFilter matches the value half of a standard community.
type CommunityValueFilter struct{ Values []string }

func (f CommunityValueFilter) Match(msg *bgp.Message) bool {
	if msg.Update == nil {
		return false
	}
	for _, attr := range msg.Update.PathAttributes {
		if attr.Type != bgp.AttrCommunities {
			continue
		}
		for _, c := range attr.Communities {
			if matchUint(uint32(c.Value), f.Values) {
				return true
			}
		}
	}
	return false
}

// LargeCommunityFilter matches a large community against a list of
// "global:local1:local2" patterns. Each of the three positions may be
// "*" to match any value in that position.
type LargeCommunityFilter struct{ Values []string }

func (f LargeCommunityFilter) Match(msg *bgp.Message) bool {
	if msg.Update == nil {
		return false
	}
	for _, attr := range msg.Update.PathAttributes {
		if attr.Type != bgp.AttrLargeCommunities {
			continue
		}
		for _, lc := range attr.LargeCommunities {
			for _, v := range f.Values {
				v, negated := splitNegation(v)
				matched := largeCommunityMatches(lc, v)
				if negated {
					if !matched {
						return true
					}
				} else if matched {
					return true
				}
			}
		}
	}
	return false
}

func largeCommunityMatches(lc bgp.LargeCommunity, pattern string) bool {
	parts := strings.Split(pattern, ":")
	if len(parts) != 3 {
		return false
	}
	actual := []string{
		fmt32(lc.GlobalAdmin),
		fmt32(lc.LocalData1),
		fmt32(lc.LocalData2),
	}
	for i, p := range parts {
		if p == "*" {
			continue
		}
		if p != actual[i] {
			return false
		}
	}
	return true
}

// BlackholeFilter matches RFC 7999 blackhole routes: NEXT_HOP equal to a
// configured value, or a standard community of ASN=65535, value=666.
type BlackholeFilter struct{ NextHopValues []string }

func (f BlackholeFilter) Match(msg *bgp.Message) bool {
	if msg.Update == nil {
		return false
	}
	for _, attr := range msg.Update.PathAttributes {
		if attr.Type == bgp.AttrNextHop && attr.NextHop != nil && len(f.NextHopValues) > 0 {
			if matchString(attr.NextHop.String(), f.NextHopValues) {
				return true
			}
		}
		if attr.Type == bgp.AttrCommunities {
			for _, c := range attr.Communities {
				if c.ASN == 65535 && c.Value == 666 {
					return true
				}
			}
		}
	}
	return false
}

// ErrorFilter passes only messages that parsed cleanly, letting an
// operator exclude malformed traffic from the output.
type ErrorFilter struct{}

func (f ErrorFilter) Match(msg *bgp.Message) bool { return !msg.ParseError }

func matchUint(actual uint32, values []string) bool {
	return matchString(fmt32(actual), values)
}

func fmt32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
