package bgp

import "fmt"

// UpdateMessage is a decoded BGP UPDATE message (RFC 4271 §4.3).
type UpdateMessage struct {
	WithdrawnRoutesLength uint16
	WithdrawnRoutes       []Route
	PathAttributesLength  uint16
	PathAttributes        []PathAttribute
	NLRI                  []Route
	Subtype               UpdateSubtype
	ParseError            bool
}

// decodeUpdate parses an UPDATE message body: withdrawn routes length +
// list, total path attribute length + list, then NLRI filling the
// remainder of the buffer.
func decodeUpdate(body []byte) (*UpdateMessage, error) {
	msg := &UpdateMessage{}

	if len(body) < 2 {
		return nil, fmt.Errorf("%w: update message too short for withdrawn routes length", errDecode)
	}
	wlen := int(body[0])<<8 | int(body[1])
	pos := 2
	if pos+wlen > len(body) {
		return nil, fmt.Errorf("%w: withdrawn routes length overruns message", errDecode)
	}
	msg.WithdrawnRoutesLength = uint16(wlen)
	withdrawn, err := decodeRouteList(body[pos:pos+wlen], AFIIPv4)
	if err != nil {
		msg.ParseError = true
	}
	msg.WithdrawnRoutes = withdrawn
	pos += wlen

	if pos+2 > len(body) {
		return nil, fmt.Errorf("%w: update message too short for attribute length", errDecode)
	}
	alen := int(body[pos])<<8 | int(body[pos+1])
	pos += 2
	if pos+alen > len(body) {
		return nil, fmt.Errorf("%w: path attribute length overruns message", errDecode)
	}
	msg.PathAttributesLength = uint16(alen)
	attrs, err := decodeAttributes(body[pos : pos+alen])
	if err != nil {
		msg.ParseError = true
	}
	for _, a := range attrs {
		if a.ParseError {
			msg.ParseError = true
		}
	}
	msg.PathAttributes = attrs
	pos += alen

	nlri, err := decodeRouteList(body[pos:], AFIIPv4)
	if err != nil {
		msg.ParseError = true
	}
	msg.NLRI = nlri

	msg.Subtype = deriveSubtype(msg)
	return msg, nil
}

// decodeRouteList decodes a back-to-back run of length-prefixed prefixes,
// the encoding shared by the withdrawn-routes and NLRI sections.
func decodeRouteList(b []byte, afi uint16) ([]Route, error) {
	var routes []Route
	pos := 0
	for pos < len(b) {
		var r Route
		var n int
		var err error
		if afi == AFIIPv6 {
			r, n, err = decodeIPv6Route(b[pos:])
		} else {
			r, n, err = decodeIPv4Route(b[pos:])
		}
		if err != nil {
			return routes, err
		}
		routes = append(routes, r)
		pos += n
	}
	return routes, nil
}

// deriveSubtype classifies an UPDATE as an announcement, a withdrawal,
// both, or neither (a pure EOR/keepalive-style empty UPDATE), considering
// both the conventional NLRI/withdrawn-routes sections and their
// multiprotocol equivalents.
func deriveSubtype(msg *UpdateMessage) UpdateSubtype {
	announces := len(msg.NLRI) > 0
	withdraws := len(msg.WithdrawnRoutes) > 0

	for _, a := range msg.PathAttributes {
		if a.MPReachNLRI != nil && len(a.MPReachNLRI.NLRI) > 0 {
			announces = true
		}
		if a.MPUnreachNLRI != nil && len(a.MPUnreachNLRI.NLRI) > 0 {
			withdraws = true
		}
	}

	switch {
	case announces && withdraws:
		return SubtypeBoth
	case announces:
		return SubtypeAnnounce
	case withdraws:
		return SubtypeWithdrawal
	default:
		return SubtypeNone
	}
}
