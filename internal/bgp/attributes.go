package bgp

import (
	"fmt"
	"net"
)

// PathAttribute is one TLV entry from an UPDATE message's path attribute
// section. Flags is the raw flags octet; the named booleans decompose it
// for callers that don't want to mask it themselves.
type PathAttribute struct {
	Flags          uint8
	Optional       bool
	Transitive     bool
	Partial        bool
	ExtendedLength bool
	Type           uint8
	Value          []byte

	ParseError bool

	Origin             *uint8
	ASPath             []AsPathSegment
	ASPathWidth        int
	NextHop            net.IP
	MultiExitDisc      *uint32
	LocalPref          *uint32
	Communities        []Community
	LargeCommunities   []LargeCommunity
	ExtCommunities     []ExtendedCommunity
	Aggregator         *Aggregator
	OriginatorID       net.IP
	ClusterList        []uint32
	MPReachNLRI        *MPReachNLRI
	MPUnreachNLRI      *MPUnreachNLRI
}

func (a PathAttribute) Name() string { return PathAttributeLabel(a.Type) }

// Aggregator decodes the AGGREGATOR attribute value (last-AS + speaker
// address, 2- or 4-octet ASN depending on negotiated capability).
type Aggregator struct {
	ASN     uint32
	Speaker net.IP
}

// MPReachNLRI is the decoded value of a MP_REACH_NLRI attribute (RFC 4760).
type MPReachNLRI struct {
	AFI     uint16
	SAFI    uint8
	NextHop net.IP
	NLRI    []Route
}

// MPUnreachNLRI is the decoded value of a MP_UNREACH_NLRI attribute.
type MPUnreachNLRI struct {
	AFI  uint16
	SAFI uint8
	NLRI []Route
}

// decodeAttributes reads the path attribute section of an UPDATE message:
// a sequence of TLVs, each [flags, type, length(1 or 2 bytes), value...].
// A single attribute failing to decode does not abort the walk: it is
// recorded with ParseError set and the walk continues from the next TLV,
// so one bad attribute does not discard an otherwise-valid message.
func decodeAttributes(b []byte) ([]PathAttribute, error) {
	var attrs []PathAttribute
	pos := 0
	for pos < len(b) {
		if pos+2 > len(b) {
			return attrs, fmt.Errorf("%w: truncated path attribute header", errDecode)
		}
		flags := b[pos]
		typ := b[pos+1]
		pos += 2

		extended := flags&AttrFlagExtendedLength != 0
		var length int
		if extended {
			if pos+2 > len(b) {
				return attrs, fmt.Errorf("%w: truncated extended-length field", errDecode)
			}
			length = int(b[pos])<<8 | int(b[pos+1])
			pos += 2
		} else {
			if pos+1 > len(b) {
				return attrs, fmt.Errorf("%w: truncated length field", errDecode)
			}
			length = int(b[pos])
			pos++
		}

		if pos+length > len(b) {
			return attrs, fmt.Errorf("%w: attribute value overruns buffer", errDecode)
		}
		value := b[pos : pos+length]
		pos += length

		attr := PathAttribute{
			Flags:          flags,
			Optional:       flags&AttrFlagOptional != 0,
			Transitive:     flags&AttrFlagTransitive != 0,
			Partial:        flags&AttrFlagPartial != 0,
			ExtendedLength: extended,
			Type:           typ,
			Value:          value,
		}
		decodeAttributeValue(&attr)
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// decodeAttributeValue fills in the typed fields of attr from its raw
// Value, dispatching on Type. Unknown types are left as raw bytes only.
// This is a registry in spirit (one function per type) rather than a long
// if-chain; Go has no first-class match-on-constant dispatch cheaper than
// a switch, so the switch below doubles as the registry.
func decodeAttributeValue(attr *PathAttribute) {
	var err error
	switch attr.Type {
	case AttrOrigin:
		err = decodeOrigin(attr)
	case AttrASPath, AttrAS4Path:
		attr.ASPath, attr.ASPathWidth, err = decodeASPath(attr.Value)
	case AttrNextHop:
		err = decodeNextHop(attr)
	case AttrMultiExitDisc:
		err = decodeU32Attr(attr, &attr.MultiExitDisc)
	case AttrLocalPref:
		err = decodeU32Attr(attr, &attr.LocalPref)
	case AttrAggregator, AttrAS4Aggregator:
		err = decodeAggregator(attr)
	case AttrCommunities:
		attr.Communities, err = decodeCommunities(attr.Value)
	case AttrLargeCommunities:
		attr.LargeCommunities, err = decodeLargeCommunities(attr.Value)
	case AttrExtCommunities:
		attr.ExtCommunities, err = decodeExtendedCommunities(attr.Value)
	case AttrOriginatorID:
		err = decodeOriginatorID(attr)
	case AttrClusterList:
		err = decodeClusterList(attr)
	case AttrMPReachNLRI:
		attr.MPReachNLRI, err = decodeMPReachNLRI(attr.Value)
	case AttrMPUnreachNLRI:
		attr.MPUnreachNLRI, err = decodeMPUnreachNLRI(attr.Value)
	case AttrAtomicAggregate:
		// Flag attribute, no value to decode.
	default:
		// Unknown/opaque: Value is retained as-is.
	}
	if err != nil {
		attr.ParseError = true
	}
}

func decodeOrigin(attr *PathAttribute) error {
	if len(attr.Value) != 1 {
		return fmt.Errorf("%w: origin attribute must be 1 byte, got %d", errDecode, len(attr.Value))
	}
	v := attr.Value[0]
	attr.Origin = &v
	return nil
}

func decodeNextHop(attr *PathAttribute) error {
	if len(attr.Value) != 4 {
		return fmt.Errorf("%w: next_hop attribute must be 4 bytes, got %d", errDecode, len(attr.Value))
	}
	ip := make(net.IP, 4)
	copy(ip, attr.Value)
	attr.NextHop = ip
	return nil
}

func decodeU32Attr(attr *PathAttribute, dst **uint32) error {
	if len(attr.Value) != 4 {
		return fmt.Errorf("%w: attribute must be 4 bytes, got %d", errDecode, len(attr.Value))
	}
	v := be32(attr.Value)
	*dst = &v
	return nil
}

func decodeAggregator(attr *PathAttribute) error {
	switch len(attr.Value) {
	case 6: // 2-octet ASN
		attr.Aggregator = &Aggregator{
			ASN:     uint32(attr.Value[0])<<8 | uint32(attr.Value[1]),
			Speaker: net.IP(append([]byte(nil), attr.Value[2:6]...)),
		}
	case 8: // 4-octet ASN
		attr.Aggregator = &Aggregator{
			ASN:     be32(attr.Value[0:4]),
			Speaker: net.IP(append([]byte(nil), attr.Value[4:8]...)),
		}
	default:
		return fmt.Errorf("%w: aggregator attribute unexpected length %d", errDecode, len(attr.Value))
	}
	return nil
}

func decodeOriginatorID(attr *PathAttribute) error {
	if len(attr.Value) != 4 {
		return fmt.Errorf("%w: originator_id attribute must be 4 bytes, got %d", errDecode, len(attr.Value))
	}
	ip := make(net.IP, 4)
	copy(ip, attr.Value)
	attr.OriginatorID = ip
	return nil
}

func decodeClusterList(attr *PathAttribute) error {
	if len(attr.Value)%4 != 0 {
		return fmt.Errorf("%w: cluster_list length %d not a multiple of 4", errDecode, len(attr.Value))
	}
	for i := 0; i < len(attr.Value); i += 4 {
		attr.ClusterList = append(attr.ClusterList, be32(attr.Value[i:i+4]))
	}
	return nil
}

// afiNextHopWidth returns the required next-hop byte multiple for a
// recognized AFI (4 octets per hop for IPv4, 16 for IPv6) and errors on
// any other AFI. An unknown AFI marks the attribute errored without
// aborting the enclosing message.
func afiNextHopWidth(afi uint16) (int, error) {
	switch afi {
	case AFIIPv4:
		return 4, nil
	case AFIIPv6:
		return 16, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized afi %d", errDecode, afi)
	}
}

func decodeMPReachNLRI(b []byte) (*MPReachNLRI, error) {
	if len(b) < 5 {
		return nil, fmt.Errorf("%w: mp_reach_nlri too short", errDecode)
	}
	afi := uint16(b[0])<<8 | uint16(b[1])
	safi := b[2]
	nhLen := int(b[3])
	pos := 4
	if pos+nhLen > len(b) {
		return nil, fmt.Errorf("%w: mp_reach_nlri next hop overruns value", errDecode)
	}

	width, err := afiNextHopWidth(afi)
	if err != nil {
		return nil, err
	}
	if nhLen%width != 0 {
		return nil, fmt.Errorf("%w: mp_reach_nlri next hop length %d not a multiple of %d for afi %d", errDecode, nhLen, width, afi)
	}

	nh := make(net.IP, nhLen)
	copy(nh, b[pos:pos+nhLen])
	pos += nhLen

	// One reserved octet sits between the next hop and the NLRI.
	if pos >= len(b) {
		return nil, fmt.Errorf("%w: mp_reach_nlri missing reserved byte", errDecode)
	}
	pos++

	routes, err := decodeNLRIList(b[pos:], afi)
	if err != nil {
		return nil, err
	}
	return &MPReachNLRI{AFI: afi, SAFI: safi, NextHop: nh, NLRI: routes}, nil
}

func decodeMPUnreachNLRI(b []byte) (*MPUnreachNLRI, error) {
	if len(b) < 3 {
		return nil, fmt.Errorf("%w: mp_unreach_nlri too short", errDecode)
	}
	afi := uint16(b[0])<<8 | uint16(b[1])
	safi := b[2]
	if _, err := afiNextHopWidth(afi); err != nil {
		return nil, err
	}
	routes, err := decodeNLRIList(b[3:], afi)
	if err != nil {
		return nil, err
	}
	return &MPUnreachNLRI{AFI: afi, SAFI: safi, NLRI: routes}, nil
}

// decodeNLRIList decodes a run of length-prefixed prefixes under a known
// AFI; an AFI neither IPv4 nor IPv6 is rejected rather than silently
// decoded as IPv4, matching afiNextHopWidth's AFI whitelist.
func decodeNLRIList(b []byte, afi uint16) ([]Route, error) {
	var routes []Route
	pos := 0
	for pos < len(b) {
		var r Route
		var n int
		var err error
		switch afi {
		case AFIIPv6:
			r, n, err = decodeIPv6Route(b[pos:])
		case AFIIPv4:
			r, n, err = decodeIPv4Route(b[pos:])
		default:
			return routes, fmt.Errorf("%w: unrecognized afi %d", errDecode, afi)
		}
		if err != nil {
			return routes, err
		}
		routes = append(routes, r)
		pos += n
	}
	return routes, nil
}
