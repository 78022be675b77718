package bgp

import "fmt"

// Community is a standard 4-octet community (RFC 1997), split into its
// ASN and value halves.
type Community struct {
	ASN   uint16
	Value uint16
}

func (c Community) String() string {
	return fmt.Sprintf("%d:%d", c.ASN, c.Value)
}

func decodeCommunities(payload []byte) ([]Community, error) {
	if len(payload)%4 != 0 {
		return nil, fmt.Errorf("%w: community value length %d not a multiple of 4", errDecode, len(payload))
	}
	out := make([]Community, 0, len(payload)/4)
	for i := 0; i < len(payload); i += 4 {
		out = append(out, Community{
			ASN:   uint16(payload[i])<<8 | uint16(payload[i+1]),
			Value: uint16(payload[i+2])<<8 | uint16(payload[i+3]),
		})
	}
	return out, nil
}

// LargeCommunity is a three-part 12-octet community (RFC 8092).
type LargeCommunity struct {
	GlobalAdmin uint32
	LocalData1  uint32
	LocalData2  uint32
}

func (c LargeCommunity) String() string {
	return fmt.Sprintf("%d:%d:%d", c.GlobalAdmin, c.LocalData1, c.LocalData2)
}

func decodeLargeCommunities(payload []byte) ([]LargeCommunity, error) {
	if len(payload)%12 != 0 {
		return nil, fmt.Errorf("%w: large community value length %d not a multiple of 12", errDecode, len(payload))
	}
	out := make([]LargeCommunity, 0, len(payload)/12)
	for i := 0; i < len(payload); i += 12 {
		out = append(out, LargeCommunity{
			GlobalAdmin: be32(payload[i : i+4]),
			LocalData1:  be32(payload[i+4 : i+8]),
			LocalData2:  be32(payload[i+8 : i+12]),
		})
	}
	return out, nil
}

// ExtendedCommunity is an 8-octet extended community (RFC 4360). Type and
// Subtype classify it (e.g. Route Target, Site of Origin); Label is the
// short classification string when recognized, "" otherwise.
type ExtendedCommunity struct {
	Type    uint8
	Subtype uint8
	Raw     [6]byte
	Label   string
	// GlobalAdmin/LocalAdmin are populated for the common
	// two-octet-ASN:four-octet-value and IPv4-address:two-octet-value
	// encodings; Raw is always populated regardless.
	GlobalAdmin uint64
	LocalAdmin  uint32
}

func (c ExtendedCommunity) String() string {
	if c.Label != "" {
		return fmt.Sprintf("%s:%d:%d", c.Label, c.GlobalAdmin, c.LocalAdmin)
	}
	return fmt.Sprintf("0x%02x%02x:%x", c.Type, c.Subtype, c.Raw)
}

func decodeExtendedCommunities(payload []byte) ([]ExtendedCommunity, error) {
	if len(payload)%8 != 0 {
		return nil, fmt.Errorf("%w: extended community value length %d not a multiple of 8", errDecode, len(payload))
	}
	out := make([]ExtendedCommunity, 0, len(payload)/8)
	for i := 0; i < len(payload); i += 8 {
		typ := payload[i]
		subtype := payload[i+1]
		ec := ExtendedCommunity{Type: typ, Subtype: subtype, Label: ExtCommunityLabel(typ, subtype)}
		copy(ec.Raw[:], payload[i+2:i+8])

		// Type 0x00/0x40: 2-octet ASN : 4-octet value.
		// Type 0x01/0x41: 4-octet IPv4 address : 2-octet value.
		switch typ &^ 0x40 { // mask off the non-transitive bit for classification
		case 0x00:
			ec.GlobalAdmin = uint64(uint16(ec.Raw[0])<<8 | uint16(ec.Raw[1]))
			ec.LocalAdmin = be32(ec.Raw[2:6])
		case 0x01:
			ec.GlobalAdmin = uint64(be32(ec.Raw[0:4]))
			ec.LocalAdmin = uint32(uint16(ec.Raw[4])<<8 | uint16(ec.Raw[5]))
		}
		out = append(out, ec)
	}
	return out, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
