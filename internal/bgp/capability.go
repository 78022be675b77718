package bgp

import "fmt"

// Capability is one decoded BGP capability from an OPEN message's
// CAPABILITY optional parameter.
type Capability struct {
	Code uint8
	Raw  []byte

	// Populated only for Code == CapMultiprotocolExtensions.
	AFI  uint16
	SAFI uint8

	// Populated only for Code == CapFourOctetASN.
	ASN uint32

	// Populated only for Code == CapGracefulRestart.
	RestartFlags uint8
	RestartTime  uint16
	AFISAFIList  []GracefulRestartAFISAFI

	// Populated for CapRouteRefresh/CapLegacyRouteRefresh (legacy=true
	// distinguishes the Cisco-private code from the IANA one; both carry
	// an empty value).
	Legacy bool
}

func (c Capability) Name() string { return CapabilityLabel(c.Code) }

// GracefulRestartAFISAFI is one (AFI, SAFI, forwarding-state-preserved)
// tuple inside a Graceful Restart capability.
type GracefulRestartAFISAFI struct {
	AFI     uint16
	SAFI    uint8
	Forward bool
}

func decodeCapability(code uint8, value []byte) Capability {
	cap := Capability{Code: code, Raw: append([]byte(nil), value...)}
	switch code {
	case CapMultiprotocolExtensions:
		if len(value) >= 4 {
			cap.AFI = uint16(value[0])<<8 | uint16(value[1])
			cap.SAFI = value[3]
		}
	case CapFourOctetASN:
		if len(value) == 4 {
			cap.ASN = be32(value)
		}
	case CapRouteRefresh:
		cap.Legacy = false
	case CapLegacyRouteRefresh:
		cap.Legacy = true
	case CapGracefulRestart:
		if len(value) >= 2 {
			restart := uint16(value[0])<<8 | uint16(value[1])
			cap.RestartFlags = uint8(restart >> 12)
			cap.RestartTime = restart & 0x0FFF
			for i := 2; i+4 <= len(value); i += 4 {
				cap.AFISAFIList = append(cap.AFISAFIList, GracefulRestartAFISAFI{
					AFI:     uint16(value[i])<<8 | uint16(value[i+1]),
					SAFI:    value[i+2],
					Forward: value[i+3]&0x80 != 0,
				})
			}
		}
	}
	return cap
}

// OptionalParameter is one TLV from an OPEN message's optional parameters
// section. Only the CAPABILITY parameter type carries structured content;
// anything else is retained as raw bytes.
type OptionalParameter struct {
	Type         uint8
	Value        []byte
	Capabilities []Capability
}

func decodeOptionalParameters(b []byte) ([]OptionalParameter, error) {
	var params []OptionalParameter
	pos := 0
	for pos < len(b) {
		if pos+2 > len(b) {
			return params, fmt.Errorf("%w: truncated optional parameter header", errDecode)
		}
		typ := b[pos]
		length := int(b[pos+1])
		pos += 2
		if pos+length > len(b) {
			return params, fmt.Errorf("%w: optional parameter value overruns buffer", errDecode)
		}
		value := b[pos : pos+length]
		pos += length

		param := OptionalParameter{Type: typ, Value: value}
		if typ == OptParamCapability {
			caps, err := decodeCapabilities(value)
			if err != nil {
				return params, err
			}
			param.Capabilities = caps
		}
		params = append(params, param)
	}
	return params, nil
}

func decodeCapabilities(b []byte) ([]Capability, error) {
	var caps []Capability
	pos := 0
	for pos < len(b) {
		if pos+2 > len(b) {
			return caps, fmt.Errorf("%w: truncated capability header", errDecode)
		}
		code := b[pos]
		length := int(b[pos+1])
		pos += 2
		if pos+length > len(b) {
			return caps, fmt.Errorf("%w: capability value overruns buffer", errDecode)
		}
		caps = append(caps, decodeCapability(code, b[pos:pos+length]))
		pos += length
	}
	return caps, nil
}
