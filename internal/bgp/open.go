package bgp

import (
	"fmt"
	"net"
)

// OpenMessage is a decoded BGP OPEN message (RFC 4271 §4.2).
type OpenMessage struct {
	Version               uint8
	MyASN                 uint16
	HoldTime              uint16
	BGPIdentifier         net.IP
	OptionalParameters    []OptionalParameter
	ParseError            bool
	RawOptionalParameters []byte // populated only when parsing the section failed
}

// decodeOpen parses an OPEN message body (the bytes after the 19-byte
// common header). A malformed optional-parameters section does not make
// the message unparseable: ParseError is set and RawOptionalParameters
// preserves the undecoded bytes.
func decodeOpen(body []byte) (*OpenMessage, error) {
	if len(body) < 10 {
		return nil, fmt.Errorf("%w: open message body too short: %d bytes", errDecode, len(body))
	}

	msg := &OpenMessage{
		Version:       body[0],
		MyASN:         uint16(body[1])<<8 | uint16(body[2]),
		HoldTime:      uint16(body[3])<<8 | uint16(body[4]),
		BGPIdentifier: net.IP(append([]byte(nil), body[5:9]...)),
	}

	paramLen := int(body[9])
	rest := body[10:]

	if paramLen == 0 {
		return msg, nil
	}
	if paramLen != len(rest) {
		msg.ParseError = true
		msg.RawOptionalParameters = append([]byte(nil), rest...)
		return msg, nil
	}

	params, err := decodeOptionalParameters(rest)
	if err != nil {
		msg.ParseError = true
		msg.RawOptionalParameters = append([]byte(nil), rest...)
		return msg, nil
	}
	msg.OptionalParameters = params
	return msg, nil
}
