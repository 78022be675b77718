package bgp

import "fmt"

// AsPathSegment is one SET or SEQUENCE block of an AS_PATH attribute.
type AsPathSegment struct {
	Type uint8 // ASPathSet or ASPathSequence
	ASNs []uint32
}

func (s AsPathSegment) String() string {
	if s.Type == ASPathSet {
		out := "{"
		for i, a := range s.ASNs {
			if i > 0 {
				out += ","
			}
			out += fmt.Sprint(a)
		}
		return out + "}"
	}
	out := ""
	for i, a := range s.ASNs {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprint(a)
	}
	return out
}

// DefaultASPathWidth selects the winner when a short AS_PATH payload
// reconciles under both the 2- and 4-octet walk: 2 reproduces the
// historical behavior of every deployed consumer, 4 is the forward-
// looking mode for captures known to come from four-octet-ASN-only
// sessions. Set once at startup (the pipeline is single-threaded); any
// value other than 4 behaves as 2.
var DefaultASPathWidth = 2

// asnWidthHeuristic guesses whether an AS_PATH attribute's value encodes
// ASNs as 2 or 4 octets each, the way Wireshark's BGP dissector does: the
// attribute carries no explicit width, so a receiver that hasn't seen the
// corresponding OPEN capability negotiation has to infer it from the
// segment framing.
//
// Preserve the exact decision order, including the short-input tie-break
// toward 2-octet ASNs: any change here silently reclassifies segments on
// payloads this heuristic was shaped to handle, and downstream consumers
// depend on the current classification.
func asnWidthHeuristic(payload []byte) (int, error) {
	if len(payload) < 2 {
		return 0, fmt.Errorf("%w: as_path payload too short for heuristic", errDecode)
	}

	pos := 1
	segLen := int(payload[1])
	pos++ // pos == 2

	offsetCheck := pos + 2*segLen

	var nextType int = -1
	if offsetCheck < len(payload) {
		nextType = int(payload[offsetCheck])
	}

	var assumed int
	switch {
	case offsetCheck == len(payload):
		assumed = 2
		if DefaultASPathWidth == 4 && walkASPath(payload, 4) {
			assumed = 4
		}
	case nextType == 1 || nextType == 2 || nextType == 3 || nextType == 4:
		asnIsNull := false
		for j := 0; j < segLen && !asnIsNull; j++ {
			off := pos + 2*j
			if off+2 > len(payload) {
				break
			}
			check := uint16(payload[off])<<8 | uint16(payload[off+1])
			if check == 0 {
				asnIsNull = true
			}
		}
		if asnIsNull {
			assumed = 4
		} else {
			assumed = 2
			if DefaultASPathWidth == 4 && walkASPath(payload, 2) && walkASPath(payload, 4) {
				assumed = 4
			}
		}
	default:
		assumed = 4
	}

	// Walk the whole payload under the assumed width and accept it only
	// if it lands exactly on the end of the buffer.
	if !walkASPath(payload, assumed) {
		return 0, fmt.Errorf("%w: as_path heuristic could not reconcile width %d", errDecode, assumed)
	}
	return assumed, nil
}

// walkASPath checks whether the segment framing under the given ASN
// width lands exactly on the end of the payload.
func walkASPath(payload []byte, width int) bool {
	k := 0
	for k < len(payload) {
		k++
		if k >= len(payload) {
			return false
		}
		length := int(payload[k])
		k++
		k += length * width
	}
	return k == len(payload)
}

// decodeASPath parses an AS_PATH (or AS4_PATH) attribute value into its
// segments, auto-detecting 2- vs 4-octet ASN width per asnWidthHeuristic.
func decodeASPath(payload []byte) ([]AsPathSegment, int, error) {
	if len(payload) == 0 {
		return nil, 0, nil
	}

	width, err := asnWidthHeuristic(payload)
	if err != nil {
		return nil, 0, err
	}

	var segments []AsPathSegment
	pos := 0
	for pos < len(payload) {
		if pos+2 > len(payload) {
			return segments, width, fmt.Errorf("%w: truncated as_path segment header", errDecode)
		}
		segType := payload[pos]
		segLen := int(payload[pos+1])
		pos += 2

		need := segLen * width
		if pos+need > len(payload) {
			return segments, width, fmt.Errorf("%w: truncated as_path segment value", errDecode)
		}

		asns := make([]uint32, segLen)
		for i := 0; i < segLen; i++ {
			off := pos + i*width
			if width == 4 {
				asns[i] = uint32(payload[off])<<24 | uint32(payload[off+1])<<16 | uint32(payload[off+2])<<8 | uint32(payload[off+3])
			} else {
				asns[i] = uint32(payload[off])<<8 | uint32(payload[off+1])
			}
		}
		segments = append(segments, AsPathSegment{Type: segType, ASNs: asns})
		pos += need
	}

	return segments, width, nil
}
