package bgp

import (
	"bytes"
	"fmt"
)

// Message is a decoded BGP message. It is modeled as a tagged struct
// rather than an interface hierarchy: Type selects which of the
// per-kind pointer fields is populated, the rest stay nil. This mirrors
// how the attribute and capability types are modeled and keeps callers
// that only care about message framing (the pipeline driver, filters)
// from needing a type switch over a family of concrete types.
type Message struct {
	Type       uint8
	Length     uint16
	Raw        []byte
	ParseError bool

	Open         *OpenMessage
	Update       *UpdateMessage
	Keepalive    *KeepaliveMessage
	Notification *NotificationMessage
	RouteRefresh *RouteRefreshMessage
}

func (m Message) TypeName() string { return MessageTypeLabel(m.Type) }

// SplitMessages splits a single TCP segment's payload on the 16-byte all-ones
// BGP marker, returning one slice per candidate message (marker stripped,
// empty slices discarded). A payload with no marker at all is reported as
// bgperr.ErrNoMessages — routine, since a capture also carries plain TCP
// control segments with no BGP content.
func SplitMessages(payload []byte) ([][]byte, error) {
	if !bytes.Contains(payload, bgpMarker[:]) {
		return nil, errNoMessages
	}

	var parts [][]byte
	rest := payload
	for {
		idx := bytes.Index(rest, bgpMarker[:])
		if idx < 0 {
			if len(rest) > 0 {
				parts = append(parts, rest)
			}
			break
		}
		if idx > 0 {
			parts = append(parts, rest[:idx])
		}
		rest = rest[idx+len(bgpMarker):]
	}

	var out [][]byte
	for _, p := range parts {
		if len(p) > 0 {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, errNoMessages
	}
	return out, nil
}

// DecodeMessage decodes a single marker-stripped slice into a Message.
// The slice starts with the 2-byte length + 1-byte type header; the
// 16-byte marker has already been removed by SplitMessages but still
// counts toward the declared length.
func DecodeMessage(slice []byte) (*Message, error) {
	if len(slice) < 3 {
		return nil, fmt.Errorf("%w: message slice shorter than header", errFactory)
	}

	declaredLen := uint16(slice[0])<<8 | uint16(slice[1])
	msgType := slice[2]
	body := slice[3:]

	if int(declaredLen) != len(slice)+16 {
		return nil, fmt.Errorf("%w: declared length %d does not match slice length %d", errFactory, declaredLen, len(slice)+16)
	}

	msg := &Message{Type: msgType, Length: declaredLen, Raw: append([]byte(nil), slice...)}

	switch msgType {
	case MessageTypeOpen:
		open, err := decodeOpen(body)
		if err != nil {
			msg.ParseError = true
			return msg, nil
		}
		msg.Open = open
		msg.ParseError = open.ParseError
	case MessageTypeUpdate:
		update, err := decodeUpdate(body)
		if err != nil {
			msg.ParseError = true
			return msg, nil
		}
		msg.Update = update
		msg.ParseError = update.ParseError
	case MessageTypeKeepalive:
		msg.Keepalive = &KeepaliveMessage{}
		if declaredLen != 19 || len(body) != 0 {
			msg.ParseError = true
		}
	case MessageTypeNotification:
		notif, err := decodeNotification(body)
		if err != nil {
			msg.ParseError = true
			return msg, nil
		}
		msg.Notification = notif
	case MessageTypeRouteRefresh:
		rr, err := decodeRouteRefresh(body)
		if err != nil {
			msg.ParseError = true
			return msg, nil
		}
		msg.RouteRefresh = rr
	default:
		msg.ParseError = true
	}

	return msg, nil
}

// DecodePacket splits a TCP payload into candidate BGP messages and
// decodes each independently. One slice failing the header-length check
// is dropped and logged by the caller; it does not abort decoding of the
// sibling slices that follow it in the same payload.
func DecodePacket(payload []byte) ([]*Message, []error) {
	slices, err := SplitMessages(payload)
	if err != nil {
		return nil, []error{err}
	}

	var msgs []*Message
	var errs []error
	for _, s := range slices {
		m, err := DecodeMessage(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, errs
}
