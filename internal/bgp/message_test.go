package bgp

import "testing"

// keepaliveWire is the complete 19-byte KEEPALIVE: marker, length, type.
func keepaliveWire() []byte {
	b := append([]byte(nil), bgpMarker[:]...)
	return append(b, 0x00, 0x13, MessageTypeKeepalive)
}

func TestDecodePacketMinimalKeepalive(t *testing.T) {
	msgs, errs := DecodePacket(keepaliveWire())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one message, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.Keepalive == nil {
		t.Fatalf("expected a keepalive, got %+v", msg)
	}
	if msg.Length != 19 {
		t.Fatalf("expected declared length 19, got %d", msg.Length)
	}
	if msg.ParseError {
		t.Fatalf("unexpected parse error")
	}
}

func TestDecodeMessageKeepaliveWithBodyMarksError(t *testing.T) {
	// Declared length 20 agrees with the slice length, but a KEEPALIVE
	// carries no body: the deviation marks the message errored without
	// discarding it.
	slice := []byte{0x00, 0x14, MessageTypeKeepalive, 0xAA}
	msg, err := DecodeMessage(slice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Keepalive == nil {
		t.Fatalf("expected the keepalive variant to stay populated")
	}
	if !msg.ParseError {
		t.Fatalf("expected ParseError for a keepalive with a body")
	}
}

func TestDecodePacketDeclaredLengthsSumToPayload(t *testing.T) {
	var payload []byte
	payload = append(payload, keepaliveWire()...)
	payload = append(payload, keepaliveWire()...)
	payload = append(payload, keepaliveWire()...)

	msgs, errs := DecodePacket(payload)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	var sum int
	for _, m := range msgs {
		sum += int(m.Length)
	}
	if sum != len(payload) {
		t.Fatalf("declared lengths sum to %d, payload is %d bytes", sum, len(payload))
	}
}

func TestDecodeMessageUnknownTypeMarksError(t *testing.T) {
	slice := []byte{0x00, 0x13, 0x09}
	msg, err := DecodeMessage(slice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !msg.ParseError {
		t.Fatalf("expected ParseError for an unknown message type")
	}
	if got, want := msg.TypeName(), "UNKNOWN"; got != want {
		t.Fatalf("expected type name %q, got %q", want, got)
	}
}
