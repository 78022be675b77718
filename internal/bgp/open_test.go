package bgp

import "testing"

func TestDecodeOpenWithCapabilities(t *testing.T) {
	// version 4, ASN 65001, hold time 180, identifier 10.0.0.1, one
	// capability parameter carrying Multiprotocol Extensions (IPv4
	// unicast) and Four-Octet ASN (4200000000).
	caps := []byte{
		CapMultiprotocolExtensions, 4, 0x00, 0x01, 0x00, 0x01,
		CapFourOctetASN, 4, 0xFA, 0x56, 0xEA, 0x00,
	}
	body := []byte{
		4,          // version
		0xFD, 0xE9, // my ASN = 65001
		0x00, 0xB4, // hold time = 180
		10, 0, 0, 1, // identifier
		byte(2 + len(caps)), // optional parameters length
		OptParamCapability, byte(len(caps)),
	}
	body = append(body, caps...)

	open, err := decodeOpen(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open.ParseError {
		t.Fatalf("unexpected parse error")
	}
	if open.Version != 4 || open.MyASN != 65001 || open.HoldTime != 180 {
		t.Fatalf("unexpected fixed header fields: %+v", open)
	}
	if got, want := open.BGPIdentifier.String(), "10.0.0.1"; got != want {
		t.Fatalf("identifier: got %q, want %q", got, want)
	}
	if len(open.OptionalParameters) != 1 {
		t.Fatalf("expected one optional parameter, got %d", len(open.OptionalParameters))
	}
	got := open.OptionalParameters[0].Capabilities
	if len(got) != 2 {
		t.Fatalf("expected two capabilities, got %+v", got)
	}
	if got[0].Code != CapMultiprotocolExtensions || got[0].AFI != AFIIPv4 || got[0].SAFI != SAFIUnicast {
		t.Fatalf("unexpected multiprotocol capability: %+v", got[0])
	}
	if got[1].Code != CapFourOctetASN || got[1].ASN != 4200000000 {
		t.Fatalf("unexpected four-octet ASN capability: %+v", got[1])
	}
}

func TestDecodeOpenNoOptionalParameters(t *testing.T) {
	body := []byte{4, 0xFD, 0xE9, 0x00, 0xB4, 192, 0, 2, 1, 0}
	open, err := decodeOpen(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open.ParseError || len(open.OptionalParameters) != 0 {
		t.Fatalf("expected a clean parameterless OPEN, got %+v", open)
	}
}

func TestDecodeOpenBadParameterLengthKeepsRawBytes(t *testing.T) {
	// Declared optional-parameters length disagrees with the remaining
	// bytes: the message stays decoded, errored, with the raw section
	// preserved.
	body := []byte{4, 0xFD, 0xE9, 0x00, 0xB4, 192, 0, 2, 1, 9, 0xDE, 0xAD}
	open, err := decodeOpen(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !open.ParseError {
		t.Fatalf("expected ParseError for a bad optional-parameters length")
	}
	if len(open.RawOptionalParameters) != 2 {
		t.Fatalf("expected the raw section preserved, got %v", open.RawOptionalParameters)
	}
	if open.MyASN != 65001 {
		t.Fatalf("fixed header fields must survive a bad parameter section")
	}
}
