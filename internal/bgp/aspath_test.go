package bgp

import (
	"reflect"
	"testing"
)

// The wire vectors below are the canonical disambiguation cases for the
// width heuristic; any change to its branch order shows up here first.

func TestDecodeASPathTwoOctetVector(t *testing.T) {
	// Sequence of 3 ASNs (10, 20, 30), 2 octets each: the 2-octet
	// assumption lands exactly on the payload end.
	payload := []byte{0x02, 0x03, 0x00, 0x0A, 0x00, 0x14, 0x00, 0x1E}

	segs, width, err := decodeASPath(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if width != 2 {
		t.Fatalf("expected width 2, got %d", width)
	}
	want := []AsPathSegment{{Type: ASPathSequence, ASNs: []uint32{10, 20, 30}}}
	if !reflect.DeepEqual(segs, want) {
		t.Fatalf("expected %+v, got %+v", want, segs)
	}
}

func TestDecodeASPathFourOctetVector(t *testing.T) {
	// Sequence of 2 ASNs (10, 65535), 4 octets each: the byte at the
	// 2-octet segment boundary is not a plausible segment type, so the
	// heuristic falls through to 4 octets.
	payload := []byte{0x02, 0x02, 0x00, 0x00, 0x00, 0x0A, 0x00, 0x00, 0xFF, 0xFF}

	segs, width, err := decodeASPath(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if width != 4 {
		t.Fatalf("expected width 4, got %d", width)
	}
	want := []AsPathSegment{{Type: ASPathSequence, ASNs: []uint32{10, 65535}}}
	if !reflect.DeepEqual(segs, want) {
		t.Fatalf("expected %+v, got %+v", want, segs)
	}
}

func TestAsnWidthHeuristicZeroAsnBranch(t *testing.T) {
	// The byte at the 2-octet boundary IS a plausible segment type (0x02),
	// but reading the first segment as 2-octet ASNs would yield ASN 0,
	// which is illegal on the wire — so the heuristic picks 4 octets.
	payload := []byte{0x02, 0x02, 0x00, 0x00, 0xFF, 0xFF, 0x02, 0x00, 0x00, 0x01}

	width, err := asnWidthHeuristic(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if width != 4 {
		t.Fatalf("expected width 4 via the zero-ASN branch, got %d", width)
	}
}

func TestAsnWidthHeuristicIrreconcilable(t *testing.T) {
	// Neither width walks to the payload end.
	payload := []byte{0x02, 0x09, 0x00, 0x0A}
	if _, err := asnWidthHeuristic(payload); err == nil {
		t.Fatalf("expected an error when no width reconciles")
	}
}

func TestAsnWidthHeuristicDefaultWidthToggle(t *testing.T) {
	// An empty sequence segment parses identically under both widths; the
	// tie-break goes to 2 octets unless the 4-octet default is enabled.
	payload := []byte{0x02, 0x00}

	width, err := asnWidthHeuristic(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if width != 2 {
		t.Fatalf("expected the tie-break to pick width 2, got %d", width)
	}

	DefaultASPathWidth = 4
	defer func() { DefaultASPathWidth = 2 }()

	width, err = asnWidthHeuristic(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if width != 4 {
		t.Fatalf("expected the 4-octet default to win the tie, got %d", width)
	}
}

func TestAsPathSegmentStringSet(t *testing.T) {
	s := AsPathSegment{Type: ASPathSet, ASNs: []uint32{65001, 65002}}
	if got, want := s.String(), "{65001,65002}"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
