package bgp

import "testing"

func TestDecodeCommunities(t *testing.T) {
	payload := []byte{0xFE, 0x39, 0x00, 0x01} // 65081:1
	cs, err := decodeCommunities(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs) != 1 || cs[0].String() != "65081:1" {
		t.Fatalf("unexpected communities: %+v", cs)
	}
}

func TestDecodeLargeCommunities(t *testing.T) {
	payload := make([]byte, 12)
	payload[3] = 1  // global admin = 1
	payload[7] = 2  // local data 1 = 2
	payload[11] = 3 // local data 2 = 3
	lcs, err := decodeLargeCommunities(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lcs) != 1 || lcs[0].String() != "1:2:3" {
		t.Fatalf("unexpected large communities: %+v", lcs)
	}
}

func TestDecodeExtendedCommunitiesRouteTarget(t *testing.T) {
	// type 0x00 (2-octet ASN : 4-octet value), subtype 0x02 (RT)
	payload := []byte{0x00, 0x02, 0xFE, 0x39, 0x00, 0x00, 0x00, 0x01}
	ecs, err := decodeExtendedCommunities(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ecs) != 1 {
		t.Fatalf("expected one extended community, got %d", len(ecs))
	}
	if ecs[0].Label != "RT" {
		t.Fatalf("expected RT classification, got %q", ecs[0].Label)
	}
	if ecs[0].GlobalAdmin != 65081 || ecs[0].LocalAdmin != 1 {
		t.Fatalf("unexpected decoded fields: %+v", ecs[0])
	}
}
