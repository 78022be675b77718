package bgp

import "testing"

func TestDecodeIPv4RoutePartialOctets(t *testing.T) {
	cases := []struct {
		plen uint8
		in   []byte
		want string
	}{
		{8, []byte{10}, "10.0.0.0/8"},
		{16, []byte{192, 168}, "192.168.0.0/16"},
		{24, []byte{203, 0, 113}, "203.0.113.0/24"},
		{32, []byte{203, 0, 113, 5}, "203.0.113.5/32"},
	}
	for _, c := range cases {
		b := append([]byte{c.plen}, c.in...)
		r, n, err := decodeIPv4Route(b)
		if err != nil {
			t.Fatalf("plen=%d: unexpected error: %v", c.plen, err)
		}
		if n != 1+len(c.in) {
			t.Fatalf("plen=%d: expected to consume %d bytes, got %d", c.plen, 1+len(c.in), n)
		}
		if r.String() != c.want {
			t.Fatalf("plen=%d: expected %q, got %q", c.plen, c.want, r.String())
		}
	}
}

func TestDecodeIPv4RouteOctetBoundaries(t *testing.T) {
	// ceil(bits/8): 0, 8, 9, 16, 17, 24, 25, 32 bits occupy
	// 0, 1, 2, 2, 3, 3, 4, 4 address octets on the wire.
	cases := []struct {
		plen   uint8
		octets int
	}{
		{0, 0}, {8, 1}, {9, 2}, {16, 2}, {17, 3}, {24, 3}, {25, 4}, {32, 4},
	}
	for _, c := range cases {
		b := append([]byte{c.plen}, make([]byte, c.octets)...)
		r, n, err := decodeIPv4Route(b)
		if err != nil {
			t.Fatalf("plen=%d: unexpected error: %v", c.plen, err)
		}
		if n != 1+c.octets {
			t.Fatalf("plen=%d: expected %d wire octets, consumed %d", c.plen, c.octets, n-1)
		}
		if r.PrefixLength != c.plen {
			t.Fatalf("plen=%d: recorded prefix length %d", c.plen, r.PrefixLength)
		}
	}
}

func TestDecodeIPv4RouteDefaultRoute(t *testing.T) {
	r, n, err := decodeIPv4Route([]byte{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || r.String() != "0.0.0.0/0" {
		t.Fatalf("expected 0.0.0.0/0 consuming 1 byte, got %q (%d bytes)", r.String(), n)
	}
}

func TestDecodeIPv4RouteRejectsOversizedLength(t *testing.T) {
	_, _, err := decodeIPv4Route([]byte{33, 1, 2, 3, 4})
	if err == nil {
		t.Fatalf("expected an error for a prefix length over 32")
	}
}

func TestDecodeIPv6RouteCompressed(t *testing.T) {
	// 2001:db8:: /32
	b := []byte{32, 0x20, 0x01, 0x0d, 0xb8}
	r, n, err := decodeIPv6Route(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected to consume 5 bytes, got %d", n)
	}
	if got, want := r.String(), "2001:db8::/32"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestDecodeIPv6RouteFullLength(t *testing.T) {
	b := append([]byte{128}, []byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}...)
	r, n, err := decodeIPv6Route(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 17 {
		t.Fatalf("expected to consume 17 bytes, got %d", n)
	}
	if got, want := r.String(), "2001:db8::1/128"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
