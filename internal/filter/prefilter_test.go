package filter

import (
	"net"
	"testing"
	"time"

	"github.com/route-beacon/pbgp-decode/internal/pcapio"
)

func TestSourceIPFilterMatchesConfiguredAddress(t *testing.T) {
	ctx := pcapio.Context{SourceIP: net.ParseIP("192.0.2.1")}
	f := SourceIPFilter{Values: []string{"192.0.2.1"}}
	if !f.Match(ctx) {
		t.Fatalf("expected matching source IP to pass the filter")
	}

	f2 := SourceIPFilter{Values: []string{"192.0.2.2"}}
	if f2.Match(ctx) {
		t.Fatalf("did not expect a mismatched source IP to pass the filter")
	}
}

func TestTimestampFilterMatchesWholeSecond(t *testing.T) {
	ctx := pcapio.Context{Timestamp: time.Unix(1700000000, 500_000_000)}
	f := TimestampFilter{Values: []string{"1700000000"}}
	if !f.Match(ctx) {
		t.Fatalf("expected capture second 1700000000 to match regardless of sub-second precision")
	}

	f2 := TimestampFilter{Values: []string{"1700000001"}}
	if f2.Match(ctx) {
		t.Fatalf("did not expect a mismatched capture second to match")
	}
}

func TestTimestampFilterNegated(t *testing.T) {
	ctx := pcapio.Context{Timestamp: time.Unix(1700000000, 0)}
	f := TimestampFilter{Values: []string{"~1700000000"}}
	if f.Match(ctx) {
		t.Fatalf("negated timestamp filter must not match the excluded second")
	}
}
