package pcapio

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var testPayload = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xDE, 0xAD}

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ls...); err != nil {
		t.Fatalf("serializing test frame: %v", err)
	}
	return buf.Bytes()
}

func testTCP(srcPort, dstPort layers.TCPPort) *layers.TCP {
	return &layers.TCP{SrcPort: srcPort, DstPort: dstPort, PSH: true, ACK: true, Window: 1024}
}

func TestClassifyEthernetIPv4TCP(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{1, 2, 3, 4, 5, 6},
		DstMAC:       net.HardwareAddr{6, 5, 4, 3, 2, 1},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP("192.0.2.1").To4(),
		DstIP:    net.ParseIP("192.0.2.2").To4(),
	}
	tcp := testTCP(179, 54321)
	tcp.SetNetworkLayerForChecksum(ip)

	data := serialize(t, eth, ip, tcp, gopacket.Payload(testPayload))

	ts := time.Unix(1700000000, 0)
	frame, err := newDecoder(layers.LinkTypeEthernet).classify(data, ts)
	if err != nil {
		t.Fatalf("unexpected classify error: %v", err)
	}
	if got, want := frame.Context.SourceIP.String(), "192.0.2.1"; got != want {
		t.Fatalf("source ip: got %q, want %q", got, want)
	}
	if frame.Context.SourcePort != 179 || frame.Context.DestinationPort != 54321 {
		t.Fatalf("unexpected ports: %d -> %d", frame.Context.SourcePort, frame.Context.DestinationPort)
	}
	if got, want := frame.Context.SourceMAC.String(), "01:02:03:04:05:06"; got != want {
		t.Fatalf("source mac: got %q, want %q", got, want)
	}
	if !bytes.Equal(frame.Payload, testPayload) {
		t.Fatalf("payload: got %x, want %x", frame.Payload, testPayload)
	}
	if !frame.Context.Timestamp.Equal(ts) {
		t.Fatalf("timestamp not carried through")
	}
}

func TestClassifyDot1QTaggedFrame(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{1, 2, 3, 4, 5, 6},
		DstMAC:       net.HardwareAddr{6, 5, 4, 3, 2, 1},
		EthernetType: layers.EthernetTypeDot1Q,
	}
	dot1q := &layers.Dot1Q{VLANIdentifier: 42, Type: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP("192.0.2.1").To4(),
		DstIP:    net.ParseIP("192.0.2.2").To4(),
	}
	tcp := testTCP(179, 54321)
	tcp.SetNetworkLayerForChecksum(ip)

	data := serialize(t, eth, dot1q, ip, tcp, gopacket.Payload(testPayload))

	frame, err := newDecoder(layers.LinkTypeEthernet).classify(data, time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("unexpected classify error: %v", err)
	}
	if len(frame.Context.VLANTags) != 1 || frame.Context.VLANTags[0] != 42 {
		t.Fatalf("expected VLAN tag 42, got %v", frame.Context.VLANTags)
	}
}

func TestClassifyIPv6Frame(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{1, 2, 3, 4, 5, 6},
		DstMAC:       net.HardwareAddr{6, 5, 4, 3, 2, 1},
		EthernetType: layers.EthernetTypeIPv6,
	}
	ip := &layers.IPv6{
		Version:    6,
		HopLimit:   64,
		NextHeader: layers.IPProtocolTCP,
		SrcIP:      net.ParseIP("2001:db8::1"),
		DstIP:      net.ParseIP("2001:db8::2"),
	}
	tcp := testTCP(179, 54321)
	tcp.SetNetworkLayerForChecksum(ip)

	data := serialize(t, eth, ip, tcp, gopacket.Payload(testPayload))

	frame, err := newDecoder(layers.LinkTypeEthernet).classify(data, time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("unexpected classify error: %v", err)
	}
	if got, want := frame.Context.SourceIP.String(), "2001:db8::1"; got != want {
		t.Fatalf("source ip: got %q, want %q", got, want)
	}
}

func TestClassifyNonTCPDropped(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{1, 2, 3, 4, 5, 6},
		DstMAC:       net.HardwareAddr{6, 5, 4, 3, 2, 1},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.ParseIP("192.0.2.1").To4(),
		DstIP:    net.ParseIP("192.0.2.2").To4(),
	}
	udp := &layers.UDP{SrcPort: 53, DstPort: 53}
	udp.SetNetworkLayerForChecksum(ip)

	data := serialize(t, eth, ip, udp, gopacket.Payload(testPayload))

	if _, err := newDecoder(layers.LinkTypeEthernet).classify(data, time.Unix(1700000000, 0)); err == nil {
		t.Fatalf("expected a non-TCP frame to be rejected")
	}
}

func TestClassifyEmptyTCPPayloadDropped(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{1, 2, 3, 4, 5, 6},
		DstMAC:       net.HardwareAddr{6, 5, 4, 3, 2, 1},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP("192.0.2.1").To4(),
		DstIP:    net.ParseIP("192.0.2.2").To4(),
	}
	tcp := testTCP(179, 54321)
	tcp.SetNetworkLayerForChecksum(ip)

	data := serialize(t, eth, ip, tcp)

	if _, err := newDecoder(layers.LinkTypeEthernet).classify(data, time.Unix(1700000000, 0)); err == nil {
		t.Fatalf("expected an empty TCP payload to be rejected")
	}
}
