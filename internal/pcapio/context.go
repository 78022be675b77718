// Package pcapio turns raw captured frames into TCP payloads and the
// metadata a BGP decode pipeline needs to attribute and filter them. It
// wraps gopacket for link/IP/TCP classification behind one small adapter
// layer so the rest of the module never imports the decode library
// directly.
package pcapio

import (
	"fmt"
	"net"
	"time"
)

// Context carries everything about a captured frame that a filter or
// formatter might need, independent of the BGP payload it contained.
type Context struct {
	Timestamp time.Time

	SourceMAC      net.HardwareAddr
	DestinationMAC net.HardwareAddr

	SourceIP      net.IP
	DestinationIP net.IP

	SourcePort      uint16
	DestinationPort uint16

	VLANTags []uint16
}

func (c Context) String() string {
	return fmt.Sprintf("<PcapContext ts=%s src=%s:%d dst=%s:%d>",
		c.Timestamp.Format(time.RFC3339Nano),
		c.SourceIP, c.SourcePort, c.DestinationIP, c.DestinationPort)
}
