package format

import (
	"fmt"
	"strings"

	"github.com/route-beacon/pbgp-decode/internal/bgp"
	"github.com/route-beacon/pbgp-decode/internal/pcapio"
)

// HumanReadable renders a message as an indented, labeled block meant
// for a terminal, one message per call.
type HumanReadable struct{}

// prefix returns the indentation marker for a given nesting depth: -1 is
// a bare divider line, 0 is the top level, each level beyond that adds
// two dashes.
func prefix(depth int) string {
	if depth < -1 {
		panic(fmt.Sprintf("format: prefix depth %d out of range", depth))
	}
	if depth == -1 {
		return "|"
	}
	return "|-" + strings.Repeat("--", depth) + " "
}

func (HumanReadable) Format(ctx pcapio.Context, msg *bgp.Message) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "[BGPMessage %s] - %d Bytes\n", msg.TypeName(), msg.Length)
	fmt.Fprintf(&b, "%sMAC: %s -> %s\n", prefix(0), ctx.SourceMAC, ctx.DestinationMAC)
	fmt.Fprintf(&b, "%sIP: %s:%d -> %s:%d\n", prefix(0), ctx.SourceIP, ctx.SourcePort, ctx.DestinationIP, ctx.DestinationPort)
	fmt.Fprintf(&b, "%sTimestamp: %s\n", prefix(0), ctx.Timestamp.UTC().Format("2006-01-02 15:04:05.000000"))

	switch {
	case msg.Open != nil:
		b.WriteString(prefix(-1) + "\n")
		formatOpen(&b, msg.Open)
	case msg.Update != nil:
		b.WriteString(prefix(-1) + "\n")
		formatUpdate(&b, msg.Update)
	case msg.Notification != nil:
		b.WriteString(prefix(-1) + "\n")
		fmt.Fprintf(&b, "%sError Code: %d\n", prefix(0), msg.Notification.ErrorCode)
		fmt.Fprintf(&b, "%sError Subcode: %d\n", prefix(0), msg.Notification.ErrorSubcode)
	case msg.RouteRefresh != nil:
		b.WriteString(prefix(-1) + "\n")
		fmt.Fprintf(&b, "%sAFI: %d\n", prefix(0), msg.RouteRefresh.AFI)
		fmt.Fprintf(&b, "%sSAFI: %d\n", prefix(0), msg.RouteRefresh.SAFI)
	}

	return b.String(), nil
}

func formatOpen(b *strings.Builder, open *bgp.OpenMessage) {
	fmt.Fprintf(b, "%sVersion: %d\n", prefix(0), open.Version)
	fmt.Fprintf(b, "%sMy ASN: %d\n", prefix(0), open.MyASN)
	fmt.Fprintf(b, "%sHold Time: %d\n", prefix(0), open.HoldTime)
	fmt.Fprintf(b, "%sBGP Identifier: %s\n", prefix(0), open.BGPIdentifier)

	if len(open.OptionalParameters) == 0 {
		return
	}
	b.WriteString(prefix(0) + "Optional Parameters:\n")
	for _, p := range open.OptionalParameters {
		if p.Type == bgp.OptParamCapability {
			b.WriteString(prefix(1) + "Parameter: Capability\n")
			for _, c := range p.Capabilities {
				fmt.Fprintf(b, "%s%s (%d)\n", prefix(2), c.Name(), c.Code)
			}
		} else {
			fmt.Fprintf(b, "%sParameter: %d\n", prefix(1), p.Type)
		}
	}
}

func formatUpdate(b *strings.Builder, upd *bgp.UpdateMessage) {
	fmt.Fprintf(b, "%sSubtype: %s\n", prefix(0), upd.Subtype)
	fmt.Fprintf(b, "%sWithdrawn Routes Length: %d\n", prefix(0), upd.WithdrawnRoutesLength)
	fmt.Fprintf(b, "%sTotal Path Attribute Length: %d\n", prefix(0), upd.PathAttributesLength)

	if len(upd.PathAttributes) > 0 {
		b.WriteString(prefix(0) + "Path Attributes\n")
		for _, attr := range upd.PathAttributes {
			fmt.Fprintf(b, "%s%s: %s\n", prefix(1), attr.Name(), formatAttrValue(attr))
		}
	}

	if len(upd.NLRI) > 0 {
		b.WriteString(prefix(0) + "NLRI\n")
		for _, r := range upd.NLRI {
			fmt.Fprintf(b, "%s%s\n", prefix(1), r)
		}
	}

	if len(upd.WithdrawnRoutes) > 0 {
		b.WriteString(prefix(0) + "Withdrawn Routes\n")
		for _, r := range upd.WithdrawnRoutes {
			fmt.Fprintf(b, "%s%s\n", prefix(1), r)
		}
	}
}

func formatAttrValue(attr bgp.PathAttribute) string {
	switch attr.Type {
	case bgp.AttrOrigin:
		if attr.Origin != nil {
			return bgp.OriginValues[*attr.Origin]
		}
	case bgp.AttrASPath, bgp.AttrAS4Path:
		parts := make([]string, len(attr.ASPath))
		for i, s := range attr.ASPath {
			parts[i] = s.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case bgp.AttrNextHop:
		if attr.NextHop != nil {
			return attr.NextHop.String()
		}
	case bgp.AttrCommunities:
		parts := make([]string, len(attr.Communities))
		for i, c := range attr.Communities {
			parts[i] = c.String()
		}
		return strings.Join(parts, " ")
	case bgp.AttrLargeCommunities:
		parts := make([]string, len(attr.LargeCommunities))
		for i, c := range attr.LargeCommunities {
			parts[i] = c.String()
		}
		return strings.Join(parts, " ")
	case bgp.AttrExtCommunities:
		parts := make([]string, len(attr.ExtCommunities))
		for i, c := range attr.ExtCommunities {
			parts[i] = c.String()
		}
		return strings.Join(parts, " ")
	case bgp.AttrMultiExitDisc:
		if attr.MultiExitDisc != nil {
			return fmt.Sprint(*attr.MultiExitDisc)
		}
	case bgp.AttrLocalPref:
		if attr.LocalPref != nil {
			return fmt.Sprint(*attr.LocalPref)
		}
	}
	return fmt.Sprintf("%x", attr.Value)
}
