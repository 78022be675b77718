package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/route-beacon/pbgp-decode/internal/bgp"
	"github.com/route-beacon/pbgp-decode/internal/bgperr"
	"github.com/route-beacon/pbgp-decode/internal/pcapio"
)

// DefaultLineFields is the column set used when --fields is not given.
var DefaultLineFields = []string{"timestamp", "type", "subtype", "prefixes", "withdrawn_routes"}

// lineFieldAliases maps every accepted field name (and its aliases) to a
// canonical key. Unknown names are rejected at construction so a typo in
// --fields fails fast instead of emitting a silent empty column.
var lineFieldAliases = map[string]string{
	"timestamp":               "timestamp",
	"ts":                      "timestamp",
	"type":                    "type",
	"subtype":                 "subtype",
	"length":                  "length",
	"source_ip":               "source_ip",
	"src_ip":                  "source_ip",
	"destination_ip":          "destination_ip",
	"dst_ip":                  "destination_ip",
	"source_mac":              "source_mac",
	"src_mac":                 "source_mac",
	"destination_mac":         "destination_mac",
	"dst_mac":                 "destination_mac",
	"source_port":             "source_port",
	"src_port":                "source_port",
	"destination_port":        "destination_port",
	"dst_port":                "destination_port",
	"prefixes":                "prefixes",
	"nlri":                    "prefixes",
	"prefix_length":           "prefix_length",
	"withdrawn_routes":        "withdrawn_routes",
	"withdrawn":               "withdrawn_routes",
	"path_attributes_length":  "path_attributes_length",
	"withdrawn_routes_length": "withdrawn_routes_length",
	"as_path":                 "as_path",
	"aspath":                  "as_path",
	"as_path_last_asn":        "as_path_last_asn",
	"last_asn":                "as_path_last_asn",
	"next_hop":                "next_hop",
	"nexthop":                 "next_hop",
	"origin":                  "origin",
	"communities":             "communities",
	"large_communities":       "large_communities",
	"myasn":                   "myasn",
	"my_asn":                  "myasn",
	"hold_time":               "hold_time",
	"version":                 "version",
	"bgp_identifier":          "bgp_identifier",
	"error":                   "error",
}

// LineBased renders one tab-separated line per message, over a
// configurable, ordered set of fields. The caller-supplied field list
// wins; DefaultLineFields applies only when none are given.
type LineBased struct {
	fields    []string
	separator string
}

func NewLineBased(fields []string) (*LineBased, error) {
	if len(fields) == 0 {
		fields = DefaultLineFields
	}
	for _, f := range fields {
		if _, ok := lineFieldAliases[f]; !ok {
			return nil, fmt.Errorf("%w: unknown line field %q", bgperr.ErrConfig, f)
		}
	}
	return &LineBased{fields: fields, separator: "\t"}, nil
}

func (l *LineBased) Format(ctx pcapio.Context, msg *bgp.Message) (string, error) {
	values := make([]string, len(l.fields))
	for i, f := range l.fields {
		values[i] = lineFieldValue(lineFieldAliases[f], ctx, msg)
	}
	return strings.Join(values, l.separator), nil
}

func lineFieldValue(canonical string, ctx pcapio.Context, msg *bgp.Message) string {
	switch canonical {
	case "timestamp":
		return ctx.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	case "type":
		return msg.TypeName()
	case "subtype":
		if msg.Update != nil {
			return msg.Update.Subtype.String()
		}
		return ""
	case "length":
		return strconv.Itoa(int(msg.Length))
	case "path_attributes_length":
		if msg.Update != nil {
			return strconv.Itoa(int(msg.Update.PathAttributesLength))
		}
		return ""
	case "withdrawn_routes_length":
		if msg.Update != nil {
			return strconv.Itoa(int(msg.Update.WithdrawnRoutesLength))
		}
		return ""
	case "prefix_length":
		if msg.Update == nil {
			return ""
		}
		return joinPrefixLengths(msg.Update.NLRI)
	case "as_path_last_asn":
		return lastASN(msg)
	case "myasn":
		if msg.Open != nil {
			return strconv.Itoa(int(msg.Open.MyASN))
		}
		return ""
	case "hold_time":
		if msg.Open != nil {
			return strconv.Itoa(int(msg.Open.HoldTime))
		}
		return ""
	case "version":
		if msg.Open != nil {
			return strconv.Itoa(int(msg.Open.Version))
		}
		return ""
	case "bgp_identifier":
		if msg.Open != nil {
			return msg.Open.BGPIdentifier.String()
		}
		return ""
	case "source_ip":
		return ctx.SourceIP.String()
	case "destination_ip":
		return ctx.DestinationIP.String()
	case "source_mac":
		return ctx.SourceMAC.String()
	case "destination_mac":
		return ctx.DestinationMAC.String()
	case "source_port":
		return strconv.Itoa(int(ctx.SourcePort))
	case "destination_port":
		return strconv.Itoa(int(ctx.DestinationPort))
	case "prefixes":
		if msg.Update == nil {
			return ""
		}
		return joinRoutes(msg.Update.NLRI)
	case "withdrawn_routes":
		if msg.Update == nil {
			return ""
		}
		return joinRoutes(msg.Update.WithdrawnRoutes)
	case "as_path":
		return joinASPath(msg)
	case "next_hop":
		return joinAttr(msg, bgp.AttrNextHop)
	case "origin":
		return joinAttr(msg, bgp.AttrOrigin)
	case "communities":
		return joinAttr(msg, bgp.AttrCommunities)
	case "large_communities":
		return joinAttr(msg, bgp.AttrLargeCommunities)
	case "error":
		return strconv.FormatBool(msg.ParseError)
	default:
		return ""
	}
}

// joinRoutes space-joins route strings; multi-valued columns are joined
// by a single space so the tab remains the only column separator.
func joinRoutes(routes []bgp.Route) string {
	parts := make([]string, len(routes))
	for i, r := range routes {
		parts[i] = r.String()
	}
	return strings.Join(parts, " ")
}

func joinPrefixLengths(routes []bgp.Route) string {
	parts := make([]string, len(routes))
	for i, r := range routes {
		parts[i] = strconv.Itoa(int(r.PrefixLength))
	}
	return strings.Join(parts, " ")
}

// lastASN returns the last ASN of the last AS_PATH/AS4_PATH segment (the
// origin AS), matching the post-filter's LastAsnFilter semantics so the
// two stay consistent. The segment type is not checked: a path that ends
// in an AS_SET yields the last ASN of that set.
func lastASN(msg *bgp.Message) string {
	if msg.Update == nil {
		return ""
	}
	for _, attr := range msg.Update.PathAttributes {
		if attr.Type != bgp.AttrASPath && attr.Type != bgp.AttrAS4Path {
			continue
		}
		if len(attr.ASPath) == 0 {
			continue
		}
		last := attr.ASPath[len(attr.ASPath)-1]
		if len(last.ASNs) == 0 {
			continue
		}
		return strconv.FormatUint(uint64(last.ASNs[len(last.ASNs)-1]), 10)
	}
	return ""
}

func joinASPath(msg *bgp.Message) string {
	if msg.Update == nil {
		return ""
	}
	for _, attr := range msg.Update.PathAttributes {
		if attr.Type == bgp.AttrASPath || attr.Type == bgp.AttrAS4Path {
			parts := make([]string, len(attr.ASPath))
			for i, s := range attr.ASPath {
				parts[i] = s.String()
			}
			return strings.Join(parts, " ")
		}
	}
	return ""
}

func joinAttr(msg *bgp.Message, attrType uint8) string {
	if msg.Update == nil {
		return ""
	}
	for _, attr := range msg.Update.PathAttributes {
		if attr.Type != attrType {
			continue
		}
		return formatAttrValue(attr)
	}
	return ""
}
