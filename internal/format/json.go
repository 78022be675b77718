package format

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/route-beacon/pbgp-decode/internal/bgp"
	"github.com/route-beacon/pbgp-decode/internal/bgperr"
	"github.com/route-beacon/pbgp-decode/internal/pcapio"
)

// JSON renders a message as a single-line structured record, one
// message per call.
type JSON struct{}

// jsonRecord is the fixed top-level shape of a record: timestamp,
// message_type, message_type_string, length, source_mac,
// destination_mac, source_ip, destination_ip, message_data, plus the
// supplemental parse_error flag. Downstream
// consumers key on these names; do not rename them.
type jsonRecord struct {
	Timestamp         string      `json:"timestamp"`
	MessageType       uint8       `json:"message_type"`
	MessageTypeString string      `json:"message_type_string"`
	Length            uint16      `json:"length"`
	SourceMAC         string      `json:"source_mac"`
	DestinationMAC    string      `json:"destination_mac"`
	SourceIP          string      `json:"source_ip"`
	DestinationIP     string      `json:"destination_ip"`
	MessageData       interface{} `json:"message_data"`
	ParseError        bool        `json:"parse_error"`
}

func (JSON) Format(ctx pcapio.Context, msg *bgp.Message) (string, error) {
	rec := jsonRecord{
		Timestamp:         fmt.Sprintf("%d.%06d", ctx.Timestamp.Unix(), ctx.Timestamp.Nanosecond()/1000),
		MessageType:       msg.Type,
		MessageTypeString: msg.TypeName(),
		Length:            msg.Length,
		SourceMAC:         macString(ctx.SourceMAC),
		DestinationMAC:    macString(ctx.DestinationMAC),
		SourceIP:          ipString(ctx.SourceIP),
		DestinationIP:     ipString(ctx.DestinationIP),
		MessageData:       messageData(msg),
		ParseError:        msg.ParseError,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("%w: marshal json record: %v", bgperr.ErrFormat, err)
	}
	return string(b), nil
}

func macString(mac net.HardwareAddr) string {
	if len(mac) == 0 {
		return ""
	}
	return mac.String()
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}

// messageData builds the per-message-type submap: OPEN carries
// identifier/asn/hold_time/version/parameters, UPDATE carries
// subtype_label/lengths/path_attributes/withdrawn_routes/nlri.
// Keepalive/Notification/RouteRefresh carry their opaque header fields.
// Returns nil (JSON null) when parsing failed before any variant was
// populated.
func messageData(msg *bgp.Message) interface{} {
	switch {
	case msg.Open != nil:
		return openData(msg.Open)
	case msg.Update != nil:
		return updateData(msg.Update)
	case msg.Keepalive != nil:
		return map[string]interface{}{}
	case msg.Notification != nil:
		return map[string]interface{}{
			"error_code":    msg.Notification.ErrorCode,
			"error_subcode": msg.Notification.ErrorSubcode,
		}
	case msg.RouteRefresh != nil:
		return map[string]interface{}{
			"afi":  msg.RouteRefresh.AFI,
			"safi": msg.RouteRefresh.SAFI,
		}
	default:
		return nil
	}
}

func openData(o *bgp.OpenMessage) map[string]interface{} {
	params := make([]map[string]interface{}, 0, len(o.OptionalParameters))
	for _, p := range o.OptionalParameters {
		caps := make([]map[string]interface{}, 0, len(p.Capabilities))
		for _, c := range p.Capabilities {
			caps = append(caps, map[string]interface{}{
				"code": c.Code,
				"name": c.Name(),
			})
		}
		params = append(params, map[string]interface{}{
			"type":         p.Type,
			"capabilities": caps,
		})
	}
	return map[string]interface{}{
		"identifier": o.BGPIdentifier.String(),
		"asn":        o.MyASN,
		"hold_time":  o.HoldTime,
		"version":    o.Version,
		"parameters": params,
	}
}

func updateData(u *bgp.UpdateMessage) map[string]interface{} {
	nlri := make([]string, len(u.NLRI))
	for i, r := range u.NLRI {
		nlri[i] = r.String()
	}
	withdrawn := make([]string, len(u.WithdrawnRoutes))
	for i, r := range u.WithdrawnRoutes {
		withdrawn[i] = r.String()
	}
	attrs := make([]map[string]interface{}, len(u.PathAttributes))
	for i, a := range u.PathAttributes {
		attrs[i] = map[string]interface{}{
			"type":       a.Type,
			"type_name":  a.Name(),
			"value":      formatAttrValue(a),
			"optional":   a.Optional,
			"transitive": a.Transitive,
			"partial":    a.Partial,
		}
	}
	return map[string]interface{}{
		"subtype_label":           u.Subtype.String(),
		"withdrawn_routes_length": u.WithdrawnRoutesLength,
		"path_attributes_length":  u.PathAttributesLength,
		"path_attributes":         attrs,
		"withdrawn_routes":        withdrawn,
		"nlri":                    nlri,
	}
}
