// Package format renders decoded BGP messages for a sink: an indented
// human-readable block, a single tab-separated line, or a structured
// JSON record. Each formatter takes a message plus its capture context
// and produces one self-contained string.
package format

import (
	"fmt"

	"github.com/route-beacon/pbgp-decode/internal/bgp"
	"github.com/route-beacon/pbgp-decode/internal/bgperr"
	"github.com/route-beacon/pbgp-decode/internal/pcapio"
)

// Formatter renders one message into its output representation.
type Formatter interface {
	Format(ctx pcapio.Context, msg *bgp.Message) (string, error)
}

// Name constants match the --formatter flag's accepted values.
const (
	NameHumanReadable = "HUMAN_READABLE"
	NameLine          = "LINE"
	NameJSON          = "JSON"
)

// New builds the formatter named by name, using fields for the LINE
// formatter's column selection (ignored by the others).
func New(name string, fields []string) (Formatter, error) {
	switch name {
	case NameHumanReadable:
		return HumanReadable{}, nil
	case NameLine:
		return NewLineBased(fields)
	case NameJSON:
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown formatter %q", bgperr.ErrConfig, name)
	}
}
