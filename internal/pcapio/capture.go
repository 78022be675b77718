package pcapio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/google/gopacket/pcapgo"

	"github.com/route-beacon/pbgp-decode/internal/bgperr"
)

// Frame is the payload of one captured TCP segment plus the metadata
// describing where it came from. Segments are not reassembled.
type Frame struct {
	Context Context
	Payload []byte
}

// Source yields frames one at a time. Implementations wrap a single pcap
// file, a glob of files, stdin, or a live interface.
type Source interface {
	ReadFrame() (*Frame, error) // returns io.EOF when exhausted
	Close() error
}

// decoder wraps a gopacket.DecodingLayerParser configured for the layer
// stack a BGP capture can show up in: Ethernet or Linux cooked capture,
// optionally 802.1Q/802.1ad tagged, IPv4 or IPv6, then TCP. This mirrors
// the classify-by-trying-each-link-type approach other capture tooling
// in the ecosystem uses instead of hand-rolling an Ethernet/SLL header
// union.
type decoder struct {
	parser  *gopacket.DecodingLayerParser
	eth     layers.Ethernet
	sll     layers.LinuxSLL
	dot1q   layers.Dot1Q
	ip4     layers.IPv4
	ip6     layers.IPv6
	tcp     layers.TCP
	decoded []gopacket.LayerType
}

func newDecoder(linkType layers.LinkType) *decoder {
	d := &decoder{}
	var first gopacket.DecodingLayer
	switch linkType {
	case layers.LinkTypeLinuxSLL:
		first = &d.sll
	default:
		first = &d.eth
	}
	d.parser = gopacket.NewDecodingLayerParser(first.LayerType(), first, &d.dot1q, &d.ip4, &d.ip6, &d.tcp)
	d.parser.IgnoreUnsupported = true
	return d
}

func (d *decoder) classify(data []byte, ts time.Time) (*Frame, error) {
	d.decoded = d.decoded[:0]
	if err := d.parser.DecodeLayers(data, &d.decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", errCapture, err)
	}

	var haveTCP bool
	ctx := Context{Timestamp: ts}
	for _, lt := range d.decoded {
		switch lt {
		case layers.LayerTypeEthernet:
			ctx.SourceMAC = d.eth.SrcMAC
			ctx.DestinationMAC = d.eth.DstMAC
		case layers.LayerTypeLinuxSLL:
			// Cooked capture carries only the source address.
			ctx.SourceMAC = d.sll.Addr
		case layers.LayerTypeDot1Q:
			ctx.VLANTags = append(ctx.VLANTags, d.dot1q.VLANIdentifier)
		case layers.LayerTypeIPv4:
			ctx.SourceIP = d.ip4.SrcIP
			ctx.DestinationIP = d.ip4.DstIP
		case layers.LayerTypeIPv6:
			ctx.SourceIP = d.ip6.SrcIP
			ctx.DestinationIP = d.ip6.DstIP
		case layers.LayerTypeTCP:
			ctx.SourcePort = uint16(d.tcp.SrcPort)
			ctx.DestinationPort = uint16(d.tcp.DstPort)
			haveTCP = true
		}
	}

	if !haveTCP {
		return nil, errNotTCP
	}
	if len(d.tcp.Payload) == 0 {
		return nil, errEmptyPayload
	}

	return &Frame{Context: ctx, Payload: append([]byte(nil), d.tcp.Payload...)}, nil
}

var (
	errCapture      = bgperr.ErrCapture
	errNotTCP       = errors.New("pcapio: not a tcp segment")
	errEmptyPayload = errors.New("pcapio: empty tcp payload")
)

// fileSource reads frames from a single pcap file on disk.
type fileSource struct {
	f   *os.File
	r   *pcapgo.Reader
	dec *decoder
}

// NewFileSource opens a single pcap file for reading.
func NewFileSource(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errCapture, err)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", errCapture, err)
	}
	return &fileSource{f: f, r: r, dec: newDecoder(r.LinkType())}, nil
}

func (s *fileSource) ReadFrame() (*Frame, error) {
	for {
		data, ci, err := s.r.ReadPacketData()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: %v", errCapture, err)
		}
		frame, err := s.dec.classify(data, ci.Timestamp)
		if err != nil {
			continue // not a BGP-carrying TCP segment; skip, don't abort the capture
		}
		return frame, nil
	}
}

func (s *fileSource) Close() error { return s.f.Close() }

// globSource concatenates the frames of every file a glob pattern
// matches, presented to callers as a single Source.
type globSource struct {
	paths []string
	idx   int
	cur   Source
}

// NewGlobSource opens the files matching pattern in sorted order.
func NewGlobSource(pattern string) (Source, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errCapture, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files matched %q", errCapture, pattern)
	}
	return &globSource{paths: paths}, nil
}

func (s *globSource) ReadFrame() (*Frame, error) {
	for {
		if s.cur == nil {
			if s.idx >= len(s.paths) {
				return nil, io.EOF
			}
			src, err := NewFileSource(s.paths[s.idx])
			s.idx++
			if err != nil {
				return nil, err
			}
			s.cur = src
		}
		frame, err := s.cur.ReadFrame()
		if err == io.EOF {
			s.cur.Close()
			s.cur = nil
			continue
		}
		return frame, err
	}
}

func (s *globSource) Close() error {
	if s.cur != nil {
		return s.cur.Close()
	}
	return nil
}

// stdinSource reads pcap-format frames from stdin.
type stdinSource struct {
	r   *pcapgo.Reader
	dec *decoder
}

// NewStdinSource reads a pcap stream from os.Stdin.
func NewStdinSource() (Source, error) {
	r, err := pcapgo.NewReader(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errCapture, err)
	}
	return &stdinSource{r: r, dec: newDecoder(r.LinkType())}, nil
}

func (s *stdinSource) ReadFrame() (*Frame, error) {
	for {
		data, ci, err := s.r.ReadPacketData()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: %v", errCapture, err)
		}
		frame, err := s.dec.classify(data, ci.Timestamp)
		if err != nil {
			continue
		}
		return frame, nil
	}
}

func (s *stdinSource) Close() error { return nil }

// liveSource captures from a live network interface via libpcap.
type liveSource struct {
	handle *pcap.Handle
	dec    *decoder
}

// NewLiveSource opens iface for live capture with a BPF-friendly snap
// length and promiscuous mode enabled, matching the defaults a packet
// analyzer tool is expected to use.
func NewLiveSource(iface string) (Source, error) {
	handle, err := pcap.OpenLive(iface, 65535, true, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errCapture, err)
	}
	return &liveSource{handle: handle, dec: newDecoder(handle.LinkType())}, nil
}

func (s *liveSource) ReadFrame() (*Frame, error) {
	for {
		data, ci, err := s.handle.ZeroCopyReadPacketData()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errCapture, err)
		}
		frame, err := s.dec.classify(data, ci.Timestamp)
		if err != nil {
			continue
		}
		return frame, nil
	}
}

func (s *liveSource) Close() error {
	s.handle.Close()
	return nil
}
