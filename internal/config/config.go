// Package config parses the command line into a Config, using spf13/pflag
// so every filter flag is repeatable. Each occurrence of a filter flag
// adds exactly one value; commas inside a value are not split.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
)

// ErrHelpRequested and ErrVersionRequested are returned by Parse when the
// user passed --help or --version; both exit 0 rather than being treated
// as a configuration error.
var (
	ErrHelpRequested    = errors.New("config: help requested")
	ErrVersionRequested = errors.New("config: version requested")
)

// Config holds every flag the pipeline accepts.
type Config struct {
	// Capture source (mutually exclusive).
	Interface string
	PcapPath  string
	Stdin     bool

	// Output.
	Formatter string
	Fields    []string
	Pipe      string
	Output    string

	// Kafka sink.
	KafkaServers  []string
	KafkaTopic    string
	KafkaClientID string

	// Verbosity.
	Quiet   bool
	Verbose bool

	// Ambient.
	MetricsListen      string
	LogLevel           string
	ASPath4ByteDefault bool

	// Filters. Every filter flag carries the --filter- prefix.
	SourceIP       []string
	DestinationIP  []string
	SourceMAC      []string
	DestinationMAC []string
	Timestamp      []string
	MessageType    []string
	MessageSubType []string
	MessageSize    []string
	NextHop        []string
	NLRI           []string
	Withdrawn      []string
	ASN            []string
	LastASN        []string
	CommunityASN   []string
	CommunityValue []string
	LargeCommunity []string
	Blackhole      []string
	ErrorOnly      bool
}

// Parse builds a Config from argv (excluding the program name). It
// returns ErrHelpRequested or ErrVersionRequested, rather than a
// validation error, when the corresponding flag is present; callers
// should treat those as a clean exit(0).
func Parse(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("pbgp-decode", pflag.ContinueOnError)

	cfg := &Config{}
	var showHelp, showVersion bool

	fs.StringVar(&cfg.Interface, "interface", "", "capture live from this network interface")
	fs.StringVar(&cfg.PcapPath, "pcap", "", "read from this pcap file or glob pattern")
	fs.BoolVarP(&cfg.Stdin, "stdin", "", false, "read a pcap stream from stdin")

	fs.StringVarP(&cfg.Formatter, "formatter", "", "HUMAN_READABLE", "output formatter: HUMAN_READABLE, LINE, or JSON")
	fs.StringSliceVar(&cfg.Fields, "fields", nil, "comma-separated field list for the LINE formatter")
	fs.StringVarP(&cfg.Pipe, "pipe", "", "STDOUT", "sink: FILE, STDOUT, or KAFKA")
	fs.StringVarP(&cfg.Output, "output", "o", "", "output file path, required when --pipe=FILE")

	fs.StringSliceVar(&cfg.KafkaServers, "kafka-server", nil, "Kafka bootstrap server, repeatable")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", "", "Kafka topic, required when --pipe=KAFKA")
	fs.StringVar(&cfg.KafkaClientID, "kafka-client-id", "pbgp-decode", "Kafka client id")

	fs.BoolVarP(&cfg.Quiet, "quiet", "q", false, "suppress non-error log output")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable debug log output")

	fs.StringVar(&cfg.MetricsListen, "metrics-listen", "", "address to serve /metrics and /healthz on, disabled when empty")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.ASPath4ByteDefault, "as-path-4byte-default", false, "prefer 4-octet ASNs when an AS_PATH parses under both widths")

	fs.StringArrayVar(&cfg.SourceIP, "filter-source-ip", nil, "pre-filter: match source IP, repeatable")
	fs.StringArrayVar(&cfg.DestinationIP, "filter-destination-ip", nil, "pre-filter: match destination IP, repeatable")
	fs.StringArrayVar(&cfg.SourceMAC, "filter-source-mac", nil, "pre-filter: match source MAC, repeatable")
	fs.StringArrayVar(&cfg.DestinationMAC, "filter-destination-mac", nil, "pre-filter: match destination MAC, repeatable")
	fs.StringArrayVar(&cfg.Timestamp, "filter-timestamp", nil, "pre-filter: match capture second, repeatable")
	fs.StringArrayVar(&cfg.MessageType, "filter-message-type", nil, "post-filter: match message type, repeatable")
	fs.StringArrayVar(&cfg.MessageSubType, "filter-message-subtype", nil, "post-filter: match update subtype, repeatable")
	fs.StringArrayVar(&cfg.MessageSize, "filter-message-size", nil, "post-filter: match declared message length, repeatable")
	fs.StringArrayVar(&cfg.NextHop, "filter-next-hop", nil, "post-filter: match NEXT_HOP, repeatable")
	fs.StringArrayVar(&cfg.NLRI, "filter-nlri", nil, "post-filter: match announced prefix, repeatable")
	fs.StringArrayVar(&cfg.Withdrawn, "filter-withdrawn", nil, "post-filter: match withdrawn prefix, repeatable")
	fs.StringArrayVar(&cfg.ASN, "filter-as", nil, "post-filter: match any AS_PATH ASN, repeatable")
	fs.StringArrayVar(&cfg.LastASN, "filter-last-as", nil, "post-filter: match origin ASN, repeatable")
	fs.StringArrayVar(&cfg.CommunityASN, "filter-community-as", nil, "post-filter: match community ASN half, repeatable")
	fs.StringArrayVar(&cfg.CommunityValue, "filter-community-value", nil, "post-filter: match community value half, repeatable")
	fs.StringArrayVar(&cfg.LargeCommunity, "filter-large-community", nil, "post-filter: match large community, repeatable")
	fs.StringArrayVar(&cfg.Blackhole, "filter-blackhole", nil, "post-filter: match RFC 7999 blackhole routes, repeatable")
	fs.BoolVar(&cfg.ErrorOnly, "filter-error", false, "post-filter: drop messages with a parse error")

	fs.BoolVarP(&showHelp, "help", "h", false, "show usage and exit")
	fs.BoolVar(&showVersion, "version", false, "print name and version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	if showHelp {
		fmt.Println("pbgp-decode — decode BGP messages from a packet capture")
		fmt.Println()
		fs.PrintDefaults()
		return nil, ErrHelpRequested
	}
	if showVersion {
		return nil, ErrVersionRequested
	}

	// A bare "-" argument is an alias for --stdin.
	for _, a := range fs.Args() {
		if a == "-" {
			cfg.Stdin = true
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	sources := 0
	if c.Interface != "" {
		sources++
	}
	if c.PcapPath != "" {
		sources++
	}
	if c.Stdin {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("config: exactly one of --interface, --pcap, or --stdin is required")
	}

	if c.Quiet && c.Verbose {
		return fmt.Errorf("config: --quiet and --verbose are mutually exclusive")
	}

	switch c.Pipe {
	case "FILE":
		if c.Output == "" {
			return fmt.Errorf("config: --output is required when --pipe=FILE")
		}
	case "KAFKA":
		if len(c.KafkaServers) == 0 || c.KafkaTopic == "" {
			return fmt.Errorf("config: --kafka-server and --kafka-topic are required when --pipe=KAFKA")
		}
	case "STDOUT":
	default:
		return fmt.Errorf("config: unknown --pipe value %q", c.Pipe)
	}

	switch c.Formatter {
	case "HUMAN_READABLE", "LINE", "JSON":
	default:
		return fmt.Errorf("config: unknown --formatter value %q", c.Formatter)
	}

	return nil
}
