// Command pbgp-decode reads a BGP-carrying packet capture — live from an
// interface, from a pcap file or glob, or from stdin — and writes decoded
// messages through a filter/format/sink pipeline to stdout, a file, or a
// Kafka topic.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/route-beacon/pbgp-decode/internal/bgp"
	"github.com/route-beacon/pbgp-decode/internal/config"
	"github.com/route-beacon/pbgp-decode/internal/filter"
	"github.com/route-beacon/pbgp-decode/internal/format"
	"github.com/route-beacon/pbgp-decode/internal/httpsrv"
	"github.com/route-beacon/pbgp-decode/internal/metrics"
	"github.com/route-beacon/pbgp-decode/internal/pcapio"
	"github.com/route-beacon/pbgp-decode/internal/pipeline"
	"github.com/route-beacon/pbgp-decode/internal/sink"
)

// version is set at build time via -ldflags "-X main.version=...". It
// defaults to "dev" for a plain `go build`.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, config.ErrHelpRequested) || errors.Is(err, config.ErrVersionRequested) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "pbgp-decode:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Parse(args)
	if errors.Is(err, config.ErrVersionRequested) {
		fmt.Println("pbgp-decode", version)
		return err
	}
	if errors.Is(err, config.ErrHelpRequested) {
		return err
	}
	if err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	logger, err := initLogger(cfg.LogLevel, cfg.Quiet, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	metrics.Register()

	if cfg.ASPath4ByteDefault {
		bgp.DefaultASPathWidth = 4
	}

	src, err := openSource(cfg)
	if err != nil {
		return fmt.Errorf("opening capture source: %w", err)
	}
	defer src.Close()

	snk, err := openSink(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening sink: %w", err)
	}
	defer snk.Close()

	formatter, err := format.New(cfg.Formatter, cfg.Fields)
	if err != nil {
		return fmt.Errorf("building formatter: %w", err)
	}

	driver := &pipeline.Driver{
		Source:      src,
		PreFilters:  buildPreFilters(cfg),
		PostFilters: buildPostFilters(cfg),
		Formatter:   formatter,
		Sink:        snk,
		SinkName:    cfg.Pipe,
		Logger:      logger,
	}

	var metricsSrv *httpsrv.Server
	if cfg.MetricsListen != "" {
		metricsSrv = httpsrv.NewServer(cfg.MetricsListen, logger)
		metricsSrv.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := driver.Run(ctx)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsSrv.Shutdown(shutdownCtx)
	}

	if runErr != nil && runErr != context.Canceled {
		return fmt.Errorf("pipeline run: %w", runErr)
	}
	return nil
}

func initLogger(level string, quiet, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch {
	case quiet:
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case verbose:
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return cfg.Build()
}

func openSource(cfg *config.Config) (pcapio.Source, error) {
	switch {
	case cfg.Interface != "":
		return pcapio.NewLiveSource(cfg.Interface)
	case cfg.Stdin:
		return pcapio.NewStdinSource()
	default:
		return pcapio.NewGlobSource(cfg.PcapPath)
	}
}

func openSink(cfg *config.Config, logger *zap.Logger) (sink.Sink, error) {
	switch cfg.Pipe {
	case sink.NameFile:
		return sink.NewFileSink(cfg.Output)
	case sink.NameKafka:
		return sink.NewKafkaSink(cfg.KafkaServers, cfg.KafkaTopic, cfg.KafkaClientID, logger)
	default:
		return sink.NewStdoutSink(os.Stdout), nil
	}
}

func buildPreFilters(cfg *config.Config) []filter.PreFilter {
	var out []filter.PreFilter
	if len(cfg.SourceIP) > 0 {
		out = append(out, filter.SourceIPFilter{Values: cfg.SourceIP})
	}
	if len(cfg.DestinationIP) > 0 {
		out = append(out, filter.DestinationIPFilter{Values: cfg.DestinationIP})
	}
	if len(cfg.SourceMAC) > 0 {
		out = append(out, filter.SourceMACFilter{Values: cfg.SourceMAC})
	}
	if len(cfg.DestinationMAC) > 0 {
		out = append(out, filter.DestinationMACFilter{Values: cfg.DestinationMAC})
	}
	if len(cfg.Timestamp) > 0 {
		out = append(out, filter.TimestampFilter{Values: cfg.Timestamp})
	}
	return out
}

func buildPostFilters(cfg *config.Config) []filter.PostFilter {
	var out []filter.PostFilter
	if len(cfg.MessageType) > 0 {
		out = append(out, filter.MessageTypeFilter{Values: cfg.MessageType})
	}
	if len(cfg.MessageSubType) > 0 {
		out = append(out, filter.MessageSubTypeFilter{Values: cfg.MessageSubType})
	}
	if len(cfg.MessageSize) > 0 {
		out = append(out, filter.MessageSizeFilter{Values: cfg.MessageSize})
	}
	if len(cfg.NextHop) > 0 {
		out = append(out, filter.NextHopFilter{Values: cfg.NextHop})
	}
	if len(cfg.NLRI) > 0 {
		out = append(out, filter.NlriFilter{Values: cfg.NLRI})
	}
	if len(cfg.Withdrawn) > 0 {
		out = append(out, filter.WithdrawnFilter{Values: cfg.Withdrawn})
	}
	if len(cfg.ASN) > 0 {
		out = append(out, filter.AsnFilter{Values: cfg.ASN})
	}
	if len(cfg.LastASN) > 0 {
		out = append(out, filter.LastAsnFilter{Values: cfg.LastASN})
	}
	if len(cfg.CommunityASN) > 0 {
		out = append(out, filter.CommunityAsnFilter{Values: cfg.CommunityASN})
	}
	if len(cfg.CommunityValue) > 0 {
		out = append(out, filter.CommunityValueFilter{Values: cfg.CommunityValue})
	}
	if len(cfg.LargeCommunity) > 0 {
		out = append(out, filter.LargeCommunityFilter{Values: cfg.LargeCommunity})
	}
	if len(cfg.Blackhole) > 0 {
		out = append(out, filter.BlackholeFilter{NextHopValues: cfg.Blackhole})
	}
	if cfg.ErrorOnly {
		out = append(out, filter.ErrorFilter{})
	}
	return out
}
