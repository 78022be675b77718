// Package pipeline drives a single capture source through pre-filter,
// packet split, decode, post-filter, format, and sink. The whole run is
// one goroutine; records reach the sink in strict capture order.
package pipeline

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/route-beacon/pbgp-decode/internal/bgp"
	"github.com/route-beacon/pbgp-decode/internal/bgperr"
	"github.com/route-beacon/pbgp-decode/internal/filter"
	"github.com/route-beacon/pbgp-decode/internal/format"
	"github.com/route-beacon/pbgp-decode/internal/metrics"
	"github.com/route-beacon/pbgp-decode/internal/pcapio"
	"github.com/route-beacon/pbgp-decode/internal/sink"
)

// Driver ties together one capture source and the filter/format/sink
// stages that follow it.
type Driver struct {
	Source      pcapio.Source
	PreFilters  []filter.PreFilter
	PostFilters []filter.PostFilter
	Formatter   format.Formatter
	Sink        sink.Sink
	SinkName    string
	Logger      *zap.Logger
}

// Run reads frames from Source until it is exhausted or ctx is canceled.
// A frame that fails pre-filtering or decoding is dropped and counted;
// neither aborts the run.
func (d *Driver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := d.Source.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			d.Logger.Warn("capture read failed", zap.Error(err))
			metrics.PacketsTotal.WithLabelValues("capture_error").Inc()
			continue
		}

		if !d.matchesPreFilters(frame.Context) {
			metrics.PacketsTotal.WithLabelValues("prefiltered").Inc()
			metrics.FilterDropsTotal.WithLabelValues("pre").Inc()
			continue
		}
		metrics.PacketsTotal.WithLabelValues("accepted").Inc()

		msgs, errs := bgp.DecodePacket(frame.Payload)
		for _, e := range errs {
			if errors.Is(e, bgperr.ErrNoMessages) {
				continue
			}
			d.Logger.Debug("message decode error", zap.Error(e))
			metrics.ParseErrorsTotal.WithLabelValues("decode").Inc()
		}

		for _, msg := range msgs {
			d.processMessage(frame.Context, msg)
		}
	}
}

func (d *Driver) matchesPreFilters(ctx pcapio.Context) bool {
	for _, f := range d.PreFilters {
		if !f.Match(ctx) {
			return false
		}
	}
	return true
}

func (d *Driver) matchesPostFilters(msg *bgp.Message) bool {
	for _, f := range d.PostFilters {
		if !f.Match(msg) {
			return false
		}
	}
	return true
}

func (d *Driver) processMessage(ctx pcapio.Context, msg *bgp.Message) {
	metrics.MessagesDecodedTotal.WithLabelValues(msg.TypeName()).Inc()
	metrics.LastMessageTimestamp.Set(float64(ctx.Timestamp.Unix()))

	if !d.matchesPostFilters(msg) {
		metrics.FilterDropsTotal.WithLabelValues("post").Inc()
		return
	}

	record, err := d.Formatter.Format(ctx, msg)
	if err != nil {
		d.Logger.Warn("format error", zap.Error(err))
		metrics.ParseErrorsTotal.WithLabelValues("format").Inc()
		return
	}

	start := time.Now()
	err = d.Sink.Write(record)
	metrics.SinkWriteDuration.WithLabelValues(d.SinkName).Observe(time.Since(start).Seconds())
	if err != nil {
		d.Logger.Error("sink write failed", zap.Error(err))
		metrics.SinkWriteFailuresTotal.WithLabelValues(d.SinkName).Inc()
	}
}
