package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/roach88/holdjudge/internal/ir"
)

const instrumentationName = "github.com/roach88/holdjudge/internal/engine"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	judged      metric.Int64Counter
	reverted    metric.Int64Counter
	transitions metric.Int64Counter
}

func newInstruments(m metric.Meter) (*instruments, error) {
	var (
		in  instruments
		err error
	)

	in.judged, err = m.Int64Counter(
		"holdjudge.judgements",
		metric.WithDescription("Judgement results applied"),
		metric.WithUnit("{result}"),
	)
	if err != nil {
		return nil, err
	}

	in.reverted, err = m.Int64Counter(
		"holdjudge.reverts",
		metric.WithDescription("Judgement results reverted by rewind"),
		metric.WithUnit("{result}"),
	)
	if err != nil {
		return nil, err
	}

	in.transitions, err = m.Int64Counter(
		"holdjudge.tracking.transitions",
		metric.WithDescription("Tracking signal changes recorded in history"),
	)
	if err != nil {
		return nil, err
	}

	return &in, nil
}

func (in *instruments) recordResult(r ir.JudgementResult) {
	in.judged.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", r.Kind.String()),
		attribute.String("type", r.Type.String()),
	))
}

func (in *instruments) recordRevert(r ir.JudgementResult) {
	in.reverted.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", r.Kind.String()),
	))
}

func (in *instruments) recordTransition(tracking bool) {
	in.transitions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.Bool("tracking", tracking),
	))
}
