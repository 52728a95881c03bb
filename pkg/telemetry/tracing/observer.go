package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/processor"
)

// RuleObserver creates one span per executed rule under the span of the
// context it was created with. It implements processor.Observer.
type RuleObserver struct {
	ctx    context.Context
	tracer *Tracer
	now    func() time.Time
}

// RuleObserver returns an observer that parents rule spans to the span in ctx.
func (t *Tracer) RuleObserver(ctx context.Context) *RuleObserver {
	return &RuleObserver{ctx: ctx, tracer: t, now: time.Now}
}

// ObserveRule records event as a span ending now and lasting event.Duration.
func (o *RuleObserver) ObserveRule(event processor.RuleEvent) {
	end := o.now()
	_, span := o.tracer.Start(o.ctx, SpanRule,
		trace.WithTimestamp(end.Add(-event.Duration)),
		trace.WithAttributes(
			AttrRule.String(event.Rule),
			AttrRuleKind.String(event.Kind.String()),
			AttrWave.Int(event.Wave),
		),
	)
	if event.Warnings.BelowMin > 0 || event.Warnings.AboveMax > 0 {
		span.SetAttributes(
			AttrBelowMin.Int(event.Warnings.BelowMin),
			AttrAboveMax.Int(event.Warnings.AboveMax),
		)
	}
	SetError(span, event.Err)
	SetStatus(span, event.Err)
	span.End(trace.WithTimestamp(end))
}
