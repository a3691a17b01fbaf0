// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics constructor receives no meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Reply allocation outcomes used as the reply_result attribute
const (
	ReplyResultAllocated = "allocated"
	ReplyResultConflict  = "conflict"
	ReplyResultExhausted = "exhausted"
)

// ReplyMetrics records reply path allocation outcomes.
// It satisfies the allocator's metrics port.
type ReplyMetrics struct {
	allocationsTotal *Counter
	attempts         *Histogram
	qnaCreatedTotal  *Counter
}

// NewReplyMetrics registers the reply instruments on meter
func NewReplyMetrics(meter metric.Meter) (*ReplyMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	allocations, err := NewCounter(
		meter,
		"qna_reply_allocations_total",
		"Reply path allocation outcomes by depth and result",
		"{allocations}",
	)
	if err != nil {
		return nil, err
	}

	attempts, err := NewHistogram(meter, HistogramOpts{
		Name:        "qna_reply_allocation_attempts",
		Description: "Transaction attempts needed to allocate a reply path",
		Unit:        "{attempts}",
		Boundaries:  AttemptBuckets,
	})
	if err != nil {
		return nil, err
	}

	created, err := NewCounter(
		meter,
		"qna_created_total",
		"Questions created by type",
		"{questions}",
	)
	if err != nil {
		return nil, err
	}

	return &ReplyMetrics{
		allocationsTotal: allocations,
		attempts:         attempts,
		qnaCreatedTotal:  created,
	}, nil
}

// RecordAllocated counts a committed reply and how many attempts it took
func (m *ReplyMetrics) RecordAllocated(ctx context.Context, depth, attempts int) {
	m.allocationsTotal.Inc(ctx,
		AttrReplyDepth.Int(depth),
		AttrReplyResult.String(ReplyResultAllocated),
	)
	m.attempts.Record(ctx, float64(attempts), AttrReplyDepth.Int(depth))
}

// RecordConflict counts a lost race on a path
func (m *ReplyMetrics) RecordConflict(ctx context.Context, depth int) {
	m.allocationsTotal.Inc(ctx,
		AttrReplyDepth.Int(depth),
		AttrReplyResult.String(ReplyResultConflict),
	)
}

// RecordExhausted counts an allocation that ran out of attempts
func (m *ReplyMetrics) RecordExhausted(ctx context.Context, depth int) {
	m.allocationsTotal.Inc(ctx,
		AttrReplyDepth.Int(depth),
		AttrReplyResult.String(ReplyResultExhausted),
	)
}

// RecordQnaCreated counts a new question
func (m *ReplyMetrics) RecordQnaCreated(ctx context.Context, qnaType string) {
	m.qnaCreatedTotal.Inc(ctx, AttrQnaType.String(qnaType))
}
