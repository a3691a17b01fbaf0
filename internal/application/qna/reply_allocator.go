package qna

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/domain/shared"
	"github.com/setof/qna-backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultMaxAllocationAttempts bounds the optimistic retry loop
const DefaultMaxAllocationAttempts = 3

// AllocationMetrics receives allocation outcomes
type AllocationMetrics interface {
	RecordAllocated(ctx context.Context, depth, attempts int)
	RecordConflict(ctx context.Context, depth int)
	RecordExhausted(ctx context.Context, depth int)
}

type noopAllocationMetrics struct{}

func (noopAllocationMetrics) RecordAllocated(context.Context, int, int) {}
func (noopAllocationMetrics) RecordConflict(context.Context, int)       {}
func (noopAllocationMetrics) RecordExhausted(context.Context, int)      {}

// AllocationRequest describes one reply to place in the tree
type AllocationRequest struct {
	QnaID   uuid.UUID
	Parent  *qna.QnaReply // nil for a root reply
	Writer  qna.Writer
	Content string
}

func (r AllocationRequest) parentPath() qna.Path {
	if r.Parent == nil {
		return ""
	}
	return r.Parent.Path
}

// AllocationResult is what a successful allocation committed
type AllocationResult struct {
	Reply    *qna.QnaReply
	Qna      *qna.Qna
	Attempts int
}

// ReplyAllocator assigns paths to new replies and persists them.
//
// Allocation for a scope runs under the scope lock. Each attempt is one
// transaction that locks the Qna row, reads the scope maximum, inserts the
// reply and bumps the reply counter. A path or version conflict rolls the
// attempt back and the next attempt re-reads the maximum.
type ReplyAllocator struct {
	txScope     TransactionScope
	locker      ScopeLocker
	maxAttempts int
	metrics     AllocationMetrics
	logger      *zap.Logger
}

// ReplyAllocatorOption configures a ReplyAllocator
type ReplyAllocatorOption func(*ReplyAllocator)

// WithMaxAttempts sets the retry bound
func WithMaxAttempts(n int) ReplyAllocatorOption {
	return func(a *ReplyAllocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithAllocationMetrics sets the metrics sink
func WithAllocationMetrics(m AllocationMetrics) ReplyAllocatorOption {
	return func(a *ReplyAllocator) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithAllocatorLogger sets the logger
func WithAllocatorLogger(l *zap.Logger) ReplyAllocatorOption {
	return func(a *ReplyAllocator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewReplyAllocator creates a new ReplyAllocator
func NewReplyAllocator(txScope TransactionScope, locker ScopeLocker, opts ...ReplyAllocatorOption) *ReplyAllocator {
	a := &ReplyAllocator{
		txScope:     txScope,
		locker:      locker,
		maxAttempts: DefaultMaxAllocationAttempts,
		metrics:     noopAllocationMetrics{},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate places a new reply and commits it together with the Qna counter.
// Business-rule, format and overflow errors abort at once; path and version
// conflicts are retried up to the bound and then surface as
// qna.ErrAllocationExhausted.
func (a *ReplyAllocator) Allocate(ctx context.Context, req AllocationRequest) (*AllocationResult, error) {
	parentPath := req.parentPath()
	depth := parentPath.Depth() + 1
	key := ReplyScopeKey(req.QnaID, parentPath)

	ctx, span := telemetry.StartServiceSpan(ctx, "reply_allocator", "allocate",
		telemetry.WithAttribute(telemetry.SpanAttrQnaID, req.QnaID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrReplyScope, key),
		telemetry.WithAttribute(telemetry.SpanAttrReplyDepth, depth),
	)
	defer span.End()

	lock, err := a.locker.Acquire(ctx, key)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("failed to release reply scope lock",
				zap.String("scope", key),
				zap.Error(err),
			)
		}
	}()

	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := a.attempt(ctx, req)
		if err == nil {
			result.Attempts = attempt
			a.metrics.RecordAllocated(ctx, depth, attempt)
			telemetry.SetAttributes(span,
				telemetry.SpanAttrReplyPath, result.Reply.Path.String(),
				telemetry.SpanAttrReplyAttempts, attempt,
			)
			return result, nil
		}
		if !isAllocationConflict(err) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		telemetry.AddEvent(span, "path_conflict", telemetry.SpanAttrReplyAttempts, attempt)

		lastErr = err
		a.metrics.RecordConflict(ctx, depth)
		a.logger.Warn("reply path allocation conflict, retrying",
			zap.String("qna_id", req.QnaID.String()),
			zap.String("scope", key),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", a.maxAttempts),
			zap.Error(err),
		)
	}

	a.metrics.RecordExhausted(ctx, depth)
	a.logger.Error("reply path allocation exhausted",
		zap.String("qna_id", req.QnaID.String()),
		zap.String("scope", key),
		zap.Int("attempts", a.maxAttempts),
		zap.Error(lastErr),
	)
	err = qna.ErrAllocationExhausted.Wrap(lastErr)
	telemetry.RecordError(span, err)
	return nil, err
}

func (a *ReplyAllocator) attempt(ctx context.Context, req AllocationRequest) (*AllocationResult, error) {
	var result *AllocationResult
	err := a.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		q, err := repos.QnaRepo().FindByIDForUpdate(ctx, req.QnaID)
		if err != nil {
			return err
		}
		// the Qna may have been closed since the caller checked
		if err := q.EnsureRepliable(); err != nil {
			return err
		}

		reply, err := a.nextReply(ctx, repos.ReplyRepo(), req)
		if err != nil {
			return err
		}
		if err := repos.ReplyRepo().Create(ctx, reply); err != nil {
			return err
		}

		q.IncrementReplyCount()
		if err := repos.QnaRepo().Save(ctx, q); err != nil {
			return err
		}

		result = &AllocationResult{Reply: reply, Qna: q}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (a *ReplyAllocator) nextReply(ctx context.Context, replies qna.QnaReplyRepository, req AllocationRequest) (*qna.QnaReply, error) {
	if req.Parent == nil {
		maxPath, err := replies.FindMaxRootPath(ctx, req.QnaID)
		if err != nil {
			return nil, err
		}
		path, err := qna.NextRootPath(maxPath)
		if err != nil {
			return nil, err
		}
		return qna.NewRootReply(req.QnaID, req.Writer, req.Content, path)
	}

	maxPath, err := replies.FindMaxChildPath(ctx, req.QnaID, req.Parent.Path)
	if err != nil {
		return nil, err
	}
	path, err := qna.NextChildPath(req.Parent.Path, maxPath)
	if err != nil {
		return nil, err
	}
	return qna.NewChildReply(req.QnaID, req.Parent.ID, req.Parent.Path, req.Writer, req.Content, path)
}

func isAllocationConflict(err error) bool {
	return errors.Is(err, qna.ErrPathConflict) || errors.Is(err, shared.ErrConcurrencyConflict)
}
