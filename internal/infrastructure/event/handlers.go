package event

import (
	"context"

	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/domain/shared"
	"github.com/setof/qna-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// QnaCreatedRecorder counts new questions. telemetry.ReplyMetrics satisfies it.
type QnaCreatedRecorder interface {
	RecordQnaCreated(ctx context.Context, qnaType string)
}

// QnaActivityHandler writes an audit line for every question and reply event
// and feeds question creations into metrics.
type QnaActivityHandler struct {
	logger   *zap.Logger
	recorder QnaCreatedRecorder
}

// NewQnaActivityHandler creates the handler. recorder may be nil.
func NewQnaActivityHandler(logger *zap.Logger, recorder QnaCreatedRecorder) *QnaActivityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QnaActivityHandler{logger: logger, recorder: recorder}
}

// EventTypes implements shared.EventHandler
func (h *QnaActivityHandler) EventTypes() []string {
	return []string{
		qna.EventTypeQnaCreated,
		qna.EventTypeQnaClosed,
		qna.EventTypeQnaContentUpdated,
		qna.EventTypeQnaImagesAdded,
		qna.EventTypeQnaDeleted,
		qna.EventTypeQnaReplyCreated,
		qna.EventTypeQnaReplyUpdated,
		qna.EventTypeQnaReplyDeleted,
	}
}

// Handle implements shared.EventHandler
func (h *QnaActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
	}

	switch e := event.(type) {
	case *qna.QnaCreatedEvent:
		fields = append(fields,
			zap.String("qna_type", string(e.Type)),
			zap.String("detail_type", string(e.DetailType)),
			zap.Int64("target_id", e.TargetID),
			zap.Bool("secret", e.Secret),
		)
		if h.recorder != nil {
			h.recorder.RecordQnaCreated(ctx, string(e.Type))
		}
	case *qna.QnaClosedEvent:
		fields = append(fields, zap.Int("reply_count", e.ReplyCount))
	case *qna.QnaImagesAddedEvent:
		fields = append(fields, zap.Int("added", e.Added), zap.Int("total", e.TotalCount))
	case *qna.QnaReplyCreatedEvent:
		fields = append(fields,
			zap.String("qna_id", e.QnaID.String()),
			zap.String("path", e.Path),
			zap.Int("depth", e.Depth),
			zap.String("writer_type", string(e.WriterType)),
		)
	case *qna.QnaReplyDeletedEvent:
		fields = append(fields,
			zap.String("qna_id", e.QnaID.String()),
			zap.String("path", e.Path),
		)
	}

	logger.L(logger.WithContext(ctx, h.logger)).Info("qna activity", fields...)
	return nil
}

var _ shared.EventHandler = (*QnaActivityHandler)(nil)
