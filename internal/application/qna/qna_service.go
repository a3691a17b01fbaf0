// Package qna contains the application services of the Q&A context.
package qna

import (
	"context"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/domain/shared"
	"github.com/setof/qna-backend/internal/infrastructure/logger"
	"github.com/setof/qna-backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// QnaService handles question use cases
type QnaService struct {
	qnaRepo        qna.QnaRepository
	eventPublisher shared.EventPublisher
}

// NewQnaService creates a new QnaService
func NewQnaService(qnaRepo qna.QnaRepository) *QnaService {
	return &QnaService{qnaRepo: qnaRepo}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *QnaService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *QnaService) publishDomainEvents(ctx context.Context, q *qna.Qna) {
	if s.eventPublisher == nil {
		return
	}
	events := q.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// the bus logs handler failures itself
	_ = s.eventPublisher.Publish(ctx, events...)
	q.ClearDomainEvents()
}

// CreateProductQna asks a new question about a product group
func (s *QnaService) CreateProductQna(ctx context.Context, viewer Viewer, req CreateProductQnaRequest) (*QnaResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "qna", "create_product")
	defer span.End()

	writer, err := viewer.Writer()
	if err != nil {
		return nil, err
	}
	content, err := qna.NewContent(req.Title, req.Content)
	if err != nil {
		return nil, err
	}

	q, err := qna.NewProductQna(qna.QnaDetailType(req.DetailType), req.TargetID, writer, content, req.Secret)
	if err != nil {
		return nil, err
	}
	if err := s.qnaRepo.Create(ctx, q); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("qna created",
		zap.String("qna_id", q.ID.String()),
		zap.String("type", string(q.Type)),
		zap.Int64("target_id", q.TargetID),
	)
	s.publishDomainEvents(ctx, q)

	return ToQnaResponse(q, viewer), nil
}

// CreateOrderQna asks a new question about an order
func (s *QnaService) CreateOrderQna(ctx context.Context, viewer Viewer, req CreateOrderQnaRequest) (*QnaResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "qna", "create_order")
	defer span.End()

	writer, err := viewer.Writer()
	if err != nil {
		return nil, err
	}
	content, err := qna.NewContent(req.Title, req.Content)
	if err != nil {
		return nil, err
	}

	q, err := qna.NewOrderQna(qna.QnaDetailType(req.DetailType), req.TargetID, writer, content, req.Secret, toDomainImages(req.Images))
	if err != nil {
		return nil, err
	}
	if err := s.qnaRepo.Create(ctx, q); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("qna created",
		zap.String("qna_id", q.ID.String()),
		zap.String("type", string(q.Type)),
		zap.Int64("target_id", q.TargetID),
		zap.Int("images", len(q.Images)),
	)
	s.publishDomainEvents(ctx, q)

	return ToQnaResponse(q, viewer), nil
}

// GetByID returns a question as seen by viewer
func (s *QnaService) GetByID(ctx context.Context, viewer Viewer, id uuid.UUID) (*QnaResponse, error) {
	q, err := s.qnaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToQnaResponse(q, viewer), nil
}

// List returns questions matching filter as seen by viewer
func (s *QnaService) List(ctx context.Context, viewer Viewer, filter QnaListFilter) ([]QnaResponse, int64, error) {
	domainFilter := qna.QnaFilter{
		Type:     qna.QnaType(filter.Type),
		TargetID: filter.TargetID,
		Status:   qna.QnaStatus(filter.Status),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if filter.WriterID != "" {
		writerID, err := uuid.Parse(filter.WriterID)
		if err != nil {
			return nil, 0, shared.ErrInvalidInput.Errorf("invalid writer_id %q", filter.WriterID)
		}
		domainFilter.WriterID = &writerID
	}
	qnas, total, err := s.qnaRepo.FindByTarget(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToQnaResponses(qnas, viewer), total, nil
}

// UpdateContent edits an open question. Only its writer may edit it.
func (s *QnaService) UpdateContent(ctx context.Context, viewer Viewer, id uuid.UUID, req UpdateQnaContentRequest) (*QnaResponse, error) {
	q, err := s.qnaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.IsWrittenBy(viewer.ID) {
		return nil, shared.ErrForbidden.Errorf("only the writer can edit this qna")
	}

	updated, err := q.UpdateContent(qna.Content{Title: req.Title, Body: req.Content})
	if err != nil {
		return nil, err
	}
	if err := s.qnaRepo.Save(ctx, updated); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, updated)

	return ToQnaResponse(updated, viewer), nil
}

// AddImages attaches images to an order question. Only its writer may do so.
func (s *QnaService) AddImages(ctx context.Context, viewer Viewer, id uuid.UUID, req AddQnaImagesRequest) (*QnaResponse, error) {
	q, err := s.qnaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.IsWrittenBy(viewer.ID) {
		return nil, shared.ErrForbidden.Errorf("only the writer can add images to this qna")
	}
	if err := q.AddImages(toDomainImages(req.Images)); err != nil {
		return nil, err
	}
	if err := s.qnaRepo.Save(ctx, q); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, q)

	return ToQnaResponse(q, viewer), nil
}

// Close closes a question. The writer and staff may close it.
func (s *QnaService) Close(ctx context.Context, viewer Viewer, id uuid.UUID) (*QnaResponse, error) {
	q, err := s.qnaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.IsWrittenBy(viewer.ID) && !viewer.IsStaff() {
		return nil, shared.ErrForbidden.Errorf("only the writer or staff can close this qna")
	}
	if err := q.Close(); err != nil {
		return nil, err
	}
	if err := s.qnaRepo.Save(ctx, q); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("qna closed",
		zap.String("qna_id", q.ID.String()),
		zap.Int("reply_count", q.ReplyCount),
	)
	s.publishDomainEvents(ctx, q)

	return ToQnaResponse(q, viewer), nil
}

// Delete soft-deletes a question. The writer and admins may delete it.
func (s *QnaService) Delete(ctx context.Context, viewer Viewer, id uuid.UUID) error {
	q, err := s.qnaRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !q.IsWrittenBy(viewer.ID) && viewer.Type != qna.WriterTypeAdmin {
		return shared.ErrForbidden.Errorf("only the writer or an admin can delete this qna")
	}
	q.Delete()
	if err := s.qnaRepo.Save(ctx, q); err != nil {
		return err
	}
	s.publishDomainEvents(ctx, q)
	return nil
}
