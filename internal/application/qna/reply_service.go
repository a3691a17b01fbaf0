package qna

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/domain/shared"
	"github.com/setof/qna-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ReplyService handles reply use cases
type ReplyService struct {
	qnaRepo        qna.QnaRepository
	replyRepo      qna.QnaReplyRepository
	allocator      *ReplyAllocator
	eventPublisher shared.EventPublisher
}

// NewReplyService creates a new ReplyService
func NewReplyService(
	qnaRepo qna.QnaRepository,
	replyRepo qna.QnaReplyRepository,
	allocator *ReplyAllocator,
) *ReplyService {
	return &ReplyService{
		qnaRepo:   qnaRepo,
		replyRepo: replyRepo,
		allocator: allocator,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReplyService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ReplyService) publishDomainEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = s.eventPublisher.Publish(ctx, events...)
		agg.ClearDomainEvents()
	}
}

// CreateReply adds a reply to a question, as a root reply or under
// req.ParentReplyID. Every business rule is checked before a path is
// allocated, so a rejected request never consumes one.
func (s *ReplyService) CreateReply(ctx context.Context, viewer Viewer, qnaID uuid.UUID, req CreateReplyRequest) (*ReplyResponse, error) {
	writer, err := viewer.Writer()
	if err != nil {
		return nil, err
	}

	q, err := s.qnaRepo.FindByID(ctx, qnaID)
	if err != nil {
		return nil, err
	}
	if err := q.EnsureRepliable(); err != nil {
		return nil, err
	}

	var parent *qna.QnaReply
	if req.ParentReplyID != nil {
		parent, err = s.loadParent(ctx, qnaID, *req.ParentReplyID)
		if err != nil {
			return nil, err
		}
	}

	result, err := s.allocator.Allocate(ctx, AllocationRequest{
		QnaID:   qnaID,
		Parent:  parent,
		Writer:  writer,
		Content: req.Content,
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("qna reply created",
		zap.String("qna_id", qnaID.String()),
		zap.String("reply_id", result.Reply.ID.String()),
		zap.String("path", result.Reply.Path.String()),
		zap.Int("attempts", result.Attempts),
	)
	s.publishDomainEvents(ctx, result.Reply, result.Qna)

	return ToReplyResponse(result.Reply, viewer), nil
}

func (s *ReplyService) loadParent(ctx context.Context, qnaID, parentID uuid.UUID) (*qna.QnaReply, error) {
	parent, err := s.replyRepo.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.Errorf("parent reply %s not found", parentID)
		}
		return nil, err
	}
	if parent.QnaID != qnaID {
		return nil, qna.ErrReplyParentMismatch.Errorf("reply %s does not belong to qna %s", parentID, qnaID)
	}
	if parent.IsDeleted() {
		return nil, qna.ErrReplyDeleted.Errorf("parent reply %s has been deleted", parentID)
	}
	if !parent.CanHaveChildren() {
		return nil, qna.ErrReplyDepthExceeded.Errorf("reply %s is at depth %d and cannot have children (max depth %d)",
			parentID, parent.Depth(), qna.MaxReplyDepth)
	}
	return parent, nil
}

// ListReplies returns the active replies of a question in thread order.
// Replies in a secret thread are masked for viewers who cannot read the question.
func (s *ReplyService) ListReplies(ctx context.Context, viewer Viewer, qnaID uuid.UUID) ([]ReplyResponse, error) {
	q, err := s.qnaRepo.FindByID(ctx, qnaID)
	if err != nil {
		return nil, err
	}

	replies, err := s.replyRepo.FindByQnaID(ctx, qnaID)
	if err != nil {
		return nil, err
	}

	thread := qna.BuildThread(replies)
	out := make([]ReplyResponse, len(thread))
	for i, entry := range thread {
		resp := ToReplyResponse(entry.Reply, viewer)
		MaskReply(resp, entry.Reply, q, viewer)
		out[i] = *resp
	}
	return out, nil
}

// UpdateReply edits a reply while its question is open. Only its writer may edit it.
func (s *ReplyService) UpdateReply(ctx context.Context, viewer Viewer, qnaID, replyID uuid.UUID, req UpdateReplyRequest) (*ReplyResponse, error) {
	q, err := s.qnaRepo.FindByID(ctx, qnaID)
	if err != nil {
		return nil, err
	}
	if !q.IsOpen() {
		return nil, qna.ErrQnaAlreadyClosed.Errorf("qna %s is closed and its replies cannot be edited", qnaID)
	}

	reply, err := s.findReply(ctx, qnaID, replyID)
	if err != nil {
		return nil, err
	}
	if !reply.IsWrittenBy(viewer.ID) {
		return nil, shared.ErrForbidden.Errorf("only the writer can edit this reply")
	}

	updated, err := reply.UpdateContent(req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.replyRepo.Save(ctx, updated); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, updated)

	return ToReplyResponse(updated, viewer), nil
}

// DeleteReply soft-deletes a reply. Its children stay visible.
// The writer and admins may delete it.
func (s *ReplyService) DeleteReply(ctx context.Context, viewer Viewer, qnaID, replyID uuid.UUID) error {
	reply, err := s.findReply(ctx, qnaID, replyID)
	if err != nil {
		return err
	}
	if !reply.IsWrittenBy(viewer.ID) && viewer.Type != qna.WriterTypeAdmin {
		return shared.ErrForbidden.Errorf("only the writer or an admin can delete this reply")
	}

	reply.Delete()
	if err := s.replyRepo.Save(ctx, reply); err != nil {
		return err
	}

	logger.L(ctx).Info("qna reply deleted",
		zap.String("qna_id", qnaID.String()),
		zap.String("reply_id", replyID.String()),
		zap.String("path", reply.Path.String()),
	)
	s.publishDomainEvents(ctx, reply)
	return nil
}

func (s *ReplyService) findReply(ctx context.Context, qnaID, replyID uuid.UUID) (*qna.QnaReply, error) {
	reply, err := s.replyRepo.FindByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if reply.QnaID != qnaID {
		return nil, shared.ErrNotFound.Errorf("reply %s not found in qna %s", replyID, qnaID)
	}
	return reply, nil
}
