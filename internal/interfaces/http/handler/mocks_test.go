package handler

import (
	"context"

	"github.com/google/uuid"
	appqna "github.com/setof/qna-backend/internal/application/qna"
	"github.com/stretchr/testify/mock"
)

type MockQnaUseCases struct {
	mock.Mock
}

func (m *MockQnaUseCases) qnaResult(args mock.Arguments) (*appqna.QnaResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appqna.QnaResponse), args.Error(1)
}

func (m *MockQnaUseCases) CreateProductQna(ctx context.Context, viewer appqna.Viewer, req appqna.CreateProductQnaRequest) (*appqna.QnaResponse, error) {
	return m.qnaResult(m.Called(ctx, viewer, req))
}

func (m *MockQnaUseCases) CreateOrderQna(ctx context.Context, viewer appqna.Viewer, req appqna.CreateOrderQnaRequest) (*appqna.QnaResponse, error) {
	return m.qnaResult(m.Called(ctx, viewer, req))
}

func (m *MockQnaUseCases) GetByID(ctx context.Context, viewer appqna.Viewer, id uuid.UUID) (*appqna.QnaResponse, error) {
	return m.qnaResult(m.Called(ctx, viewer, id))
}

func (m *MockQnaUseCases) List(ctx context.Context, viewer appqna.Viewer, filter appqna.QnaListFilter) ([]appqna.QnaResponse, int64, error) {
	args := m.Called(ctx, viewer, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appqna.QnaResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockQnaUseCases) UpdateContent(ctx context.Context, viewer appqna.Viewer, id uuid.UUID, req appqna.UpdateQnaContentRequest) (*appqna.QnaResponse, error) {
	return m.qnaResult(m.Called(ctx, viewer, id, req))
}

func (m *MockQnaUseCases) AddImages(ctx context.Context, viewer appqna.Viewer, id uuid.UUID, req appqna.AddQnaImagesRequest) (*appqna.QnaResponse, error) {
	return m.qnaResult(m.Called(ctx, viewer, id, req))
}

func (m *MockQnaUseCases) Close(ctx context.Context, viewer appqna.Viewer, id uuid.UUID) (*appqna.QnaResponse, error) {
	return m.qnaResult(m.Called(ctx, viewer, id))
}

func (m *MockQnaUseCases) Delete(ctx context.Context, viewer appqna.Viewer, id uuid.UUID) error {
	return m.Called(ctx, viewer, id).Error(0)
}

type MockReplyUseCases struct {
	mock.Mock
}

func (m *MockReplyUseCases) CreateReply(ctx context.Context, viewer appqna.Viewer, qnaID uuid.UUID, req appqna.CreateReplyRequest) (*appqna.ReplyResponse, error) {
	args := m.Called(ctx, viewer, qnaID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appqna.ReplyResponse), args.Error(1)
}

func (m *MockReplyUseCases) ListReplies(ctx context.Context, viewer appqna.Viewer, qnaID uuid.UUID) ([]appqna.ReplyResponse, error) {
	args := m.Called(ctx, viewer, qnaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appqna.ReplyResponse), args.Error(1)
}

func (m *MockReplyUseCases) UpdateReply(ctx context.Context, viewer appqna.Viewer, qnaID, replyID uuid.UUID, req appqna.UpdateReplyRequest) (*appqna.ReplyResponse, error) {
	args := m.Called(ctx, viewer, qnaID, replyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appqna.ReplyResponse), args.Error(1)
}

func (m *MockReplyUseCases) DeleteReply(ctx context.Context, viewer appqna.Viewer, qnaID, replyID uuid.UUID) error {
	return m.Called(ctx, viewer, qnaID, replyID).Error(0)
}

var (
	_ QnaUseCases   = (*appqna.QnaService)(nil)
	_ ReplyUseCases = (*appqna.ReplyService)(nil)
)
