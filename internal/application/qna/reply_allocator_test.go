package qna

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type allocatorFixture struct {
	qnaRepo   *MockQnaRepository
	replyRepo *MockQnaReplyRepository
	locker    *stubLocker
	metrics   *recordingMetrics
	allocator *ReplyAllocator
}

func newAllocatorFixture(opts ...ReplyAllocatorOption) *allocatorFixture {
	f := &allocatorFixture{
		qnaRepo:   new(MockQnaRepository),
		replyRepo: new(MockQnaReplyRepository),
		locker:    &stubLocker{},
		metrics:   &recordingMetrics{},
	}
	opts = append([]ReplyAllocatorOption{WithAllocationMetrics(f.metrics)}, opts...)
	f.allocator = NewReplyAllocator(NewNoOpTransactionScope(f.qnaRepo, f.replyRepo), f.locker, opts...)
	return f
}

func rootRequest(t *testing.T, q *qna.Qna) AllocationRequest {
	w, err := seller().Writer()
	require.NoError(t, err)
	return AllocationRequest{QnaID: q.ID, Writer: w, Content: "thanks for asking"}
}

func TestReplyAllocator_RootReply(t *testing.T) {
	f := newAllocatorFixture()
	q := newOpenQna(t, customer())

	f.qnaRepo.On("FindByIDForUpdate", mock.Anything, q.ID).Return(q, nil)
	f.replyRepo.On("FindMaxRootPath", mock.Anything, q.ID).Return(qna.Path("002"), nil)
	f.replyRepo.On("Create", mock.Anything, mock.AnythingOfType("*qna.QnaReply")).Return(nil)
	f.qnaRepo.On("Save", mock.Anything, q).Return(nil)

	result, err := f.allocator.Allocate(context.Background(), rootRequest(t, q))
	require.NoError(t, err)

	assert.Equal(t, qna.Path("003"), result.Reply.Path)
	assert.True(t, result.Reply.IsRootReply())
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, result.Qna.ReplyCount)
	assert.Equal(t, 2, result.Qna.Version)
	assert.Equal(t, []string{ReplyScopeKey(q.ID, "")}, f.locker.keys)
	assert.Equal(t, 1, f.locker.released)
	assert.Equal(t, []int{1}, f.metrics.allocated)
	f.qnaRepo.AssertExpectations(t)
	f.replyRepo.AssertExpectations(t)
}

func TestReplyAllocator_ChildReply(t *testing.T) {
	f := newAllocatorFixture()
	q := newOpenQna(t, customer())
	parent := newStoredReply(t, q.ID, nil, "001", seller())

	f.qnaRepo.On("FindByIDForUpdate", mock.Anything, q.ID).Return(q, nil)
	f.replyRepo.On("FindMaxChildPath", mock.Anything, q.ID, qna.Path("001")).Return(qna.Path(""), nil)
	f.replyRepo.On("Create", mock.Anything, mock.AnythingOfType("*qna.QnaReply")).Return(nil)
	f.qnaRepo.On("Save", mock.Anything, q).Return(nil)

	req := rootRequest(t, q)
	req.Parent = parent
	result, err := f.allocator.Allocate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, qna.Path("001.001"), result.Reply.Path)
	require.NotNil(t, result.Reply.ParentReplyID)
	assert.Equal(t, parent.ID, *result.Reply.ParentReplyID)
	assert.Equal(t, []string{ReplyScopeKey(q.ID, "001")}, f.locker.keys)
	f.replyRepo.AssertNotCalled(t, "FindMaxRootPath", mock.Anything, mock.Anything)
}

func TestReplyAllocator_RetriesPathConflict(t *testing.T) {
	f := newAllocatorFixture()
	q := newOpenQna(t, customer())

	f.qnaRepo.On("FindByIDForUpdate", mock.Anything, q.ID).Return(q, nil)
	f.replyRepo.On("FindMaxRootPath", mock.Anything, q.ID).Return(qna.Path("001"), nil).Once()
	f.replyRepo.On("FindMaxRootPath", mock.Anything, q.ID).Return(qna.Path("002"), nil).Once()
	f.replyRepo.On("Create", mock.Anything, mock.AnythingOfType("*qna.QnaReply")).
		Return(qna.ErrPathConflict.Errorf("path 002 taken")).Once()
	f.replyRepo.On("Create", mock.Anything, mock.AnythingOfType("*qna.QnaReply")).Return(nil).Once()
	f.qnaRepo.On("Save", mock.Anything, q).Return(nil).Once()

	result, err := f.allocator.Allocate(context.Background(), rootRequest(t, q))
	require.NoError(t, err)

	assert.Equal(t, qna.Path("003"), result.Reply.Path)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 1, f.metrics.conflicts)
	assert.Equal(t, []int{2}, f.metrics.allocated)
	assert.Equal(t, 1, f.locker.released)
}

func TestReplyAllocator_RetriesVersionConflict(t *testing.T) {
	f := newAllocatorFixture()
	first := newOpenQna(t, customer())
	second := qna.ReconstituteQna(first.BaseAggregateRoot, first.Type, first.DetailType, first.TargetID,
		first.Writer, first.Content, first.Secret, first.Images, first.Status, 1, nil)
	second.Version = 2

	f.qnaRepo.On("FindByIDForUpdate", mock.Anything, first.ID).Return(first, nil).Once()
	f.qnaRepo.On("FindByIDForUpdate", mock.Anything, first.ID).Return(second, nil).Once()
	f.replyRepo.On("FindMaxRootPath", mock.Anything, first.ID).Return(qna.Path(""), nil).Once()
	f.replyRepo.On("FindMaxRootPath", mock.Anything, first.ID).Return(qna.Path("001"), nil).Once()
	f.replyRepo.On("Create", mock.Anything, mock.AnythingOfType("*qna.QnaReply")).Return(nil)
	f.qnaRepo.On("Save", mock.Anything, first).Return(shared.ErrConcurrencyConflict.Errorf("stale")).Once()
	f.qnaRepo.On("Save", mock.Anything, second).Return(nil).Once()

	result, err := f.allocator.Allocate(context.Background(), rootRequest(t, first))
	require.NoError(t, err)

	assert.Equal(t, qna.Path("002"), result.Reply.Path)
	assert.Equal(t, 2, result.Qna.ReplyCount)
	assert.Equal(t, 2, result.Attempts)
}

func TestReplyAllocator_Exhausted(t *testing.T) {
	f := newAllocatorFixture(WithMaxAttempts(4))
	q := newOpenQna(t, customer())

	f.qnaRepo.On("FindByIDForUpdate", mock.Anything, q.ID).Return(q, nil)
	f.replyRepo.On("FindMaxRootPath", mock.Anything, q.ID).Return(qna.Path("001"), nil)
	f.replyRepo.On("Create", mock.Anything, mock.AnythingOfType("*qna.QnaReply")).
		Return(qna.ErrPathConflict.Errorf("path 002 taken"))

	_, err := f.allocator.Allocate(context.Background(), rootRequest(t, q))
	require.Error(t, err)

	assert.True(t, errors.Is(err, qna.ErrAllocationExhausted))
	assert.True(t, errors.Is(err, qna.ErrPathConflict), "last conflict is kept as the cause")
	f.replyRepo.AssertNumberOfCalls(t, "Create", 4)
	f.qnaRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Equal(t, 4, f.metrics.conflicts)
	assert.Equal(t, 1, f.metrics.exhausted)
	assert.Equal(t, 1, f.locker.released)
}

func TestReplyAllocator_NonRetryableErrors(t *testing.T) {
	t.Run("segment overflow", func(t *testing.T) {
		f := newAllocatorFixture()
		q := newOpenQna(t, customer())

		f.qnaRepo.On("FindByIDForUpdate", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindMaxRootPath", mock.Anything, q.ID).Return(qna.Path("999"), nil)

		_, err := f.allocator.Allocate(context.Background(), rootRequest(t, q))
		assert.ErrorIs(t, err, qna.ErrPathOverflow)
		f.replyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.replyRepo.AssertNumberOfCalls(t, "FindMaxRootPath", 1)
		assert.Zero(t, f.metrics.conflicts)
	})

	t.Run("qna closed in the meantime", func(t *testing.T) {
		f := newAllocatorFixture()
		q := newOpenQna(t, customer())
		require.NoError(t, q.Close())

		f.qnaRepo.On("FindByIDForUpdate", mock.Anything, q.ID).Return(q, nil)

		_, err := f.allocator.Allocate(context.Background(), rootRequest(t, q))
		assert.ErrorIs(t, err, qna.ErrQnaAlreadyClosed)
		f.qnaRepo.AssertNumberOfCalls(t, "FindByIDForUpdate", 1)
	})

	t.Run("qna gone", func(t *testing.T) {
		f := newAllocatorFixture()
		id := uuid.New()

		f.qnaRepo.On("FindByIDForUpdate", mock.Anything, id).Return(nil, shared.ErrNotFound.Errorf("qna %s not found", id))

		w, err := seller().Writer()
		require.NoError(t, err)
		_, err = f.allocator.Allocate(context.Background(), AllocationRequest{QnaID: id, Writer: w, Content: "hi"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("malformed stored path", func(t *testing.T) {
		f := newAllocatorFixture()
		q := newOpenQna(t, customer())

		f.qnaRepo.On("FindByIDForUpdate", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindMaxRootPath", mock.Anything, q.ID).Return(qna.Path("01"), nil)

		_, err := f.allocator.Allocate(context.Background(), rootRequest(t, q))
		assert.ErrorIs(t, err, qna.ErrPathFormat)
	})
}

func TestReplyAllocator_ScopeBusy(t *testing.T) {
	f := newAllocatorFixture()
	f.locker.err = qna.ErrReplyScopeBusy.Errorf("busy")
	q := newOpenQna(t, customer())

	_, err := f.allocator.Allocate(context.Background(), rootRequest(t, q))
	assert.ErrorIs(t, err, qna.ErrReplyScopeBusy)
	f.qnaRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestReplyAllocator_CanceledContext(t *testing.T) {
	f := newAllocatorFixture()
	q := newOpenQna(t, customer())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.allocator.Allocate(ctx, rootRequest(t, q))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.locker.released)
}

func TestReplyScopeKey(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	assert.Equal(t, "qna:11111111-1111-1111-1111-111111111111:root", ReplyScopeKey(id, ""))
	assert.Equal(t, "qna:11111111-1111-1111-1111-111111111111:001.002", ReplyScopeKey(id, "001.002"))
}

func TestNewReplyAllocator_Options(t *testing.T) {
	a := NewReplyAllocator(nil, nil, WithMaxAttempts(0), WithAllocationMetrics(nil), WithAllocatorLogger(nil))
	assert.Equal(t, DefaultMaxAllocationAttempts, a.maxAttempts)
	assert.NotNil(t, a.metrics)
	assert.NotNil(t, a.logger)

	a = NewReplyAllocator(nil, nil, WithMaxAttempts(7))
	assert.Equal(t, 7, a.maxAttempts)
}
