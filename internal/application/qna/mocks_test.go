package qna

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQnaRepository is a mock implementation of qna.QnaRepository
type MockQnaRepository struct {
	mock.Mock
}

func (m *MockQnaRepository) FindByID(ctx context.Context, id uuid.UUID) (*qna.Qna, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*qna.Qna), args.Error(1)
}

func (m *MockQnaRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*qna.Qna, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*qna.Qna), args.Error(1)
}

func (m *MockQnaRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockQnaRepository) FindByTarget(ctx context.Context, filter qna.QnaFilter) ([]*qna.Qna, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*qna.Qna), args.Get(1).(int64), args.Error(2)
}

func (m *MockQnaRepository) Create(ctx context.Context, q *qna.Qna) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQnaRepository) Save(ctx context.Context, q *qna.Qna) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

// MockQnaReplyRepository is a mock implementation of qna.QnaReplyRepository
type MockQnaReplyRepository struct {
	mock.Mock
}

func (m *MockQnaReplyRepository) FindByID(ctx context.Context, id uuid.UUID) (*qna.QnaReply, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*qna.QnaReply), args.Error(1)
}

func (m *MockQnaReplyRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockQnaReplyRepository) FindByQnaID(ctx context.Context, qnaID uuid.UUID) ([]*qna.QnaReply, error) {
	args := m.Called(ctx, qnaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*qna.QnaReply), args.Error(1)
}

func (m *MockQnaReplyRepository) FindMaxRootPath(ctx context.Context, qnaID uuid.UUID) (qna.Path, error) {
	args := m.Called(ctx, qnaID)
	return args.Get(0).(qna.Path), args.Error(1)
}

func (m *MockQnaReplyRepository) FindMaxChildPath(ctx context.Context, qnaID uuid.UUID, parentPath qna.Path) (qna.Path, error) {
	args := m.Called(ctx, qnaID, parentPath)
	return args.Get(0).(qna.Path), args.Error(1)
}

func (m *MockQnaReplyRepository) Create(ctx context.Context, r *qna.QnaReply) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockQnaReplyRepository) Save(ctx context.Context, r *qna.QnaReply) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// stubLocker hands out locks and records the keys it saw
type stubLocker struct {
	mu       sync.Mutex
	keys     []string
	released int
	err      error
}

func (l *stubLocker) Acquire(_ context.Context, key string) (ScopeLock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return stubLock{locker: l}, nil
}

type stubLock struct {
	locker *stubLocker
}

func (s stubLock) Release(context.Context) error {
	s.locker.mu.Lock()
	defer s.locker.mu.Unlock()
	s.locker.released++
	return nil
}

// recordingMetrics counts allocation outcomes
type recordingMetrics struct {
	mu        sync.Mutex
	allocated []int // attempts per success
	conflicts int
	exhausted int
}

func (m *recordingMetrics) RecordAllocated(_ context.Context, _ int, attempts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocated = append(m.allocated, attempts)
}

func (m *recordingMetrics) RecordConflict(context.Context, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

func (m *recordingMetrics) RecordExhausted(context.Context, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exhausted++
}

func customer() Viewer {
	return Viewer{ID: uuid.New(), Type: qna.WriterTypeCustomer, Name: "홍길동"}
}

func seller() Viewer {
	return Viewer{ID: uuid.New(), Type: qna.WriterTypeSeller, Name: "Shop"}
}

func admin() Viewer {
	return Viewer{ID: uuid.New(), Type: qna.WriterTypeAdmin, Name: "Admin"}
}

func newOpenQna(t *testing.T, writer Viewer) *qna.Qna {
	t.Helper()
	w, err := writer.Writer()
	require.NoError(t, err)
	content, err := qna.NewContent("Sizing", "Is the medium true to size?")
	require.NoError(t, err)
	q, err := qna.NewProductQna(qna.DetailTypeSize, 10, w, content, false)
	require.NoError(t, err)
	q.ClearDomainEvents()
	return q
}

func newSecretOrderQna(t *testing.T, writer Viewer) *qna.Qna {
	t.Helper()
	w, err := writer.Writer()
	require.NoError(t, err)
	content, err := qna.NewContent("Refund", "This is a secret question about my refund.")
	require.NoError(t, err)
	q, err := qna.NewOrderQna(qna.DetailTypeRefund, 20, w, content, true, nil)
	require.NoError(t, err)
	q.ClearDomainEvents()
	return q
}

func newStoredReply(t *testing.T, qnaID uuid.UUID, parent *qna.QnaReply, path qna.Path, writer Viewer) *qna.QnaReply {
	t.Helper()
	w, err := writer.Writer()
	require.NoError(t, err)
	var r *qna.QnaReply
	if parent == nil {
		r, err = qna.NewRootReply(qnaID, w, "reply "+path.String(), path)
	} else {
		r, err = qna.NewChildReply(qnaID, parent.ID, parent.Path, w, "reply "+path.String(), path)
	}
	require.NoError(t, err)
	r.ClearDomainEvents()
	return r
}
