package qna

import (
	"context"

	"github.com/setof/qna-backend/internal/domain/qna"
)

// TransactionScope provides transactional access to the Qna repositories.
// All repository calls made inside fn share one database transaction, which
// is committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the current transaction
type TransactionalRepositories interface {
	// QnaRepo returns the Qna repository scoped to the current transaction
	QnaRepo() qna.QnaRepository
	// ReplyRepo returns the reply repository scoped to the current transaction
	ReplyRepo() qna.QnaReplyRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	qnaRepo   qna.QnaRepository
	replyRepo qna.QnaReplyRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(qnaRepo qna.QnaRepository, replyRepo qna.QnaReplyRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{qnaRepo: qnaRepo, replyRepo: replyRepo}
}

// Execute runs fn without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// QnaRepo returns the Qna repository
func (s *NoOpTransactionScope) QnaRepo() qna.QnaRepository {
	return s.qnaRepo
}

// ReplyRepo returns the reply repository
func (s *NoOpTransactionScope) ReplyRepo() qna.QnaReplyRepository {
	return s.replyRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
