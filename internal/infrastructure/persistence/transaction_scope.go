package persistence

import (
	"context"

	appqna "github.com/setof/qna-backend/internal/application/qna"
	"github.com/setof/qna-backend/internal/domain/qna"
	"gorm.io/gorm"
)

// GormTransactionScope implements appqna.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. The transaction is rolled
// back when fn returns an error and committed otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appqna.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) QnaRepo() qna.QnaRepository {
	return NewGormQnaRepository(r.tx)
}

func (r *gormTransactionalRepositories) ReplyRepo() qna.QnaReplyRepository {
	return NewGormQnaReplyRepository(r.tx)
}

var _ appqna.TransactionScope = (*GormTransactionScope)(nil)
var _ appqna.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
