package qna

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
)

// ScopeLock is a held allocation lock
type ScopeLock interface {
	Release(ctx context.Context) error
}

// ScopeLocker serializes path allocation for one (qna, parent path) scope.
// Acquire blocks until the lock is held, the locker's wait bound elapses
// (qna.ErrReplyScopeBusy) or ctx is done.
type ScopeLocker interface {
	Acquire(ctx context.Context, key string) (ScopeLock, error)
}

// ReplyScopeKey returns the lock key for allocating under parentPath,
// or among the roots when parentPath is empty
func ReplyScopeKey(qnaID uuid.UUID, parentPath qna.Path) string {
	if parentPath.IsZero() {
		return fmt.Sprintf("qna:%s:root", qnaID)
	}
	return fmt.Sprintf("qna:%s:%s", qnaID, parentPath)
}
