package qna

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type replyServiceFixture struct {
	svc       *ReplyService
	qnaRepo   *MockQnaRepository
	replyRepo *MockQnaReplyRepository
	locker    *stubLocker
	pub       *recordingPublisher
}

func newReplyServiceFixture() *replyServiceFixture {
	f := &replyServiceFixture{
		qnaRepo:   new(MockQnaRepository),
		replyRepo: new(MockQnaReplyRepository),
		locker:    &stubLocker{},
		pub:       &recordingPublisher{},
	}
	allocator := NewReplyAllocator(NewNoOpTransactionScope(f.qnaRepo, f.replyRepo), f.locker)
	f.svc = NewReplyService(f.qnaRepo, f.replyRepo, allocator)
	f.svc.SetEventPublisher(f.pub)
	return f
}

func TestReplyService_CreateReply(t *testing.T) {
	t.Run("root reply", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())

		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.qnaRepo.On("FindByIDForUpdate", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindMaxRootPath", mock.Anything, q.ID).Return(qna.Path(""), nil)
		f.replyRepo.On("Create", mock.Anything, mock.AnythingOfType("*qna.QnaReply")).Return(nil)
		f.qnaRepo.On("Save", mock.Anything, q).Return(nil)

		resp, err := f.svc.CreateReply(context.Background(), seller(), q.ID, CreateReplyRequest{Content: "It runs true to size."})
		require.NoError(t, err)

		assert.Equal(t, "001", resp.Path)
		assert.Equal(t, 1, resp.Depth)
		assert.Nil(t, resp.ParentReplyID)
		assert.Equal(t, []string{qna.EventTypeQnaReplyCreated}, f.pub.types())
	})

	t.Run("child reply", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		parent := newStoredReply(t, q.ID, nil, "002", seller())

		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindByID", mock.Anything, parent.ID).Return(parent, nil)
		f.qnaRepo.On("FindByIDForUpdate", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindMaxChildPath", mock.Anything, q.ID, qna.Path("002")).Return(qna.Path("002.003"), nil)
		f.replyRepo.On("Create", mock.Anything, mock.AnythingOfType("*qna.QnaReply")).Return(nil)
		f.qnaRepo.On("Save", mock.Anything, q).Return(nil)

		resp, err := f.svc.CreateReply(context.Background(), customer(), q.ID, CreateReplyRequest{
			ParentReplyID: &parent.ID,
			Content:       "thanks",
		})
		require.NoError(t, err)
		assert.Equal(t, "002.004", resp.Path)
		assert.Equal(t, "002", resp.ParentPath)
		assert.Equal(t, []string{ReplyScopeKey(q.ID, "002")}, f.locker.keys)
	})

	t.Run("closed question consumes no path", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		require.NoError(t, q.Close())
		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)

		_, err := f.svc.CreateReply(context.Background(), seller(), q.ID, CreateReplyRequest{Content: "late"})
		assert.ErrorIs(t, err, qna.ErrQnaAlreadyClosed)
		assert.Empty(t, f.locker.keys)
	})

	t.Run("parent from another question", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		foreign := newStoredReply(t, uuid.New(), nil, "001", seller())
		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindByID", mock.Anything, foreign.ID).Return(foreign, nil)

		_, err := f.svc.CreateReply(context.Background(), seller(), q.ID, CreateReplyRequest{
			ParentReplyID: &foreign.ID, Content: "x",
		})
		assert.ErrorIs(t, err, qna.ErrReplyParentMismatch)
	})

	t.Run("deleted parent", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		parent := newStoredReply(t, q.ID, nil, "001", seller())
		parent.Delete()
		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindByID", mock.Anything, parent.ID).Return(parent, nil)

		_, err := f.svc.CreateReply(context.Background(), seller(), q.ID, CreateReplyRequest{
			ParentReplyID: &parent.ID, Content: "x",
		})
		assert.ErrorIs(t, err, qna.ErrReplyDeleted)
	})

	t.Run("parent at max depth", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		var parent *qna.QnaReply
		for _, p := range []qna.Path{"001", "001.001", "001.001.001", "001.001.001.001", "001.001.001.001.001"} {
			parent = newStoredReply(t, q.ID, parent, p, seller())
		}
		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindByID", mock.Anything, parent.ID).Return(parent, nil)

		_, err := f.svc.CreateReply(context.Background(), seller(), q.ID, CreateReplyRequest{
			ParentReplyID: &parent.ID, Content: "too deep",
		})
		assert.ErrorIs(t, err, qna.ErrReplyDepthExceeded)
		assert.Empty(t, f.locker.keys)
	})

	t.Run("missing parent", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		missing := uuid.New()
		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound.Errorf("reply not found"))

		_, err := f.svc.CreateReply(context.Background(), seller(), q.ID, CreateReplyRequest{
			ParentReplyID: &missing, Content: "x",
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestReplyService_ListReplies(t *testing.T) {
	t.Run("thread order", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		r1 := newStoredReply(t, q.ID, nil, "001", seller())
		r2 := newStoredReply(t, q.ID, nil, "002", seller())
		r11 := newStoredReply(t, q.ID, r1, "001.001", customer())

		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindByQnaID", mock.Anything, q.ID).Return([]*qna.QnaReply{r2, r11, r1}, nil)

		list, err := f.svc.ListReplies(context.Background(), seller(), q.ID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "001", list[0].Path)
		assert.Equal(t, "001.001", list[1].Path)
		assert.Equal(t, "002", list[2].Path)
	})

	t.Run("unknown question", func(t *testing.T) {
		f := newReplyServiceFixture()
		id := uuid.New()
		f.qnaRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound.Errorf("qna %s not found", id))

		_, err := f.svc.ListReplies(context.Background(), seller(), id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("secret thread", func(t *testing.T) {
		asker := customer()
		shop := seller()
		q := newSecretOrderQna(t, asker)
		answer := newStoredReply(t, q.ID, nil, "001", shop)
		followUp := newStoredReply(t, q.ID, answer, "001.001", asker)

		cases := []struct {
			name       string
			viewer     Viewer
			restricted bool
		}{
			{"stranger", customer(), true},
			{"anonymous", Viewer{}, true},
			{"question writer", asker, false},
			{"staff", shop, false},
			{"admin", admin(), false},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newReplyServiceFixture()
				f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
				f.replyRepo.On("FindByQnaID", mock.Anything, q.ID).Return([]*qna.QnaReply{answer, followUp}, nil)

				list, err := f.svc.ListReplies(context.Background(), tc.viewer, q.ID)
				require.NoError(t, err)
				require.Len(t, list, 2)
				for _, r := range list {
					assert.Equal(t, tc.restricted, r.Restricted)
					if tc.restricted {
						assert.Equal(t, SecretReplyPlaceholder, r.Content)
					} else {
						assert.Equal(t, "reply "+r.Path, r.Content)
					}
				}
				assert.Equal(t, "001.001", list[1].Path, "paths stay visible")
			})
		}
	})

	t.Run("own reply in secret thread", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newSecretOrderQna(t, customer())
		replier := customer()
		mine := newStoredReply(t, q.ID, nil, "001", replier)
		other := newStoredReply(t, q.ID, nil, "002", seller())
		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindByQnaID", mock.Anything, q.ID).Return([]*qna.QnaReply{mine, other}, nil)

		list, err := f.svc.ListReplies(context.Background(), replier, q.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "reply 001", list[0].Content)
		assert.False(t, list[0].Restricted)
		assert.Equal(t, SecretReplyPlaceholder, list[1].Content)
		assert.True(t, list[1].Restricted)
	})
}

func TestReplyService_UpdateReply(t *testing.T) {
	t.Run("writer edits while open", func(t *testing.T) {
		f := newReplyServiceFixture()
		author := seller()
		q := newOpenQna(t, customer())
		r := newStoredReply(t, q.ID, nil, "001", author)
		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		f.replyRepo.On("Save", mock.Anything, mock.AnythingOfType("*qna.QnaReply")).Return(nil)

		resp, err := f.svc.UpdateReply(context.Background(), author, q.ID, r.ID, UpdateReplyRequest{Content: "edited"})
		require.NoError(t, err)
		assert.Equal(t, "edited", resp.Content)
		assert.Equal(t, "001", resp.Path, "path never changes")
		assert.Equal(t, []string{qna.EventTypeQnaReplyUpdated}, f.pub.types())
	})

	t.Run("closed question", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		require.NoError(t, q.Close())
		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)

		_, err := f.svc.UpdateReply(context.Background(), seller(), q.ID, uuid.New(), UpdateReplyRequest{Content: "x"})
		assert.ErrorIs(t, err, qna.ErrQnaAlreadyClosed)
	})

	t.Run("not the writer", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		r := newStoredReply(t, q.ID, nil, "001", seller())
		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindByID", mock.Anything, r.ID).Return(r, nil)

		_, err := f.svc.UpdateReply(context.Background(), admin(), q.ID, r.ID, UpdateReplyRequest{Content: "x"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("reply of another question", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		author := seller()
		r := newStoredReply(t, uuid.New(), nil, "001", author)
		f.qnaRepo.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		f.replyRepo.On("FindByID", mock.Anything, r.ID).Return(r, nil)

		_, err := f.svc.UpdateReply(context.Background(), author, q.ID, r.ID, UpdateReplyRequest{Content: "x"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestReplyService_DeleteReply(t *testing.T) {
	t.Run("writer deletes", func(t *testing.T) {
		f := newReplyServiceFixture()
		author := customer()
		q := newOpenQna(t, author)
		r := newStoredReply(t, q.ID, nil, "001", author)
		f.replyRepo.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		f.replyRepo.On("Save", mock.Anything, r).Return(nil)

		require.NoError(t, f.svc.DeleteReply(context.Background(), author, q.ID, r.ID))
		assert.True(t, r.IsDeleted())
		assert.Equal(t, []string{qna.EventTypeQnaReplyDeleted}, f.pub.types())
	})

	t.Run("admin deletes any reply", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		r := newStoredReply(t, q.ID, nil, "001", seller())
		f.replyRepo.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		f.replyRepo.On("Save", mock.Anything, r).Return(nil)

		require.NoError(t, f.svc.DeleteReply(context.Background(), admin(), q.ID, r.ID))
	})

	t.Run("seller may not delete a customer reply", func(t *testing.T) {
		f := newReplyServiceFixture()
		q := newOpenQna(t, customer())
		r := newStoredReply(t, q.ID, nil, "001", customer())
		f.replyRepo.On("FindByID", mock.Anything, r.ID).Return(r, nil)

		err := f.svc.DeleteReply(context.Background(), seller(), q.ID, r.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
