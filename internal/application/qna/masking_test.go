package qna

import (
	"testing"

	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"홍길동", "홍**"},
		{"Alice", "Ali**"},
		{"Al", "**"},
		{"A", "A"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskName(tt.in))
		})
	}
}

func TestMaskWriterName(t *testing.T) {
	writer := customer()
	w, err := writer.Writer()
	require.NoError(t, err)

	assert.Equal(t, "홍길동", MaskWriterName(w, writer), "writer sees own name")
	assert.Equal(t, "홍길동", MaskWriterName(w, seller()), "staff sees every name")
	assert.Equal(t, "홍길동", MaskWriterName(w, admin()))
	assert.Equal(t, "홍**", MaskWriterName(w, customer()), "other customers see a masked name")
}

func newSecretOrderQna(t *testing.T, writer Viewer) *qna.Qna {
	t.Helper()
	w, err := writer.Writer()
	require.NoError(t, err)
	content, err := qna.NewContent("Refund", "Card ending 1234")
	require.NoError(t, err)
	q, err := qna.NewOrderQna(qna.DetailTypeRefund, 99, w, content, true, []qna.QnaImage{
		{URL: "https://cdn.example.com/2.png", DisplayOrder: 2},
		{URL: "https://cdn.example.com/1.png", DisplayOrder: 1},
	})
	require.NoError(t, err)
	return q
}

func TestMaskQna(t *testing.T) {
	writer := customer()
	q := newSecretOrderQna(t, writer)

	t.Run("writer sees everything in display order", func(t *testing.T) {
		view := MaskQna(q, writer)
		assert.False(t, view.Restricted)
		assert.Equal(t, "Card ending 1234", view.Body)
		require.Len(t, view.Images, 2)
		assert.Equal(t, 1, view.Images[0].DisplayOrder)
		assert.Equal(t, 2, view.Images[1].DisplayOrder)
	})

	t.Run("staff sees everything", func(t *testing.T) {
		view := MaskQna(q, seller())
		assert.False(t, view.Restricted)
		assert.Equal(t, "Card ending 1234", view.Body)
		assert.Len(t, view.Images, 2)
	})

	t.Run("others get the placeholder", func(t *testing.T) {
		view := MaskQna(q, customer())
		assert.True(t, view.Restricted)
		assert.Equal(t, "Refund", view.Title)
		assert.Equal(t, SecretPlaceholder, view.Body)
		assert.Empty(t, view.Images)
		assert.Equal(t, "홍**", view.WriterName)
	})

	t.Run("public questions are not restricted", func(t *testing.T) {
		public := newOpenQna(t, writer)
		view := MaskQna(public, customer())
		assert.False(t, view.Restricted)
		assert.Equal(t, public.Content.Body, view.Body)
	})

	t.Run("does not reorder the aggregate", func(t *testing.T) {
		_ = MaskQna(q, writer)
		assert.Equal(t, 2, q.Images[0].DisplayOrder)
	})
}

func TestToReplyResponse(t *testing.T) {
	q := newOpenQna(t, customer())
	root := newStoredReply(t, q.ID, nil, "001", seller())
	child := newStoredReply(t, q.ID, root, "001.002", customer())

	resp := ToReplyResponse(child, seller())
	assert.Equal(t, "001.002", resp.Path)
	assert.Equal(t, "001", resp.ParentPath)
	assert.Equal(t, 2, resp.Depth)
	assert.Equal(t, root.ID, *resp.ParentReplyID)
	assert.Equal(t, "홍길동", resp.Writer.Name)

	rootResp := ToReplyResponse(root, customer())
	assert.Empty(t, rootResp.ParentPath)
	assert.Nil(t, rootResp.ParentReplyID)
	assert.Equal(t, 1, rootResp.Depth)
}

func TestToDomainImages_DefaultsDisplayOrder(t *testing.T) {
	images := toDomainImages([]QnaImageInput{
		{URL: "https://a"},
		{URL: "https://b", DisplayOrder: 7},
	})
	assert.Equal(t, 1, images[0].DisplayOrder)
	assert.Equal(t, 7, images[1].DisplayOrder)
}
