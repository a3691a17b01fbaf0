package qna

import (
	"slices"

	"github.com/setof/qna-backend/internal/domain/qna"
)

// Placeholders shown in place of secret content
const (
	SecretPlaceholder      = "This is a secret question."
	SecretReplyPlaceholder = "This is a reply to a secret question."
)

// QnaView is the part of a Qna whose visibility depends on the viewer
type QnaView struct {
	WriterName string
	Title      string
	Body       string
	Images     []qna.QnaImage
	Restricted bool
}

// MaskName hides the last two characters of a name
func MaskName(name string) string {
	runes := []rune(name)
	if len(runes) < 2 {
		return name
	}
	return string(runes[:len(runes)-2]) + "**"
}

// MaskWriterName returns the writer name as viewer may see it.
// Writers see their own name, staff see every name.
func MaskWriterName(w qna.Writer, viewer Viewer) string {
	if viewer.ID == w.ID || viewer.IsStaff() {
		return w.Name
	}
	return MaskName(w.Name)
}

// MaskQna returns the viewer-dependent fields of q.
// A secret question keeps its title but its body and images are withheld
// from anyone other than its writer and staff.
func MaskQna(q *qna.Qna, viewer Viewer) QnaView {
	images := slices.Clone(q.Images)
	slices.SortStableFunc(images, func(a, b qna.QnaImage) int {
		return a.DisplayOrder - b.DisplayOrder
	})

	view := QnaView{
		WriterName: MaskWriterName(q.Writer, viewer),
		Title:      q.Content.Title,
		Body:       q.Content.Body,
		Images:     images,
	}
	if !canReadSecret(q, viewer) {
		view.Body = SecretPlaceholder
		view.Images = nil
		view.Restricted = true
	}
	return view
}

// MaskReply hides the content of a reply in a secret thread. Only the
// question's writer, staff and the reply's own writer read it.
func MaskReply(resp *ReplyResponse, r *qna.QnaReply, q *qna.Qna, viewer Viewer) {
	if canReadSecret(q, viewer) || r.IsWrittenBy(viewer.ID) {
		return
	}
	resp.Content = SecretReplyPlaceholder
	resp.Restricted = true
}

func canReadSecret(q *qna.Qna, viewer Viewer) bool {
	return !q.Secret || q.IsWrittenBy(viewer.ID) || viewer.IsStaff()
}
