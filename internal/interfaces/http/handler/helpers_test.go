package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appqna "github.com/setof/qna-backend/internal/application/qna"
	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/interfaces/http/dto"
	"github.com/setof/qna-backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var testCustomer = appqna.Viewer{
	ID:   uuid.MustParse("0b9e1f6a-7c3d-4d8e-9f10-2a3b4c5d6e7f"),
	Type: qna.WriterTypeCustomer,
	Name: "Kim",
}

func setupTestRouter() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Identity())
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any, viewer *appqna.Viewer) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if viewer != nil {
		req.Header.Set(middleware.HeaderUserID, viewer.ID.String())
		req.Header.Set(middleware.HeaderUserRole, string(viewer.Type))
		req.Header.Set(middleware.HeaderUserName, viewer.Name)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	require.Equal(t, code, resp.Error.Code)
	require.NotEmpty(t, resp.Error.RequestID)
}
