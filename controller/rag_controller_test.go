package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docubot/rag/models"
	"github.com/docubot/rag/services"
)

// stubRAGService lets each test script the service layer's behavior.
type stubRAGService struct {
	initErr     error
	initCalls   int
	lastForce   bool
	chatResp    *models.ChatResponse
	chatErr     error
	initialized bool
	stale       bool
}

func (s *stubRAGService) Initialize(ctx context.Context, force bool) error {
	s.initCalls++
	s.lastForce = force
	return s.initErr
}

func (s *stubRAGService) Chat(ctx context.Context, question string, history []models.ChatTurn) (*models.ChatResponse, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return s.chatResp, nil
}

func (s *stubRAGService) Initialized() bool { return s.initialized }
func (s *stubRAGService) Stale() bool       { return s.stale }
func (s *stubRAGService) MarkStale()        { s.stale = true }

func setupRouter(svc services.RAGService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	c := NewRAGController(svc, "static")
	router := gin.New()
	router.GET("/health", c.Health)
	router.POST("/initialize", c.Initialize)
	router.POST("/chat", c.Chat)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	svc := &stubRAGService{initialized: true, stale: true}
	w := doJSON(t, setupRouter(svc), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.Initialized)
	assert.True(t, resp.Stale)
}

func TestInitialize_Success(t *testing.T) {
	svc := &stubRAGService{}
	w := doJSON(t, setupRouter(svc), http.MethodPost, "/initialize", `{"force_recreate":true}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.initCalls)
	assert.True(t, svc.lastForce)

	var resp models.InitializeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestInitialize_EmptyBodyDefaultsToNoForce(t *testing.T) {
	svc := &stubRAGService{}
	w := doJSON(t, setupRouter(svc), http.MethodPost, "/initialize", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.initCalls)
	assert.False(t, svc.lastForce)
}

func TestInitialize_NoDocumentsIsClientError(t *testing.T) {
	svc := &stubRAGService{initErr: services.ErrNoDocuments}
	w := doJSON(t, setupRouter(svc), http.MethodPost, "/initialize", `{"force_recreate":true}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Initialization failed")
}

func TestInitialize_OtherFailuresAreServerErrors(t *testing.T) {
	svc := &stubRAGService{initErr: errors.New("embedding service unreachable")}
	w := doJSON(t, setupRouter(svc), http.MethodPost, "/initialize", `{}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "embedding service unreachable")
}

func TestChat_NotInitialized(t *testing.T) {
	svc := &stubRAGService{chatErr: services.ErrNotInitialized}
	w := doJSON(t, setupRouter(svc), http.MethodPost, "/chat", `{"question":"What is X?"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "System not initialized")
}

func TestChat_MissingQuestion(t *testing.T) {
	svc := &stubRAGService{}
	w := doJSON(t, setupRouter(svc), http.MethodPost, "/chat", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_Success(t *testing.T) {
	page := 1
	svc := &stubRAGService{chatResp: &models.ChatResponse{
		Answer: "grounded answer",
		Sources: []models.SourceDocument{
			{Source: "doc.pdf", PageContent: "snippet", Page: &page, Type: "pdf"},
		},
	}}
	w := doJSON(t, setupRouter(svc), http.MethodPost, "/chat", `{"question":"What is X?","chat_history":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "grounded answer", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "doc.pdf", resp.Sources[0].Source)
}

func TestChat_GenerationFailure(t *testing.T) {
	svc := &stubRAGService{chatErr: errors.New("chat completion api error: 500 - boom")}
	w := doJSON(t, setupRouter(svc), http.MethodPost, "/chat", `{"question":"What is X?"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "500 - boom")
}
