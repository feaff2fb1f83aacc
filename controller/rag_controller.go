package controller

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/docubot/rag/models"
	"github.com/docubot/rag/services"
)

// RAGController handles the HTTP requests for the RAG API. It depends on the
// RAGService to perform the actual business logic.
type RAGController struct {
	ragService services.RAGService
	staticDir  string
}

// NewRAGController is a constructor function that creates a new RAGController.
// This is called from main.go to inject the service dependency.
func NewRAGController(service services.RAGService, staticDir string) *RAGController {
	return &RAGController{
		ragService: service,
		staticDir:  staticDir,
	}
}

// Root serves the chat UI if present, otherwise a JSON welcome message.
func (c *RAGController) Root(ctx *gin.Context) {
	indexFile := c.staticDir + "/index.html"
	if _, err := os.Stat(indexFile); err == nil {
		ctx.File(indexFile)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the RAG Chatbot API! (UI index.html not found)",
		"steps": []string{
			"1. Call /initialize to load documents",
			"2. Call /chat to ask questions",
		},
	})
}

// Health reports process health plus initialization and staleness state.
func (c *RAGController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, models.HealthResponse{
		Status:      "healthy",
		Initialized: c.ragService.Initialized(),
		Stale:       c.ragService.Stale(),
	})
}

// Initialize is the Gin handler for POST /initialize. It triggers document
// loading, chunking and vector index creation (or reuse).
func (c *RAGController) Initialize(ctx *gin.Context) {
	var req models.InitializeRequest
	// The body is optional; an empty body means force_recreate=false.
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body: " + err.Error()})
		return
	}

	if err := c.ragService.Initialize(ctx.Request.Context(), req.ForceRecreate); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrNoDocuments) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{"detail": "Initialization failed: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, models.InitializeResponse{
		Message: "System initialized successfully",
		Success: true,
	})
}

// Chat is the Gin handler for POST /chat. It answers a question grounded in
// the indexed documents.
func (c *RAGController) Chat(ctx *gin.Context) {
	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.ragService.Chat(ctx.Request.Context(), req.Question, req.ChatHistory)
	if err != nil {
		if errors.Is(err, services.ErrNotInitialized) {
			ctx.JSON(http.StatusBadRequest, gin.H{"detail": "System not initialized. Please call /initialize first."})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": "Error generating response: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
