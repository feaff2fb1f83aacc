package main

import (
	"context"
	"log"
	"net/http"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"github.com/docubot/rag/config"
	"github.com/docubot/rag/controller"
	"github.com/docubot/rag/services"
)

func main() {
	cfg := config.Load()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	store, cleanup, err := buildVectorStore(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to create vector store backend: %v", err)
	}
	defer cleanup()

	embedder := services.NewOllamaEmbedder(httpClient, cfg.OllamaURL, cfg.EmbeddingModel)

	llm, err := buildChatModel(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to create language model client: %v", err)
	}

	ragService := services.NewRAGService(cfg, store, embedder, llm)
	ragController := controller.NewRAGController(ragService, "static")

	// Try to load an existing vector store at startup so the service is
	// immediately usable after a restart. Failure here is non-critical; the
	// operator can still call /initialize explicitly.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := ragService.Initialize(startupCtx, false); err != nil {
		log.Printf("Startup initialization failed (non-critical): %v", err)
		log.Println("System will need explicit initialization via /initialize endpoint.")
	} else {
		log.Println("Startup initialization successful.")
	}
	cancelStartup()

	// Watch the document directory so /health can report when the index is
	// out of date.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go services.WatchDocumentDirectory(watchCtx, cfg.DocumentDir, ragService)

	router := gin.Default()

	// CORS middleware so the bundled UI can be served from elsewhere during
	// development.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/", ragController.Root)
	router.GET("/health", ragController.Health)
	router.POST("/initialize", ragController.Initialize)
	router.POST("/chat", ragController.Chat)
	router.Static("/static", "static")

	log.Printf("RAG backend server starting on http://localhost:%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

// buildVectorStore selects the vector store backend from configuration:
// a local JSON-file store by default, or a ChromaDB collection.
func buildVectorStore(cfg *config.Config) (services.VectorStore, func(), error) {
	switch cfg.VectorBackend {
	case "chroma":
		chromaClient, err := chromago.NewHTTPClient()
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := chromaClient.Close(); err != nil {
				log.Printf("Warning: Failed to close chroma client: %v", err)
			}
		}
		log.Printf("Using ChromaDB vector store (collection %q).", cfg.CollectionName)
		return services.NewChromaStore(chromaClient, cfg.CollectionName), cleanup, nil
	default:
		log.Printf("Using local vector store at %s.", cfg.VectorStoreDir)
		return services.NewLocalStore(cfg.VectorStoreDir), func() {}, nil
	}
}

// buildChatModel selects the language model provider from configuration:
// the Groq chat-completions API by default, or Google Gemini.
func buildChatModel(cfg *config.Config) (services.ChatModel, error) {
	switch cfg.LLMProvider {
	case "gemini":
		geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, err
		}
		log.Println("Using Google Gemini as the language model provider.")
		return services.NewGeminiChatModel(geminiClient, cfg.GeminiModel, cfg.Temperature), nil
	default:
		log.Println("Using Groq as the language model provider.")
		return services.NewGroqChatModel(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, cfg.Temperature), nil
	}
}
