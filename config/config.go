package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the RAG service. Values come from
// environment variables (optionally via a .env file) with sensible defaults.
type Config struct {
	Port string

	// Document ingestion
	DocumentDir    string
	VectorStoreDir string
	ChunkSize      int
	ChunkOverlap   int
	RetrieverK     int

	// Vector store backend: "local" or "chroma"
	VectorBackend  string
	CollectionName string

	// Embeddings (Ollama)
	OllamaURL      string
	EmbeddingModel string

	// Language model provider: "groq" or "gemini"
	LLMProvider  string
	GroqAPIKey   string
	GroqBaseURL  string
	GroqModel    string
	GeminiAPIKey string
	GeminiModel  string
	Temperature  float64
}

// Load reads configuration from the environment. A missing .env file is not
// an error; real environment variables take precedence either way.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	return &Config{
		Port:           getEnv("PORT", "8000"),
		DocumentDir:    getEnv("DOCUMENT_DIRECTORY", "documents"),
		VectorStoreDir: getEnv("VECTOR_STORE_DIRECTORY", "vector_store"),
		ChunkSize:      getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:   getEnvInt("CHUNK_OVERLAP", 200),
		RetrieverK:     getEnvInt("RETRIEVER_K", 3),
		VectorBackend:  getEnv("VECTOR_BACKEND", "local"),
		CollectionName: getEnv("CHROMA_COLLECTION", "document-chat"),
		OllamaURL:      getEnv("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "nomic-embed-text:v1.5"),
		LLMProvider:    getEnv("LLM_PROVIDER", "groq"),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:    getEnv("GROQ_API_BASE", "https://api.groq.com/openai/v1"),
		GroqModel:      getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		Temperature:    getEnvFloat("LLM_TEMPERATURE", 0.7),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: invalid value for %s (%q), using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: invalid value for %s (%q), using default %g", key, v, fallback)
		return fallback
	}
	return f
}
