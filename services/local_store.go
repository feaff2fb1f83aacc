package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/docubot/rag/models"
)

const localIndexFile = "index.json"

// LocalStore is a file-backed vector store using brute-force cosine
// similarity. All entries live in a single JSON file under the store
// directory, which can be deleted as a whole to rebuild from scratch.
type LocalStore struct {
	dir string

	mu      sync.Mutex
	loaded  bool
	entries []Entry
}

// NewLocalStore creates a store persisting to dir/index.json.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) indexPath() string {
	return filepath.Join(s.dir, localIndexFile)
}

// load reads the persisted file into memory once. A missing file means an
// empty store; an unreadable file surfaces as ErrIndexCorrupt so callers can
// distinguish corruption from absence.
func (s *LocalStore) load() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.indexPath())
	if os.IsNotExist(err) {
		s.entries = nil
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	s.entries = entries
	s.loaded = true
	return nil
}

func (s *LocalStore) save() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create vector store directory: %w", err)
	}
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to marshal vector index: %w", err)
	}
	if err := os.WriteFile(s.indexPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write vector index: %w", err)
	}
	return nil
}

// Exists implements VectorStore.
func (s *LocalStore) Exists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return false, err
	}
	return len(s.entries) > 0, nil
}

// Count implements VectorStore.
func (s *LocalStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return 0, err
	}
	return len(s.entries), nil
}

// Add implements VectorStore.
func (s *LocalStore) Add(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.entries = append(s.entries, entries...)
	return s.save()
}

// Search implements VectorStore. Results are ordered by non-increasing
// cosine similarity; ties keep insertion order so identical inputs always
// rank identically.
func (s *LocalStore) Search(ctx context.Context, vector []float32, k int) ([]models.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	if k <= 0 || len(s.entries) == 0 {
		return []models.Chunk{}, nil
	}

	type scored struct {
		index int
		score float64
	}
	scores := make([]scored, len(s.entries))
	for i, entry := range s.entries {
		scores[i] = scored{index: i, score: cosineSimilarity(entry.Embedding, vector)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if k > len(scores) {
		k = len(scores)
	}
	chunks := make([]models.Chunk, 0, k)
	for _, sc := range scores[:k] {
		chunks = append(chunks, s.entries[sc.index].Chunk)
	}
	return chunks, nil
}

// Drop implements VectorStore: the whole store directory is removed.
func (s *LocalStore) Drop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove vector store directory: %w", err)
	}
	s.entries = nil
	s.loaded = true
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
