package memory

import (
	"context"
	"errors"
	"sync"

	"pricecompare/internal/domain"
	"pricecompare/internal/vectorstore"
)

// Storage is a simple in-memory vector store using brute-force cosine distance.
type Storage struct {
	mu   sync.RWMutex
	docs []domain.IndexedDocument
	ids  map[string]int
}

func NewStorage() *Storage { return &Storage{ids: make(map[string]int)} }

// Add appends docs, replacing any document that reuses an existing ID.
func (s *Storage) Add(_ context.Context, docs []domain.IndexedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		if d.ID == "" {
			return errors.New("document id is required")
		}
		if i, ok := s.ids[d.ID]; ok {
			s.docs[i] = d
			continue
		}
		s.ids[d.ID] = len(s.docs)
		s.docs = append(s.docs, d)
	}
	return nil
}

func (s *Storage) Query(_ context.Context, embedding []float64, k int) ([]vectorstore.Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return vectorstore.Nearest(s.docs, embedding, k), nil
}

func (s *Storage) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func (s *Storage) DeleteCollection(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	s.ids = make(map[string]int)
	return nil
}
