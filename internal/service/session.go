package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"pricecompare/internal/assistant"
	"pricecompare/internal/domain"
	"pricecompare/internal/index"
)

// ErrNoSearch is returned when a session operation needs a prior search.
var ErrNoSearch = errors.New("no search performed")

const noSearchReply = "Please perform a product search first."

// Result is the output of one pipeline run.
type Result struct {
	Request        domain.StructuredRequest `json:"request"`
	Recommendation domain.Recommendation    `json:"recommendation"`
	Offers         []domain.Offer           `json:"offers"`
}

// Session remembers the last search and the assistants built on it.
type Session struct {
	pipeline  domain.Pipeline
	index     *index.Index
	completer domain.Completer
	log       zerolog.Logger

	mu       sync.Mutex
	last     *Result
	shopping *assistant.Shopping
	research *assistant.Research
}

func NewSession(pipeline domain.Pipeline, ix *index.Index, chat domain.Completer, log zerolog.Logger) *Session {
	return &Session{pipeline: pipeline, index: ix, completer: chat, log: log}
}

// Search runs the pipeline and rebuilds the assistants around its result.
func (s *Session) Search(ctx context.Context, raw string, onProgress domain.ProgressFunc) Result {
	req, rec, offers := s.pipeline.Run(ctx, raw, onProgress)
	res := Result{Request: req, Recommendation: rec, Offers: offers}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &res
	s.shopping = assistant.NewShopping(s.completer, req, rec, s.log)
	s.research = assistant.NewResearch(s.completer, s.searcher(), s.log)
	return res
}

// Last returns the most recent result.
func (s *Session) Last() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// Product returns the i-th ranked offer of the last search.
func (s *Session) Product(i int) (domain.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.Offer{}, ErrNoSearch
	}
	if i < 0 || i >= len(s.last.Offers) {
		return domain.Offer{}, errors.New("product index out of range")
	}
	return s.last.Offers[i], nil
}

// ChatShopping talks to the shopping assistant of the last search.
func (s *Session) ChatShopping(ctx context.Context, message string) string {
	s.mu.Lock()
	a := s.shopping
	s.mu.Unlock()
	if a == nil {
		return noSearchReply
	}
	return a.Chat(ctx, message)
}

// ChatResearch talks to the research assistant. It works before any search,
// answering from whatever the index already holds.
func (s *Session) ChatResearch(ctx context.Context, message string) string {
	s.mu.Lock()
	if s.research == nil {
		s.research = assistant.NewResearch(s.completer, s.searcher(), s.log)
	}
	a := s.research
	s.mu.Unlock()
	return a.Chat(ctx, message)
}

func (s *Session) searcher() assistant.SimilarSearcher {
	if s.index == nil {
		return nil
	}
	return s.index
}

// Clear drops the assistants and the remembered result. The index is kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
	s.shopping = nil
	s.research = nil
}

// Index returns the semantic index shared by every search in the session.
func (s *Session) Index() *index.Index { return s.index }
