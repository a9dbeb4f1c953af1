package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"formnerd/internal/form"
)

// MemoryStore is an in-process knowledge base with the same contract as
// SQLiteStore. Used by tests and as a zero-setup fallback.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []form.QAEntry
	index   map[string]int // normalized question -> entries position
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

// Seed bulk-loads entries, applying upsert semantics in order.
func (s *MemoryStore) Seed(entries []form.QAEntry) {
	for _, e := range entries {
		_ = s.UpsertByQuestion(context.Background(), e.Question, e.Answer, e.AnswerType)
	}
}

// GetAll returns a copy of all entries in insertion order.
func (s *MemoryStore) GetAll(ctx context.Context) ([]form.QAEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]form.QAEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// UpsertByQuestion replaces the entry with an identical normalized question
// or appends a new one.
func (s *MemoryStore) UpsertByQuestion(ctx context.Context, question, answer string, at form.AnswerType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q := NormalizeQuestion(question)
	if q == "" {
		return fmt.Errorf("empty question")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := form.QAEntry{Question: q, Answer: answer, AnswerType: at, UpdatedAt: time.Now()}
	if pos, ok := s.index[q]; ok {
		s.entries[pos] = entry
		return nil
	}
	s.index[q] = len(s.entries)
	s.entries = append(s.entries, entry)
	return nil
}
