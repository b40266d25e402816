package memory

import (
	"slices"
	"time"
)

type (
	Source string

	Memory struct {
		Key string `json:"key"`
		// Scope groups memories of one conversation.
		Scope     string    `json:"scope"`
		Source    Source    `json:"source"`
		Value     string    `json:"value"`
		CreatedAt time.Time `json:"created_at"`
		Embedding []float32 `json:"-"`
	}

	ScoredMemory struct {
		*Memory
		Score float64 `json:"score"`
	}

	// Filter restricts a search or listing. Empty fields match everything.
	Filter struct {
		Scope   string
		Sources []Source
	}
)

const (
	SourceUser      Source = "user"
	SourceAssistant Source = "assistant"

	CollectionName = "chatbot_memory"
)

func (f Filter) Match(m *Memory) bool {
	if f.Scope != "" && m.Scope != f.Scope {
		return false
	}
	if len(f.Sources) > 0 && !slices.Contains(f.Sources, m.Source) {
		return false
	}
	return true
}
