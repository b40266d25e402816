package session

import (
	"maps"
	"slices"
	"time"

	"github.com/habiliai/agenteat/errors"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type (
	Message struct {
		Role    Role   `json:"role"`
		Content string `json:"content"`
		// Timestamp is in unix seconds.
		Timestamp int64          `json:"timestamp,omitempty"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}

	Thread struct {
		ID         string    `json:"id"`
		CrewID     string    `json:"crew_id"`
		Messages   []Message `json:"messages"`
		OrderState string    `json:"order_state"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

func NewMessage(role Role, content string) (Message, error) {
	msg := Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Unix(),
	}
	return msg, msg.Validate()
}

func (m Message) Validate() error {
	if !m.Role.Valid() {
		return errors.Wrapf(errors.ErrInvalidParams, "invalid message role %q", m.Role)
	}
	return nil
}

func NewThread(id, crewID string) *Thread {
	now := time.Now()
	return &Thread{
		ID:        id,
		CrewID:    crewID,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message to the end of the thread.
func (t *Thread) Append(role Role, content string) (Message, error) {
	msg, err := NewMessage(role, content)
	if err != nil {
		return msg, err
	}
	t.Messages = append(t.Messages, msg)
	t.UpdatedAt = time.Now()
	return msg, nil
}

// History returns up to limit of the most recent messages, oldest first.
// A non-positive limit returns every message.
func (t *Thread) History(limit int) []Message {
	msgs := t.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return slices.Clone(msgs)
}

func (t *Thread) Validate() error {
	if t.ID == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "thread id is empty")
	}
	for _, m := range t.Messages {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Thread) Clone() *Thread {
	c := *t
	c.Messages = make([]Message, len(t.Messages))
	for i, m := range t.Messages {
		m.Metadata = maps.Clone(m.Metadata)
		c.Messages[i] = m
	}
	return &c
}
