package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation records that two identities have exchanged direct messages.
// At most one row exists per unordered pair; rows are created lazily on the
// first direct message and never deleted.
type Conversation struct {
	ID           uuid.UUID `json:"id"`
	ParticipantA string    `json:"participant_a"`
	ParticipantB string    `json:"participant_b"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewConversation builds a conversation for the unordered pair {a, b}.
// Participants are stored in lexical order so (a, b) and (b, a) map to the
// same row under the pair's unique constraint.
func NewConversation(a, b string) *Conversation {
	if b < a {
		a, b = b, a
	}
	return &Conversation{
		ID:           uuid.New(),
		ParticipantA: a,
		ParticipantB: b,
		CreatedAt:    time.Now(),
	}
}

// Peer returns the participant that is not uid, or "" if uid is not part of
// the conversation.
func (c *Conversation) Peer(uid string) string {
	switch uid {
	case c.ParticipantA:
		return c.ParticipantB
	case c.ParticipantB:
		return c.ParticipantA
	}
	return ""
}
