package postgres

import (
	"database/sql"

	"github.com/Rifaque/ZeroLink/internal/domain"
)

// ConversationRepository handles database operations for 1:1 conversations.
type ConversationRepository struct {
	DB *sql.DB
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

// EnsureConversation creates the row for the unordered pair {a, b} unless one
// already exists. The unique constraint on the canonicalized pair makes
// concurrent first-contact messages collapse to a single row.
func (r *ConversationRepository) EnsureConversation(a, b string) error {
	convo := domain.NewConversation(a, b)
	query := `INSERT INTO conversations (id, participant_a, participant_b, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_a, participant_b) DO NOTHING`
	_, err := r.DB.Exec(query, convo.ID, convo.ParticipantA, convo.ParticipantB, convo.CreatedAt)
	return err
}

// FindByPair retrieves the conversation for the unordered pair {a, b}.
func (r *ConversationRepository) FindByPair(a, b string) (*domain.Conversation, error) {
	if b < a {
		a, b = b, a
	}
	convo := &domain.Conversation{}
	query := `SELECT id, participant_a, participant_b, created_at FROM conversations
		WHERE participant_a = $1 AND participant_b = $2`
	err := r.DB.QueryRow(query, a, b).Scan(&convo.ID, &convo.ParticipantA, &convo.ParticipantB, &convo.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, err
	}
	return convo, nil
}

// ListByParticipant retrieves every conversation containing uid.
func (r *ConversationRepository) ListByParticipant(uid string) ([]*domain.Conversation, error) {
	query := `SELECT id, participant_a, participant_b, created_at FROM conversations
		WHERE participant_a = $1 OR participant_b = $1`
	rows, err := r.DB.Query(query, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convos []*domain.Conversation
	for rows.Next() {
		convo := &domain.Conversation{}
		if err := rows.Scan(&convo.ID, &convo.ParticipantA, &convo.ParticipantB, &convo.CreatedAt); err != nil {
			return nil, err
		}
		convos = append(convos, convo)
	}
	return convos, rows.Err()
}
