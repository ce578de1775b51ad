package service

import (
	"context"

	"github.com/Rifaque/ZeroLink/internal/auth"
	"github.com/Rifaque/ZeroLink/internal/domain"
)

// --- Service Interfaces ---

// IUserService defines the interface for directory-related business logic.
type IUserService interface {
	EnsureUser(identity *auth.Identity) (*domain.User, error)
	ListUsers() ([]*domain.User, error)
}

// IRoomService defines the interface for room summaries and history replay.
type IRoomService interface {
	BuildRoomList(ctx context.Context, userID string) ([]domain.RoomSummary, error)
	LoadHistory(ctx context.Context, userID, roomID string) ([]*domain.Message, error)
}

// --- Repository Interfaces ---

// IUserRepository defines the interface for directory persistence.
type IUserRepository interface {
	UpsertUser(user *domain.User) error
	GetUserByUID(uid string) (*domain.User, error)
	ListUsers() ([]*domain.User, error)
}

// IConversationRepository defines the interface for conversation persistence.
type IConversationRepository interface {
	EnsureConversation(a, b string) error
	FindByPair(a, b string) (*domain.Conversation, error)
	ListByParticipant(uid string) ([]*domain.Conversation, error)
}

// IMessageRepository defines the interface for the message log.
type IMessageRepository interface {
	InsertMessage(ctx context.Context, message *domain.Message) error
	FindGlobalMessages(ctx context.Context) ([]*domain.Message, error)
	FindThreadMessages(ctx context.Context, a, b string) ([]*domain.Message, error)
	LatestGlobalMessage(ctx context.Context) (*domain.Message, error)
	LatestThreadMessage(ctx context.Context, a, b string) (*domain.Message, error)
	CountUndeliveredGlobal(ctx context.Context) (int64, error)
	CountUndeliveredFrom(ctx context.Context, from, to string) (int64, error)
	ListAllMessages(ctx context.Context) ([]*domain.Message, error)
}
