package service

import (
	"context"

	"github.com/Rifaque/ZeroLink/internal/domain"
)

// RoomService computes room summaries and history replays. Read-only: safe
// to call repeatedly and from any session's goroutine.
type RoomService struct {
	convoRepo   IConversationRepository
	messageRepo IMessageRepository
}

// NewRoomService creates a new RoomService.
func NewRoomService(convoRepo IConversationRepository, messageRepo IMessageRepository) *RoomService {
	return &RoomService{convoRepo: convoRepo, messageRepo: messageRepo}
}

// BuildRoomList returns the caller's rooms. The global room always comes
// first; the order among direct-message rooms is unspecified.
func (s *RoomService) BuildRoomList(ctx context.Context, userID string) ([]domain.RoomSummary, error) {
	rooms := make([]domain.RoomSummary, 0, 1)

	lastGlobal, err := s.messageRepo.LatestGlobalMessage(ctx)
	if err != nil {
		return nil, err
	}
	unreadGlobal, err := s.messageRepo.CountUndeliveredGlobal(ctx)
	if err != nil {
		return nil, err
	}
	rooms = append(rooms, domain.RoomSummary{
		RoomID:      domain.GlobalRoomID,
		Name:        domain.GlobalRoomName,
		LastMessage: messageText(lastGlobal),
		UnreadCount: unreadGlobal,
	})

	convos, err := s.convoRepo.ListByParticipant(userID)
	if err != nil {
		return nil, err
	}
	for _, convo := range convos {
		other := convo.Peer(userID)
		if other == "" {
			continue
		}

		lastMsg, err := s.messageRepo.LatestThreadMessage(ctx, userID, other)
		if err != nil {
			return nil, err
		}
		unread, err := s.messageRepo.CountUndeliveredFrom(ctx, other, userID)
		if err != nil {
			return nil, err
		}

		rooms = append(rooms, domain.RoomSummary{
			RoomID:      other,
			Name:        other,
			LastMessage: messageText(lastMsg),
			UnreadCount: unread,
		})
	}

	return rooms, nil
}

// LoadHistory returns the messages a session should replay for a room,
// ascending by timestamp. For the global room that is every global message;
// otherwise the full bidirectional thread between the user and the peer.
func (s *RoomService) LoadHistory(ctx context.Context, userID, roomID string) ([]*domain.Message, error) {
	if roomID == domain.GlobalRoomID {
		return s.messageRepo.FindGlobalMessages(ctx)
	}
	return s.messageRepo.FindThreadMessages(ctx, userID, roomID)
}

func messageText(m *domain.Message) string {
	if m == nil {
		return ""
	}
	return m.Text
}
