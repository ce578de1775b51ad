package domain

// GlobalRoomID is the shared channel every authenticated client may watch.
// Direct-message rooms are identified by the peer's identity string instead.
const GlobalRoomID = "global"

// GlobalRoomName is the display name of the synthetic global room.
const GlobalRoomName = "Global Chat"

// RoomSummary is the per-user view of one room: derived from the conversation
// registry and the message log on every request, never stored.
type RoomSummary struct {
	RoomID      string `json:"roomId"`
	Name        string `json:"name"`
	LastMessage string `json:"lastMessage"`
	UnreadCount int64  `json:"unreadCount"`
}
