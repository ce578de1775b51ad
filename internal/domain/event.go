package domain

// Inbound event types. Clients send flat JSON objects discriminated by "type".
const (
	EventGetRooms    = "getRooms"
	EventTyping      = "typing"
	EventSendMessage = "sendMessage"
	EventSendMedia   = "sendMedia"
)

// Outbound event types.
const (
	EventRooms   = "rooms"
	EventHistory = "history"
	EventMessage = "message"
)

// Envelope carries only the type discriminator. The raw event bytes are
// decoded a second time into the concrete event struct once the type is
// known.
type Envelope struct {
	Type string `json:"type"`
}

// TypingEvent signals that the sender is typing in their current room.
// Not persisted.
type TypingEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// SendMessageEvent carries a text message. An empty Receivername addresses
// the global room.
type SendMessageEvent struct {
	Type         string `json:"type"`
	RoomID       string `json:"roomId"`
	Text         string `json:"text"`
	Receivername string `json:"receivername,omitempty"`
	Username     string `json:"username"`
}

// SendMediaEvent carries a message with an uploaded media reference and
// optional caption text.
type SendMediaEvent struct {
	Type         string `json:"type"`
	RoomID       string `json:"roomId"`
	Text         string `json:"text,omitempty"`
	Receivername string `json:"receivername,omitempty"`
	MediaURL     string `json:"mediaUrl"`
	MediaType    string `json:"mediaType"`
	Username     string `json:"username"`
}

// RoomsEvent pushes the caller's room list.
type RoomsEvent struct {
	Type  string        `json:"type"`
	Rooms []RoomSummary `json:"rooms"`
}

// HistoryEvent replays a room's messages in ascending timestamp order.
type HistoryEvent struct {
	Type     string     `json:"type"`
	Messages []*Message `json:"messages"`
}

// MessageEvent fans a freshly persisted message out to watching sessions.
type MessageEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message"`
}
