package hub

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Rifaque/ZeroLink/internal/domain"
	"github.com/Rifaque/ZeroLink/internal/metrics"
	"github.com/Rifaque/ZeroLink/internal/service"
)

// Hub owns the set of live sessions and routes every client event. It is the
// session registry and the message router: insert on connect, remove on
// close, iterate-and-filter on every broadcast.
//
// Event handlers run on the session's own read goroutine, so one session's
// blocking persistence call never stalls another session's loop. Only the
// client set itself is shared, guarded by the RWMutex.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	roomService service.IRoomService
	convoRepo   service.IConversationRepository
	messageRepo service.IMessageRepository
	logger      zerolog.Logger
}

// NewHub creates a new Hub.
func NewHub(roomService service.IRoomService, convoRepo service.IConversationRepository, messageRepo service.IMessageRepository, logger zerolog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		roomService: roomService,
		convoRepo:   convoRepo,
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// ServeClient registers a session for an authenticated connection, replays
// the room list and the target room's history, then consumes client events
// until the connection closes. Blocks for the connection's lifetime.
func (h *Hub) ServeClient(conn *websocket.Conn, userID, roomID string) {
	client := &Client{
		UserID: userID,
		RoomID: roomID,
		Hub:    h,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
	h.Register(client)
	go client.writePump()

	// The session is ready only after the room list and history replay have
	// been queued, before the first client event is consumed.
	h.pushRooms(client)
	h.pushHistory(client)

	client.readPump()
}

// Register adds a session to the registry.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	metrics.ActiveSessions.Inc()
	h.logger.Info().Str("user", c.UserID).Str("room", c.RoomID).Msg("session registered")
}

// Unregister removes a session and closes its send channel. Safe to call
// more than once for the same session, and safe against broadcasts holding a
// snapshot that still references the session.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	c.closeSend()

	if ok {
		metrics.ActiveSessions.Dec()
		h.logger.Info().Str("user", c.UserID).Str("room", c.RoomID).Msg("session unregistered")
	}
}

// sameThread reports whether a session should observe an event sent by uid
// and addressed to rid. This single predicate is the fan-out rule for both
// messages and typing signals:
//
//	(a) the sender's own sessions open on this thread,
//	(b) the recipient's sessions open on this thread,
//	(c) anyone currently watching the global room, for global events.
//
// A global event only reaches sessions currently viewing the global room,
// not every connected session.
func sameThread(c *Client, uid, rid string) bool {
	return (c.UserID == uid && c.RoomID == rid) ||
		(c.UserID == rid && c.RoomID == uid) ||
		(rid == domain.GlobalRoomID && c.RoomID == domain.GlobalRoomID)
}

// broadcast delivers payload to every session matched by sameThread, except
// skip. Sessions whose send buffer is full are unregistered rather than
// allowed to stall the fan-out.
func (h *Hub) broadcast(uid, rid string, payload []byte, skip *Client) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c != skip && sameThread(c, uid, rid) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if c.trySend(payload) {
			metrics.FanoutDeliveries.Inc()
		} else {
			h.logger.Warn().Str("user", c.UserID).Msg("send buffer full, dropping session")
			h.Unregister(c)
		}
	}
}

// route dispatches one inbound event. Malformed events are dropped without
// disturbing the session; persistence failures fail only the one event.
func (h *Hub) route(c *Client, raw []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.dropEvent(c, "malformed", "unparseable event")
		return
	}

	switch env.Type {
	case domain.EventGetRooms:
		h.pushRooms(c)
	case domain.EventTyping:
		h.handleTyping(c, raw)
	case domain.EventSendMessage:
		h.handleSendMessage(c, raw)
	case domain.EventSendMedia:
		h.handleSendMedia(c, raw)
	default:
		h.dropEvent(c, "unknown_type", "unknown event type: "+env.Type)
	}
}

func (h *Hub) handleTyping(c *Client, raw []byte) {
	var ev domain.TypingEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		h.dropEvent(c, "malformed", "invalid typing event")
		return
	}

	payload, err := json.Marshal(domain.TypingEvent{Type: domain.EventTyping, Username: ev.Username})
	if err != nil {
		return
	}
	// Typing is addressed to the sender's current room and excludes the
	// sender's own session.
	h.broadcast(c.UserID, c.RoomID, payload, c)
}

func (h *Hub) handleSendMessage(c *Client, raw []byte) {
	var ev domain.SendMessageEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		h.dropEvent(c, "malformed", "invalid sendMessage event")
		return
	}
	if strings.TrimSpace(ev.Text) == "" {
		h.dropEvent(c, "malformed", "sendMessage without text")
		return
	}

	msg := &domain.Message{
		Username:     c.UserID,
		Receivername: recipientOrGlobal(ev.Receivername),
		Text:         ev.Text,
		Delivered:    true,
	}
	if !h.persist(c, msg, "text") {
		return
	}
	h.fanOutMessage(c, ev.RoomID, msg)
}

func (h *Hub) handleSendMedia(c *Client, raw []byte) {
	var ev domain.SendMediaEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		h.dropEvent(c, "malformed", "invalid sendMedia event")
		return
	}
	if ev.MediaURL == "" || (ev.MediaType != domain.MediaImage && ev.MediaType != domain.MediaVideo) {
		h.dropEvent(c, "malformed", "sendMedia without a valid media reference")
		return
	}

	msg := &domain.Message{
		Username:     c.UserID,
		Receivername: recipientOrGlobal(ev.Receivername),
		Text:         ev.Text,
		MediaURL:     ev.MediaURL,
		MediaType:    ev.MediaType,
		Delivered:    true,
	}
	if !h.persist(c, msg, "media") {
		return
	}
	h.fanOutMessage(c, ev.RoomID, msg)
}

// persist writes the message and, for direct messages, ensures the
// conversation row for the pair exists. Reports whether the event may be
// fanned out; on failure the session keeps running.
func (h *Hub) persist(c *Client, msg *domain.Message, kind string) bool {
	ctx := context.Background()

	if err := h.messageRepo.InsertMessage(ctx, msg); err != nil {
		metrics.EventsDropped.WithLabelValues("persistence").Inc()
		h.logger.Error().Err(err).Str("user", c.UserID).Msg("message insert failed")
		return false
	}
	if msg.Receivername != domain.GlobalRoomID {
		if err := h.convoRepo.EnsureConversation(msg.Username, msg.Receivername); err != nil {
			metrics.EventsDropped.WithLabelValues("persistence").Inc()
			h.logger.Error().Err(err).Str("user", c.UserID).Msg("conversation ensure failed")
			return false
		}
	}

	metrics.MessagesPersisted.WithLabelValues(kind).Inc()
	return true
}

// fanOutMessage delivers a persisted message to every session watching the
// thread, including the sender's own sessions.
func (h *Hub) fanOutMessage(c *Client, roomID string, msg *domain.Message) {
	payload, err := json.Marshal(domain.MessageEvent{Type: domain.EventMessage, Message: msg})
	if err != nil {
		return
	}
	h.broadcast(c.UserID, roomID, payload, nil)
}

// pushRooms sends a fresh room list to one session only.
func (h *Hub) pushRooms(c *Client) {
	rooms, err := h.roomService.BuildRoomList(context.Background(), c.UserID)
	if err != nil {
		h.logger.Error().Err(err).Str("user", c.UserID).Msg("room list build failed")
		return
	}
	payload, err := json.Marshal(domain.RoomsEvent{Type: domain.EventRooms, Rooms: rooms})
	if err != nil {
		return
	}
	c.trySend(payload)
}

// pushHistory replays the session's room to it.
func (h *Hub) pushHistory(c *Client) {
	messages, err := h.roomService.LoadHistory(context.Background(), c.UserID, c.RoomID)
	if err != nil {
		h.logger.Error().Err(err).Str("user", c.UserID).Str("room", c.RoomID).Msg("history load failed")
		return
	}
	if messages == nil {
		messages = []*domain.Message{}
	}
	payload, err := json.Marshal(domain.HistoryEvent{Type: domain.EventHistory, Messages: messages})
	if err != nil {
		return
	}
	c.trySend(payload)
}

func (h *Hub) dropEvent(c *Client, reason, detail string) {
	metrics.EventsDropped.WithLabelValues(reason).Inc()
	h.logger.Warn().Str("user", c.UserID).Str("room", c.RoomID).Msg(detail)
}

func recipientOrGlobal(receivername string) string {
	if receivername == "" {
		return domain.GlobalRoomID
	}
	return receivername
}
