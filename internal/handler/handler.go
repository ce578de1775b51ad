package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Rifaque/ZeroLink/internal/auth"
	"github.com/Rifaque/ZeroLink/internal/config"
	"github.com/Rifaque/ZeroLink/internal/domain"
	"github.com/Rifaque/ZeroLink/internal/hub"
	"github.com/Rifaque/ZeroLink/internal/metrics"
	"github.com/Rifaque/ZeroLink/internal/service"
)

// CloseInvalidCredentials tells the client its credential is missing or
// invalid and it must run a fresh login. Any other close code is transient
// and eligible for reconnect-with-backoff on the client side.
const CloseInvalidCredentials = 4001

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin policy is enforced by the CORS layer on the router;
		// the upgrader accepts whatever reached it.
		return true
	},
}

// WebsocketHandler authenticates WebSocket connection requests and hands the
// accepted ones to the hub.
type WebsocketHandler struct {
	hub           *hub.Hub
	verifier      auth.TokenVerifier
	userService   service.IUserService
	verifyTimeout time.Duration
	logger        zerolog.Logger
}

// NewWebsocketHandler creates a new WebsocketHandler.
func NewWebsocketHandler(h *hub.Hub, verifier auth.TokenVerifier, userService service.IUserService, cfg *config.Config, logger zerolog.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		hub:           h,
		verifier:      verifier,
		userService:   userService,
		verifyTimeout: cfg.VerifyTimeout,
		logger:        logger,
	}
}

// HandleConnection handles GET /ws?token=&userId=&roomId=.
//
// The token is the opaque credential, userId the identity label the client
// wants to appear as, roomId the room to open on (defaults to global). The
// handler blocks until the connection closes.
func (h *WebsocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	userID := r.URL.Query().Get("userId")
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		roomID = domain.GlobalRoomID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	if token == "" || userID == "" {
		h.reject(conn, "missing credentials")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.verifyTimeout)
	defer cancel()
	identity, err := h.verifier.Verify(ctx, token)
	if err != nil {
		h.logger.Warn().Err(err).Str("user", userID).Msg("token verification failed")
		h.reject(conn, "invalid token")
		return
	}

	if _, err := h.userService.EnsureUser(identity); err != nil {
		h.logger.Error().Err(err).Str("uid", identity.UID).Msg("user bootstrap failed")
		h.reject(conn, "invalid credentials")
		return
	}

	metrics.ConnectionsTotal.WithLabelValues("accepted").Inc()
	h.logger.Info().Str("email", identity.Email).Str("user", userID).Str("room", roomID).Msg("client authenticated")

	h.hub.ServeClient(conn, userID, roomID)
}

// reject closes the connection with the re-login close code.
func (h *WebsocketHandler) reject(conn *websocket.Conn, reason string) {
	metrics.ConnectionsTotal.WithLabelValues("rejected").Inc()
	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(CloseInvalidCredentials, reason), deadline)
	conn.Close()
}
