package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Rifaque/ZeroLink/internal/auth"
	"github.com/Rifaque/ZeroLink/internal/metrics"
	"github.com/Rifaque/ZeroLink/internal/service"
	"github.com/Rifaque/ZeroLink/internal/storage"
)

// maxUploadBytes caps a single media upload.
const maxUploadBytes = 10 << 20 // 10 MiB

// RestHandler serves the HTTP API around the relay: uploads, the user
// directory, the message log, and token verification.
type RestHandler struct {
	userService service.IUserService
	messageRepo service.IMessageRepository
	verifier    auth.TokenVerifier
	blobs       storage.BlobStore
	logger      zerolog.Logger
}

// NewRestHandler creates a new RestHandler.
func NewRestHandler(userService service.IUserService, messageRepo service.IMessageRepository, verifier auth.TokenVerifier, blobs storage.BlobStore, logger zerolog.Logger) *RestHandler {
	return &RestHandler{
		userService: userService,
		messageRepo: messageRepo,
		verifier:    verifier,
		blobs:       blobs,
		logger:      logger,
	}
}

// HandleRoot handles GET /.
func (h *RestHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ZeroLink Server Running"))
}

// HandleHealth handles GET /api/health.
func (h *RestHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleVerify handles POST /api/auth/verify: checks the bearer token and
// echoes the identity it asserts.
func (h *RestHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "No token provided"})
		return
	}

	identity, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uid": identity.UID, "email": identity.Email})
}

// HandleProtected handles GET /api/protected. Requires the auth middleware.
func (h *RestHandler) HandleProtected(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Hello, %s", identity.Email)})
}

// HandleUsers handles GET /api/users: the directory as {id, name} pairs with
// display-name fallback. The id is the chat identity label, not the token
// subject: it is what a client addresses direct messages to, so it must live
// in the same namespace as message usernames and DM room ids.
func (h *RestHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch users")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch users"})
		return
	}

	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	payload := make([]entry, 0, len(users))
	for _, u := range users {
		payload = append(payload, entry{ID: u.Name(), Name: u.Name()})
	}
	writeJSON(w, http.StatusOK, payload)
}

// HandleMessages handles GET /api/messages. Requires the auth middleware.
func (h *RestHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messageRepo.ListAllMessages(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch messages"})
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// HandleUpload handles POST /api/upload: stores one multipart file through
// the blob store and returns the URL it is served under.
func (h *RestHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	name, err := h.blobs.Save(header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, storage.ErrUnsupportedMedia) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error().Err(err).Str("file", header.Filename).Msg("upload failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Upload failed"})
		return
	}

	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"fileUrl": fmt.Sprintf("%s://%s/uploads/%s", scheme, r.Host, name),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
