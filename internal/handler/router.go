package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Rifaque/ZeroLink/internal/config"
)

// NewRouter builds the HTTP routing table: the WebSocket endpoint, the REST
// API, static upload serving, and the metrics endpoint.
func NewRouter(cfg *config.Config, logger zerolog.Logger, ws *WebsocketHandler, rest *RestHandler) *mux.Router {
	r := mux.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  allowOrigin(cfg),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(Logging(logger))
	r.Use(Metrics)

	r.HandleFunc("/ws", ws.HandleConnection).Methods("GET")

	r.HandleFunc("/", rest.HandleRoot).Methods("GET")
	r.HandleFunc("/api/health", rest.HandleHealth).Methods("GET")
	r.HandleFunc("/api/auth/verify", rest.HandleVerify).Methods("POST")
	r.HandleFunc("/api/users", rest.HandleUsers).Methods("GET")
	r.HandleFunc("/api/upload", rest.HandleUpload).Methods("POST")
	r.Handle("/api/messages", rest.RequireAuth(http.HandlerFunc(rest.HandleMessages))).Methods("GET")
	r.Handle("/api/protected", rest.RequireAuth(http.HandlerFunc(rest.HandleProtected))).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	return r
}

// allowOrigin admits the configured origins. With no configuration every
// origin is allowed, which keeps local development friction-free.
func allowOrigin(cfg *config.Config) func(r *http.Request, origin string) bool {
	return func(r *http.Request, origin string) bool {
		if len(cfg.AllowedOrigins) == 0 {
			return true
		}
		for _, allowed := range cfg.AllowedOrigins {
			if origin == allowed {
				return true
			}
			// "*.example.com" style entries match by suffix.
			if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(origin, allowed[1:]) {
				return true
			}
		}
		return false
	}
}
