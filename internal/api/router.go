package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/service"
)

// Config holds what the router needs.
type Config struct {
	DB        *sql.DB
	Service   *service.Service
	JWTSecret string
	// PublicURL is the externally reachable base URL printed into QR codes.
	// If empty it is derived from each request.
	PublicURL string
	Metrics   *metrics.Metrics
	// Limiter throttles claim submissions and chat messages. Nil disables it.
	Limiter *RateLimiter
}

// NewRouter creates the HTTP router with all endpoints registered, wrapped in
// request logging.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret}
	itemsHandler := &ItemsHandler{Service: cfg.Service, PublicURL: cfg.PublicURL}
	claimsHandler := &ClaimsHandler{Service: cfg.Service}
	messagesHandler := &MessagesHandler{Service: cfg.Service}
	notificationsHandler := &NotificationsHandler{Service: cfg.Service}
	handshakeHandler := &HandshakeHandler{Service: cfg.Service}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)
	optionalMW := OptionalAuthMiddleware(cfg.JWTSecret, cfg.DB)
	limit := cfg.Limiter.Middleware

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/categories", itemsHandler.Categories)
	mux.HandleFunc("GET /api/items/{id}/image", itemsHandler.GetImage)
	mux.HandleFunc("GET /handshake/{token}", handshakeHandler.Resolve)
	mux.Handle("GET /metrics", cfg.Metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.DB.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public, but aware of the signed-in user.
	mux.Handle("GET /api/items", optionalMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /api/items/{id}", optionalMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("GET /api/items/{id}/claim", optionalMW(http.HandlerFunc(claimsHandler.Entry)))

	// Account.
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Items (finder).
	mux.Handle("GET /api/items/mine", authMW(http.HandlerFunc(itemsHandler.Mine)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("GET /api/items/{id}/qr", authMW(http.HandlerFunc(itemsHandler.QR)))
	mux.Handle("POST /api/items/{id}/returned", authMW(http.HandlerFunc(itemsHandler.MarkReturned)))

	// Claims.
	mux.Handle("POST /api/items/{id}/claims", authMW(limit(http.HandlerFunc(claimsHandler.Submit))))
	mux.Handle("GET /api/items/{id}/claims", authMW(http.HandlerFunc(claimsHandler.ForItem)))
	mux.Handle("GET /api/claims/mine", authMW(http.HandlerFunc(claimsHandler.Mine)))
	mux.Handle("GET /api/claims/{id}", authMW(http.HandlerFunc(claimsHandler.Get)))
	mux.Handle("POST /api/claims/{id}/{action}", authMW(http.HandlerFunc(claimsHandler.Respond)))

	// Chat.
	mux.Handle("GET /api/claims/{id}/messages", authMW(http.HandlerFunc(messagesHandler.List)))
	mux.Handle("POST /api/claims/{id}/messages", authMW(limit(http.HandlerFunc(messagesHandler.Send))))

	// Notifications.
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("POST /api/notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))

	return LoggingMiddleware(cfg.Metrics, mux)
}
