package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beatmatch/backend/internal/gateway/middleware"
	auth_http "github.com/beatmatch/backend/internal/modules/auth/interfaces/http"
	events_http "github.com/beatmatch/backend/internal/modules/events/interfaces/http"
	musician_http "github.com/beatmatch/backend/internal/modules/musician/interfaces/http"
	notification_http "github.com/beatmatch/backend/internal/modules/notification/interfaces/http"
	payment_http "github.com/beatmatch/backend/internal/modules/payment/interfaces/http"
	reviews_http "github.com/beatmatch/backend/internal/modules/reviews/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthHandler         *auth_http.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleWare
	ProfileHandler      *musician_http.ProfileHandler
	AvailabilityHandler *musician_http.AvailabilityHandler
	UploadHandler       *musician_http.UploadHandler
	EventHandler        *events_http.EventHandler
	ReviewHandler       *reviews_http.ReviewHandler
	PaymentHandler      *payment_http.PaymentHandler
	NotificationHandler *notification_http.NotificationHandler
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Health Check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Auth Routes
	mux.HandleFunc("POST /user/register", config.AuthHandler.Register)
	mux.HandleFunc("POST /user/login", config.AuthHandler.Login)
	mux.HandleFunc("POST /user/google-login", config.AuthHandler.GoogleLogin)
	mux.Handle("GET /user/me", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.AuthHandler.Me)))
	mux.Handle("DELETE /user", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.AuthHandler.DeleteAccount)))

	// Musician Profile Routes
	mux.Handle("POST /user/musician-profile", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ProfileHandler.Upsert)))
	mux.Handle("GET /user/musician-profile", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ProfileHandler.GetMine)))
	mux.HandleFunc("GET /user/musician-profile/{userId}", config.ProfileHandler.GetPublic)
	mux.HandleFunc("GET /user/search", config.ProfileHandler.Search)
	mux.Handle("POST /user/upload", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.UploadHandler.Upload)))

	// Availability Routes
	mux.Handle("POST /user/availability/add", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.AvailabilityHandler.Add)))
	mux.Handle("GET /user/availability", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.AvailabilityHandler.List)))
	mux.Handle("PATCH /user/availability/{id}", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.AvailabilityHandler.Update)))
	mux.Handle("DELETE /user/availability/{id}", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.AvailabilityHandler.Delete)))

	// Event Routes
	mux.Handle("POST /event", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.EventHandler.Create)))
	mux.Handle("GET /event", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.EventHandler.List)))
	mux.Handle("GET /event/count", config.AuthMiddleware.FlexibleAuth(http.HandlerFunc(config.EventHandler.Count)))
	mux.Handle("GET /event/mine", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.EventHandler.ListMine)))
	mux.Handle("PATCH /event/{id}/close", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.EventHandler.Close)))
	mux.Handle("PUT /event/{id}", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.EventHandler.Update)))
	mux.Handle("DELETE /event/{id}", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.EventHandler.Delete)))

	// Review Routes
	mux.Handle("POST /review/create", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ReviewHandler.Create)))
	mux.HandleFunc("GET /review/musician/{id}", config.ReviewHandler.ListForMusician)
	mux.HandleFunc("GET /review/average/{id}", config.ReviewHandler.AverageRating)
	mux.Handle("PUT /review/{id}", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ReviewHandler.Update)))
	mux.Handle("DELETE /review/{id}", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ReviewHandler.Delete)))
	mux.Handle("PATCH /review/{id}/reply", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ReviewHandler.Reply)))

	// Payment Routes
	mux.Handle("POST /user/payment/order", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.PaymentHandler.CreateOrder)))
	mux.Handle("POST /user/payment/capture", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.PaymentHandler.Capture)))
	mux.HandleFunc("POST /user/payment/webhook", config.PaymentHandler.Webhook)

	// Notification Routes
	mux.Handle("GET /notifications", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.List)))
	mux.Handle("PATCH /notifications/{id}/read", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkAsRead)))
	mux.Handle("PATCH /notifications/read-all", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkAllAsRead)))
	mux.Handle("GET /notifications/unread-count", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.UnreadCount)))
	mux.Handle("GET /ws", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.Subscribe)))

	return mux
}
