package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sunsetCompanionAPI/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds everything needed to mount the HTTP surface.
type Router struct {
	Users         *UserHandler
	Sunsets       *SunsetHandler
	Streaks       *StreakHandler
	Uploads       *UploadHandler
	Notifications *NotificationHandler
	Webhooks      *WebhookHandler

	Auth    *middleware.Authenticator
	Limiter *middleware.RateLimiter
	DB      Pinger

	// Optional operational endpoints.
	Metrics     http.Handler
	MetricsUser string
	MetricsPass string
	Pprof       http.Handler
	PprofSecret string
	AssetsDir   string

	// Now overrides the clock of every handler when set.
	Now func() time.Time
}

func (rt *Router) setClock() {
	if rt.Now == nil {
		return
	}
	rt.Users.now = rt.Now
	rt.Sunsets.now = rt.Now
	rt.Streaks.now = rt.Now
	rt.Uploads.now = rt.Now
	rt.Notifications.now = rt.Now
	rt.Webhooks.now = rt.Now
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := rt.DB.Ping(ctx); err != nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "sunset-companion-api",
	})
}

func (rt *Router) Handler() *mux.Router {
	rt.setClock()

	r := mux.NewRouter()
	standardRouter := r.PathPrefix("/").Subrouter()

	if rt.Limiter != nil {
		standardRouter.Use(rt.Limiter.Middleware)
	}
	standardRouter.Use(middleware.MonitorMiddleware)

	if rt.Metrics != nil {
		standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(rt.MetricsUser, rt.MetricsPass)(rt.Metrics))
	}
	if rt.Pprof != nil {
		standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(rt.PprofSecret)(rt.Pprof))
	}
	if rt.AssetsDir != "" {
		fs := http.FileServer(http.Dir(rt.AssetsDir))
		standardRouter.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", fs))
	}

	standardRouter.HandleFunc("/health", rt.health).Methods("GET")
	standardRouter.HandleFunc("/webhooks/clerk", rt.Webhooks.HandleClerkWebhook).Methods("POST")

	api := standardRouter.PathPrefix("/api").Subrouter()

	api.HandleFunc("/register", rt.Users.Register).Methods("POST")
	api.HandleFunc("/login", rt.Users.Login).Methods("POST")
	api.HandleFunc("/logout", rt.Users.Logout).Methods("POST")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(rt.Auth.RequireUser)

	protected.HandleFunc("/me", rt.Users.GetProfile).Methods("GET")

	// static segments before {id}
	protected.HandleFunc("/sunsets/recent", rt.Sunsets.ListRecent).Methods("GET")
	protected.HandleFunc("/sunsets/recents", rt.Sunsets.ListRecent).Methods("GET")
	protected.HandleFunc("/sunsets", rt.Sunsets.ListOwn).Methods("GET")
	protected.HandleFunc("/sunsets", rt.Sunsets.Create).Methods("POST")
	protected.HandleFunc("/sunsets/{id}", rt.Sunsets.Get).Methods("GET")
	protected.HandleFunc("/sunsets/{id}", rt.Sunsets.Delete).Methods("DELETE")
	protected.HandleFunc("/sunsets/{id}/like", rt.Sunsets.ToggleLike).Methods("POST")
	protected.HandleFunc("/sunsets/{id}/comments", rt.Sunsets.ListComments).Methods("GET")
	protected.HandleFunc("/sunsets/{id}/comments", rt.Sunsets.AddComment).Methods("POST")

	protected.HandleFunc("/upload", rt.Uploads.Upload).Methods("POST")

	protected.HandleFunc("/streak", rt.Streaks.GetStreak).Methods("GET")
	protected.HandleFunc("/streak/status", rt.Streaks.GetStatus).Methods("GET")
	protected.HandleFunc("/streak/increment", rt.Streaks.Increment).Methods("POST")

	protected.HandleFunc("/notifications/register-device", rt.Notifications.RegisterDevice).Methods("POST")

	return r
}
