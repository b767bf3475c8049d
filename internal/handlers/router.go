package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/auth"
	"github.com/ukydev/vehicle-inventory/internal/db"
	"github.com/ukydev/vehicle-inventory/internal/inventory"
	"github.com/ukydev/vehicle-inventory/internal/middleware"
	"github.com/ukydev/vehicle-inventory/internal/models"
)

// RouterConfig holds what the HTTP router needs.
type RouterConfig struct {
	Auth      *auth.Service
	Profiles  db.ProfileCollection
	Inventory *inventory.Service
	AnonKey   string
	MarkerTTL time.Duration
	Logger    log.FieldLogger

	// RateLimit is the per-client request budget per RateWindow. Zero
	// disables rate limiting.
	RateLimit  int
	RateWindow time.Duration
	// TrustProxy keys rate limiting on X-Forwarded-For. Set it only behind
	// a proxy that overwrites the header.
	TrustProxy bool

	// SecureCookies marks the impersonation cookie Secure even when TLS is
	// terminated in front of the server.
	SecureCookies bool
}

// NewRouter builds the API handler with its middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Profiles, cfg.Logger)
	inv := NewInventoryHandler(cfg.Inventory, cfg.MarkerTTL, cfg.SecureCookies)
	authMW := middleware.NewAuthMiddleware(cfg.Auth)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", Health)

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/profile", authHandler.GetProfile)

	mux.HandleFunc("GET /api/vehicles", inv.ListVehicles)
	mux.HandleFunc("POST /api/vehicles", inv.CreateVehicle)
	mux.HandleFunc("GET /api/vehicles/{id}", inv.GetVehicle)
	mux.HandleFunc("PUT /api/vehicles/{id}", inv.UpdateVehicle)
	mux.HandleFunc("GET /api/vehicles/{id}/arb/history", inv.ArbHistory)
	mux.HandleFunc("POST /api/vehicles/{id}/arb", inv.CreateArbRecord)

	mux.HandleFunc("GET /api/tasks", inv.ListTasks)
	mux.HandleFunc("POST /api/tasks", inv.CreateTask)
	mux.HandleFunc("PUT /api/tasks/{id}", inv.UpdateTask)

	mux.HandleFunc("GET /api/users/check-impersonation", inv.CheckImpersonation)
	mux.HandleFunc("POST /api/users/{id}/impersonate", inv.StartImpersonation)
	mux.HandleFunc("POST /api/users/stop-impersonation", inv.StopImpersonation)
	mux.HandleFunc("GET /api/users/{id}/messages/unread-count", inv.UnreadCount)

	mux.HandleFunc("GET /api/dropdown-settings", inv.DropdownOptions)
	mux.Handle("POST /api/dropdown-settings",
		authMW.RequirePermission(models.PermManageSettings)(http.HandlerFunc(inv.CreateDropdownSetting)))

	mux.HandleFunc("POST /api/messages", inv.SendMessage)
	mux.HandleFunc("POST /api/messages/{id}/read", inv.MarkMessageRead)

	var h http.Handler = authMW.Authenticate(mux)
	if cfg.RateLimit > 0 {
		h = middleware.NewRateLimitMiddleware(cfg.TrustProxy).RateLimit(cfg.RateLimit, cfg.RateWindow)(h)
	}
	h = middleware.RequireAPIKey(cfg.AnonKey)(h)
	return middleware.RequestLogger(cfg.Logger)(h)
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
