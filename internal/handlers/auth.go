package handlers

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/auth"
	"github.com/ukydev/vehicle-inventory/internal/db"
	"github.com/ukydev/vehicle-inventory/internal/middleware"
	"github.com/ukydev/vehicle-inventory/internal/models"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService       *auth.Service
	profileCollection db.ProfileCollection
	log               log.FieldLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, profileCollection db.ProfileCollection, logger log.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		profileCollection: profileCollection,
		log:               logger,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if !decodeJSON(w, r, &loginReq) {
		return
	}

	// Validate input
	loginReq.Username = strings.TrimSpace(loginReq.Username)
	if loginReq.Username == "" || loginReq.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	profile, err := h.profileCollection.FindProfileByUsername(r.Context(), loginReq.Username)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			h.log.WithError(err).Error("Failed to look up profile")
		}
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// Check if user is active
	if !profile.IsActive {
		writeError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	// Verify password
	if !h.authService.CheckPassword(loginReq.Password, profile.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.authService.GenerateToken(profile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// A failed last-login update does not fail the login
	if err := h.profileCollection.UpdateLastLogin(r.Context(), profile.ID.Hex()); err != nil {
		h.log.WithError(err).WithField("user_id", profile.ID.Hex()).Warn("Failed to update last login")
	}

	writeData(w, http.StatusOK, models.LoginResponse{Token: token, User: *profile})
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if !decodeJSON(w, r, &registerReq) {
		return
	}
	registerReq.Username = strings.TrimSpace(registerReq.Username)
	registerReq.Email = strings.TrimSpace(registerReq.Email)

	// Validate input
	if err := h.authService.ValidateUsername(registerReq.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if registerReq.Role == "" {
		registerReq.Role = models.RoleSeller
	}
	// Admins are created by other admins, never by self-registration
	if !models.IsValidRole(registerReq.Role) || registerReq.Role == models.RoleAdmin {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	// Check if username already exists
	if _, err := h.profileCollection.FindProfileByUsername(r.Context(), registerReq.Username); err == nil {
		writeError(w, http.StatusConflict, "Username already exists")
		return
	}

	// Check if email already exists
	if _, err := h.profileCollection.FindProfileByEmail(r.Context(), registerReq.Email); err == nil {
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	profile := &models.Profile{
		Username:     registerReq.Username,
		Email:        registerReq.Email,
		PasswordHash: passwordHash,
		Role:         registerReq.Role,
		FullName:     strings.TrimSpace(registerReq.FullName),
		IsActive:     true,
	}
	if err := h.profileCollection.InsertProfile(r.Context(), profile); err != nil {
		h.log.WithError(err).WithField("username", profile.Username).Error("Failed to create profile")
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := h.authService.GenerateToken(profile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeData(w, http.StatusCreated, models.LoginResponse{Token: token, User: *profile})
}

// GetProfile returns the effective user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	profile, err := h.profileCollection.FindProfileByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeData(w, http.StatusOK, profile)
}
