package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/vehicle-inventory/internal/auth"
	"github.com/ukydev/vehicle-inventory/internal/db"
	"github.com/ukydev/vehicle-inventory/internal/db/dbtest"
	"github.com/ukydev/vehicle-inventory/internal/logging"
	"github.com/ukydev/vehicle-inventory/internal/middleware"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestAuthHandler_Login(t *testing.T) {
	authService := auth.NewService("handler-secret", time.Hour)

	passwordHash, err := authService.HashPassword("password123")
	require.NoError(t, err)
	user := &models.Profile{
		ID:           primitive.NewObjectID(),
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: passwordHash,
		Role:         models.RoleSeller,
		IsActive:     true,
	}

	login := func(handler *AuthHandler, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)
		return w
	}

	t.Run("successful login", func(t *testing.T) {
		profiles := new(dbtest.ProfileCollection)
		handler := NewAuthHandler(authService, profiles, logging.Discard())
		profiles.On("FindProfileByUsername", mock.Anything, "testuser").Return(user, nil)
		profiles.On("UpdateLastLogin", mock.Anything, user.ID.Hex()).Return(nil)

		w := login(handler, `{"username":"testuser","password":"password123"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.LoginResponse
		decodeData(t, w, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "testuser", resp.User.Username)
		assert.NotContains(t, w.Body.String(), "password_hash")
		profiles.AssertExpectations(t)
	})

	t.Run("last login failure does not fail login", func(t *testing.T) {
		profiles := new(dbtest.ProfileCollection)
		handler := NewAuthHandler(authService, profiles, logging.Discard())
		profiles.On("FindProfileByUsername", mock.Anything, "testuser").Return(user, nil)
		profiles.On("UpdateLastLogin", mock.Anything, user.ID.Hex()).Return(assert.AnError)

		w := login(handler, `{"username":"testuser","password":"password123"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		profiles := new(dbtest.ProfileCollection)
		handler := NewAuthHandler(authService, profiles, logging.Discard())
		profiles.On("FindProfileByUsername", mock.Anything, "testuser").Return(user, nil)

		w := login(handler, `{"username":"testuser","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		profiles := new(dbtest.ProfileCollection)
		handler := NewAuthHandler(authService, profiles, logging.Discard())
		profiles.On("FindProfileByUsername", mock.Anything, "ghost").Return(nil, db.ErrNotFound)

		w := login(handler, `{"username":"ghost","password":"password123"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		profiles := new(dbtest.ProfileCollection)
		handler := NewAuthHandler(authService, profiles, logging.Discard())
		inactive := *user
		inactive.IsActive = false
		profiles.On("FindProfileByUsername", mock.Anything, "testuser").Return(&inactive, nil)

		w := login(handler, `{"username":"testuser","password":"password123"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "deactivated")
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(dbtest.ProfileCollection), logging.Discard())
		assert.Equal(t, http.StatusBadRequest, login(handler, `{"username":"testuser"}`).Code)
		assert.Equal(t, http.StatusBadRequest, login(handler, `not json`).Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	authService := auth.NewService("handler-secret", time.Hour)

	register := func(handler *AuthHandler, req models.RegisterRequest) *httptest.ResponseRecorder {
		body, _ := json.Marshal(req)
		r := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		handler.Register(w, r)
		return w
	}
	valid := models.RegisterRequest{Username: "newuser", Email: "new@example.com", Password: "password123", Role: models.RoleTransporter}

	t.Run("successful registration", func(t *testing.T) {
		profiles := new(dbtest.ProfileCollection)
		handler := NewAuthHandler(authService, profiles, logging.Discard())
		profiles.On("FindProfileByUsername", mock.Anything, "newuser").Return(nil, db.ErrNotFound)
		profiles.On("FindProfileByEmail", mock.Anything, "new@example.com").Return(nil, db.ErrNotFound)
		profiles.On("InsertProfile", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
			return p.Username == "newuser" && p.IsActive && p.PasswordHash != "password123"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Profile).ID = primitive.NewObjectID()
		}).Return(nil)

		w := register(handler, valid)
		assert.Equal(t, http.StatusCreated, w.Code)

		var resp models.LoginResponse
		decodeData(t, w, &resp)
		claims, err := authService.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, models.RoleTransporter, claims.Role)
		profiles.AssertExpectations(t)
	})

	t.Run("username taken", func(t *testing.T) {
		profiles := new(dbtest.ProfileCollection)
		handler := NewAuthHandler(authService, profiles, logging.Discard())
		profiles.On("FindProfileByUsername", mock.Anything, "newuser").Return(&models.Profile{}, nil)

		assert.Equal(t, http.StatusConflict, register(handler, valid).Code)
	})

	t.Run("self-registered admin rejected", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(dbtest.ProfileCollection), logging.Discard())
		req := valid
		req.Role = models.RoleAdmin
		assert.Equal(t, http.StatusBadRequest, register(handler, req).Code)
	})

	t.Run("weak password", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(dbtest.ProfileCollection), logging.Discard())
		req := valid
		req.Password = "short"
		assert.Equal(t, http.StatusBadRequest, register(handler, req).Code)
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	authService := auth.NewService("handler-secret", time.Hour)
	profiles := new(dbtest.ProfileCollection)
	handler := NewAuthHandler(authService, profiles, logging.Discard())
	authMW := middleware.NewAuthMiddleware(authService)

	user := &models.Profile{ID: primitive.NewObjectID(), Username: "testuser", Role: models.RoleSeller}
	token, err := authService.GenerateToken(user)
	require.NoError(t, err)
	profiles.On("FindProfileByID", mock.Anything, user.ID.Hex()).Return(user, nil)

	req := httptest.NewRequest("GET", "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authMW.Authenticate(http.HandlerFunc(handler.GetProfile)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got models.Profile
	decodeData(t, w, &got)
	assert.Equal(t, "testuser", got.Username)

	w = httptest.NewRecorder()
	handler.GetProfile(w, httptest.NewRequest("GET", "/api/auth/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
