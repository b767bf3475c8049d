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
	"github.com/ukydev/vehicle-inventory/internal/db/dbtest"
	"github.com/ukydev/vehicle-inventory/internal/inventory"
	"github.com/ukydev/vehicle-inventory/internal/logging"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/session"
	"github.com/ukydev/vehicle-inventory/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testAnonKey = "anon-test-key"

type apiFixture struct {
	router    http.Handler
	auth      *auth.Service
	profiles  *dbtest.ProfileCollection
	vehicles  *dbtest.VehicleCollection
	tasks     *dbtest.TaskCollection
	arb       *dbtest.ArbRecordCollection
	messages  *dbtest.MessageCollection
	dropdowns *dbtest.DropdownCollection
}

func newAPI(t *testing.T, opts ...func(*RouterConfig)) *apiFixture {
	t.Helper()
	f := &apiFixture{
		auth:      auth.NewService("router-secret", time.Hour),
		profiles:  new(dbtest.ProfileCollection),
		vehicles:  new(dbtest.VehicleCollection),
		tasks:     new(dbtest.TaskCollection),
		arb:       new(dbtest.ArbRecordCollection),
		messages:  new(dbtest.MessageCollection),
		dropdowns: new(dbtest.DropdownCollection),
	}
	store := inventory.Store{
		Profiles:   f.profiles,
		Vehicles:   f.vehicles,
		Tasks:      f.tasks,
		ArbRecords: f.arb,
		Messages:   f.messages,
		Dropdowns:  f.dropdowns,
	}
	clock := func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	svc := inventory.NewService(store, f.auth, validation.New(validation.WithClock(clock)), logging.Discard())
	cfg := RouterConfig{
		Auth:      f.auth,
		Profiles:  f.profiles,
		Inventory: svc,
		AnonKey:   testAnonKey,
		Logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	f.router = NewRouter(cfg)
	return f
}

func (f *apiFixture) token(t *testing.T, role models.Role) (string, *models.Profile) {
	t.Helper()
	p := &models.Profile{ID: primitive.NewObjectID(), Username: string(role) + "1", Role: role, IsActive: true}
	token, err := f.auth.GenerateToken(p)
	require.NoError(t, err)
	return token, p
}

func (f *apiFixture) do(method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("apikey", testAnonKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndAPIKey(t *testing.T) {
	f := newAPI(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	req = httptest.NewRequest("GET", "/api/vehicles", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CreateVehicleCapitalizedEnums(t *testing.T) {
	f := newAPI(t)
	token, _ := f.token(t, models.RoleSeller)

	w := f.do("POST", "/api/vehicles", token, `{
		"make": "Toyota", "model": "Camry", "year": 2020,
		"purchase_date": "2026-01-15", "status": "Pending",
		"pickup_location": "Lot A", "title_status": "Absent", "arb_status": "absent"
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	fields := validation.Violations(resp.Details).Fields()
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "title_status")
	assert.Len(t, fields, 2)
	f.vehicles.AssertNotCalled(t, "InsertVehicle", mock.Anything, mock.Anything)
}

func TestRouter_CreateVehicle(t *testing.T) {
	f := newAPI(t)
	token, user := f.token(t, models.RoleSeller)
	f.vehicles.On("InsertVehicle", mock.Anything, mock.MatchedBy(func(v *models.Vehicle) bool {
		return v.Year == 2020 && *v.Odometer == 12500.5 && v.CreatedBy == user.ID.Hex()
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Vehicle).ID = primitive.NewObjectID()
	}).Return(nil)

	w := f.do("POST", "/api/vehicles", token, `{
		"make": "Toyota", "model": "Camry", "year": 2020, "odometer": 12500.5,
		"purchase_date": "2026-01-15", "status": "pending",
		"pickup_location": "Lot A", "title_status": "absent", "arb_status": "absent"
	}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	var v models.Vehicle
	decodeData(t, w, &v)
	assert.False(t, v.ID.IsZero())
	f.vehicles.AssertExpectations(t)
}

func TestRouter_FractionalYearRejected(t *testing.T) {
	f := newAPI(t)
	token, _ := f.token(t, models.RoleSeller)
	id := primitive.NewObjectID().Hex()

	w := f.do("PUT", "/api/vehicles/"+id, token, `{
		"make": "Toyota", "model": "Camry", "year": 2020.5,
		"purchase_date": "2026-01-15", "status": "pending",
		"pickup_location": "Lot A", "title_status": "absent", "arb_status": "absent"
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"year"`)
}

func TestRouter_ArbHistory(t *testing.T) {
	f := newAPI(t)
	token, _ := f.token(t, models.RoleTransporter)
	id := primitive.NewObjectID().Hex()

	t.Run("empty history", func(t *testing.T) {
		f.arb.On("FindArbHistory", mock.Anything, id).Return(nil, nil).Once()
		w := f.do("GET", "/api/vehicles/"+id+"/arb/history", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("no session", func(t *testing.T) {
		w := f.do("GET", "/api/vehicles/"+id+"/arb/history", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("backend failure", func(t *testing.T) {
		f.arb.On("FindArbHistory", mock.Anything, id).Return(nil, assert.AnError).Once()
		w := f.do("GET", "/api/vehicles/"+id+"/arb/history", token, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	})

	t.Run("transporter cannot append", func(t *testing.T) {
		w := f.do("POST", "/api/vehicles/"+id+"/arb", token, map[string]string{"notes": "x"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRouter_CheckImpersonation(t *testing.T) {
	f := newAPI(t)

	t.Run("no cookie", func(t *testing.T) {
		w := f.do("GET", "/api/users/check-impersonation", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"isImpersonating":false}`, w.Body.String())
	})

	t.Run("garbage cookie", func(t *testing.T) {
		w := f.do("GET", "/api/users/check-impersonation", "", nil, &http.Cookie{Name: session.MarkerCookie, Value: "junk"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"isImpersonating":false}`, w.Body.String())
	})
}

func TestRouter_ImpersonationRoundTrip(t *testing.T) {
	f := newAPI(t)
	adminToken, admin := f.token(t, models.RoleAdmin)
	target := &models.Profile{ID: primitive.NewObjectID(), Username: "seller9", Role: models.RoleSeller, IsActive: true}
	f.profiles.On("FindProfileByID", mock.Anything, target.ID.Hex()).Return(target, nil)
	f.profiles.On("FindProfileByID", mock.Anything, admin.ID.Hex()).Return(admin, nil)

	w := f.do("POST", "/api/users/"+target.ID.Hex()+"/impersonate", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var started models.LoginResponse
	decodeData(t, w, &started)
	assert.Equal(t, "seller9", started.User.Username)

	var marker *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.MarkerCookie {
			marker = c
		}
	}
	require.NotNil(t, marker)
	assert.True(t, marker.HttpOnly)

	w = f.do("GET", "/api/users/check-impersonation", "", nil, marker)
	assert.JSONEq(t, `{"isImpersonating":true,"adminId":"`+admin.ID.Hex()+`","adminUsername":"admin1"}`, w.Body.String())

	// Without the marker the seller session cannot impersonate anyone.
	w = f.do("POST", "/api/users/"+target.ID.Hex()+"/impersonate", started.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do("POST", "/api/users/stop-impersonation", started.Token, nil, marker)
	require.Equal(t, http.StatusOK, w.Code)
	var stopped models.LoginResponse
	decodeData(t, w, &stopped)
	claims, err := f.auth.ValidateToken(stopped.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID.Hex(), claims.UserID)

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == session.MarkerCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRouter_ForeignMarkerGrantsNothing(t *testing.T) {
	f := newAPI(t)
	sellerToken, _ := f.token(t, models.RoleSeller)
	admin1 := &models.Claims{UserID: primitive.NewObjectID().Hex(), Username: "admin1", Role: models.RoleAdmin}
	admin2 := primitive.NewObjectID().Hex()

	// A marker admin1 obtained while impersonating somebody else.
	marker, err := f.auth.GenerateImpersonationToken(admin1, primitive.NewObjectID().Hex())
	require.NoError(t, err)
	cookie := &http.Cookie{Name: session.MarkerCookie, Value: marker}

	markerCleared := func(w *httptest.ResponseRecorder) bool {
		for _, c := range w.Result().Cookies() {
			if c.Name == session.MarkerCookie && c.MaxAge < 0 {
				return true
			}
		}
		return false
	}

	t.Run("cannot impersonate", func(t *testing.T) {
		w := f.do("POST", "/api/users/"+admin2+"/impersonate", sellerToken, nil, cookie)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("cannot stop into the admin session", func(t *testing.T) {
		w := f.do("POST", "/api/users/stop-impersonation", sellerToken, nil, cookie)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NotContains(t, w.Body.String(), "token")
		assert.True(t, markerCleared(w))
	})

	f.profiles.AssertNotCalled(t, "FindProfileByID", mock.Anything, admin1.UserID)
}

func TestRouter_MarkerCookieSecureFlag(t *testing.T) {
	start := func(t *testing.T, f *apiFixture) *http.Cookie {
		t.Helper()
		adminToken, _ := f.token(t, models.RoleAdmin)
		target := &models.Profile{ID: primitive.NewObjectID(), Username: "seller9", Role: models.RoleSeller, IsActive: true}
		f.profiles.On("FindProfileByID", mock.Anything, target.ID.Hex()).Return(target, nil)

		w := f.do("POST", "/api/users/"+target.ID.Hex()+"/impersonate", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		for _, c := range w.Result().Cookies() {
			if c.Name == session.MarkerCookie {
				return c
			}
		}
		t.Fatal("no marker cookie")
		return nil
	}

	t.Run("plain http by default", func(t *testing.T) {
		assert.False(t, start(t, newAPI(t)).Secure)
	})

	t.Run("forced behind a tls proxy", func(t *testing.T) {
		f := newAPI(t, func(cfg *RouterConfig) { cfg.SecureCookies = true })
		assert.True(t, start(t, f).Secure)
	})
}

func TestRouter_DropdownSettings(t *testing.T) {
	f := newAPI(t)
	sellerToken, _ := f.token(t, models.RoleSeller)
	adminToken, _ := f.token(t, models.RoleAdmin)

	f.dropdowns.On("FindOptions", mock.Anything, "vehicle_make", true).Return([]models.DropdownSetting{
		{Label: "Ford", Value: "ford"},
	}, nil)
	w := f.do("GET", "/api/dropdown-settings?category=vehicle_make", sellerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"label":"Ford","value":"ford"}]}`, w.Body.String())

	w = f.do("GET", "/api/dropdown-settings?category=vehicle_make&active_only=maybe", sellerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do("GET", "/api/dropdown-settings", sellerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := map[string]any{"category": "vehicle_make", "label": "Audi", "value": "audi", "is_active": true}
	w = f.do("POST", "/api/dropdown-settings", sellerToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	f.dropdowns.On("InsertSetting", mock.Anything, mock.Anything).Return(nil)
	w = f.do("POST", "/api/dropdown-settings", adminToken, body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_TasksAndMessages(t *testing.T) {
	f := newAPI(t)
	token, user := f.token(t, models.RoleTransporter)

	f.tasks.On("FindTasks", mock.Anything, models.TaskFilters{Status: "pending", DateFrom: "2026-01-01"}).Return(nil, nil)
	w := f.do("GET", "/api/tasks?status=pending&date_from=2026-01-01", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())

	w = f.do("GET", "/api/tasks?colour=red", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.messages.On("CountUnread", mock.Anything, user.ID.Hex()).Return(int64(4), nil)
	w = f.do("GET", "/api/users/"+user.ID.Hex()+"/messages/unread-count", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"count":4}}`, w.Body.String())

	w = f.do("GET", "/api/users/someone-else/messages/unread-count", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	f.messages.On("InsertMessage", mock.Anything, mock.Anything).Return(nil)
	w = f.do("POST", "/api/messages", token, models.SendMessageRequest{RecipientID: "u2", Body: "arrived"})
	assert.Equal(t, http.StatusCreated, w.Code)

	f.messages.On("MarkRead", mock.Anything, "m1", user.ID.Hex()).Return(nil)
	w = f.do("POST", "/api/messages/m1/read", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
