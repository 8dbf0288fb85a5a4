package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"milk-backend/config"
	"milk-backend/models"
	"milk-backend/realtime"
	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	broker *realtime.Broker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	public := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte("<html>milk</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(public, "app.js"), []byte("console.log(1)"), 0o644))

	log, _ := logtest.NewNullLogger()
	broker := realtime.NewBroker(nil, log)
	t.Cleanup(func() { broker.Close() })

	cfg := &config.Config{PublicDir: public, JWTSecret: "secret", TokenTTL: time.Hour}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	mirror := services.NewAccountMirror(db, log)

	r := SetupRouter(Deps{
		Config:       cfg,
		Log:          log,
		Tokens:       tokens,
		AuthLimiter:  utils.NewRateLimiter(1000, 1000),
		Hub:          realtime.NewHub(broker, log),
		Accounts:     services.NewAccountService(db, tokens, log),
		Ledger:       services.NewLedgerService(db, mirror, broker, time.UTC, log),
		Orders:       services.NewOrderService(db, broker, log),
		Reservations: services.NewReservationService(db, broker, nil, log),
		Promotions:   services.NewPromotionService(db, broker),
		Products:     services.NewProductService(db),
		Stats:        services.NewStatsService(db, time.Local),
	})
	return &testServer{router: r, db: db, broker: broker}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/auth/register", gin.H{"email": "Ala@Example.com", "password": "kawa", "fullName": "Ala"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["ok"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ala@example.com", user["email"])
	assert.Equal(t, "Ala", user["name"])
	milkID := user["milkId"].(string)
	assert.Len(t, milkID, 6)

	w, body = s.do(t, http.MethodPost, "/api/auth/register", gin.H{"email": "ala@example.com"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, body["ok"])

	w, _ = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "ala@example.com"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "ala@example.com", "password": "zle"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "ala@example.com", "password": "kawa"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := body["token"].(string)

	w, _ = s.do(t, http.MethodPost, "/api/milkpoints/adjust", gin.H{"milkId": milkID, "delta": 10, "text": "bonus"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body = s.do(t, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := body["user"].(map[string]any)
	assert.EqualValues(t, 10, me["points"])
	assert.Len(t, me["pointsHistory"], 1)

	w, _ = s.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = s.do(t, http.MethodPost, "/api/user/profile", gin.H{"fullName": "Ala K", "phone": "123"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ala K", body["user"].(map[string]any)["fullName"])
}

func TestLoginProvisionsPasswordlessAccount(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "nowy@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.DefaultDisplayName, body["user"].(map[string]any)["name"])
	assert.NotEmpty(t, body["token"])

	w, _ = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": ""}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMilkpointsEndpoints(t *testing.T) {
	s := newTestServer(t)
	events, cancel := s.broker.Subscribe(8)
	defer cancel()

	w, body := s.do(t, http.MethodPost, "/api/milkpoints/adjust", gin.H{"milkId": "123456", "delta": 10, "text": "bonus"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 10, body["points"])

	w, body = s.do(t, http.MethodPost, "/api/milkpoints/adjust", gin.H{"milkId": "123456", "delta": -3, "text": "redeem", "meta": gin.H{"till": 2}}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, body["points"])

	for _, delta := range []any{0, 1.5, "x", nil} {
		w, body = s.do(t, http.MethodPost, "/api/milkpoints/adjust", gin.H{"milkId": "123456", "delta": delta}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "delta %v", delta)
		assert.Equal(t, false, body["ok"])
	}
	w, _ = s.do(t, http.MethodPost, "/api/milkpoints/adjust", gin.H{"delta": 1}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/milkpoints/123456", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, body["points"])
	history := body["history"].([]any)
	require.Len(t, history, 2)
	assert.EqualValues(t, -3, history[0].(map[string]any)["delta"])

	w, _ = s.do(t, http.MethodGet, "/api/milkpoints/000000", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/milkpoints/123456/qr", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	var got []string
	for len(events) > 0 {
		got = append(got, (<-events).Name)
	}
	assert.Equal(t, []string{realtime.EventPointsUpdated, realtime.EventPointsUpdated}, got)
}

func TestPromotionEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/api/happy", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["happy"])

	_, body = s.do(t, http.MethodGet, "/api/data", nil, "")
	assert.Equal(t, map[string]any{"text": "", "active": false, "location": "all"}, body["happy"])

	w, _ = s.do(t, http.MethodPost, "/api/happy", gin.H{"text": "Happy hour", "active": true}, "")
	require.Equal(t, http.StatusOK, w.Code)

	_, body = s.do(t, http.MethodGet, "/api/data", nil, "")
	assert.Equal(t, map[string]any{"text": "Happy hour", "active": true, "location": "all"}, body["happy"])

	_, body = s.do(t, http.MethodGet, "/api/happy", nil, "")
	assert.Equal(t, "Happy hour", body["happy"].(map[string]any)["text"])
}

func TestReservationEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/rezerwacje", gin.H{
		"name": "Ala", "phone": 500600700, "date": "2024-06-01", "time": "18:00", "guests": 4,
		"user": gin.H{"email": "guest@example.com"},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reservation := body["reservation"].(map[string]any)
	assert.Equal(t, "4", reservation["guests"])
	assert.Equal(t, "500600700", reservation["phone"])
	assert.Equal(t, "app", reservation["source"])
	id := reservation["id"].(string)

	_, body = s.do(t, http.MethodGet, "/api/rezerwacje", nil, "")
	assert.Len(t, body["reservations"], 1)

	for i := 0; i < 2; i++ {
		w, body = s.do(t, http.MethodDelete, "/api/rezerwacje/"+id, nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["ok"])
	}

	_, body = s.do(t, http.MethodGet, "/api/rezerwacje", nil, "")
	assert.Empty(t, body["reservations"])
}

func TestOrderEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/orders", gin.H{
		"pickupTime": "12:00",
		"items":      []gin.H{{"title": "Latte", "qty": 2, "price": 14.5}},
		"user":       gin.H{"email": "Buyer@Example.com"},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := body["order"].(map[string]any)
	assert.EqualValues(t, 29, order["total"])
	assert.Equal(t, models.DefaultOrderStatus, order["status"])

	_, body = s.do(t, http.MethodGet, "/api/orders/my?email=buyer@example.com", nil, "")
	assert.Len(t, body["orders"], 1)

	_, body = s.do(t, http.MethodGet, "/api/orders/my", nil, "")
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, []any{}, body["orders"])
}

func TestStatsHealthAndProducts(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.db.Create(&models.Product{Title: "Latte"}).Error)
	log, _ := logtest.NewNullLogger()
	_, err := services.NewOrderService(s.db, s.broker, log).Create(context.Background(), &models.Order{})
	require.NoError(t, err)

	_, body := s.do(t, http.MethodGet, "/api/admin/stats", nil, "")
	assert.EqualValues(t, 1, body["orders"])
	assert.EqualValues(t, 1, body["ordersToday"])
	assert.EqualValues(t, 0, body["usersAll"])

	_, body = s.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, true, body["ok"])
	assert.NotZero(t, body["ts"])

	_, body = s.do(t, http.MethodGet, "/api/products", nil, "")
	assert.Len(t, body["products"], 1)
}

func TestStaticFallback(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/app.js", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "console.log")

	w, _ = s.do(t, http.MethodGet, "/konto/historia", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "milk")

	w, body := s.do(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["ok"])

	w, _ = s.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "milk_http_requests_total")
}
