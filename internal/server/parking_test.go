package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	checkoutservice "github.com/nlhtungg/parking-lot/internal/checkout/service"
	"github.com/nlhtungg/parking-lot/internal/clock"
	"github.com/nlhtungg/parking-lot/internal/config"
	feeconfigdomain "github.com/nlhtungg/parking-lot/internal/feeconfig/domain"
	feeconfigrepo "github.com/nlhtungg/parking-lot/internal/feeconfig/repository"
	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
	lotrepo "github.com/nlhtungg/parking-lot/internal/lot/repository"
	lotservice "github.com/nlhtungg/parking-lot/internal/lot/service"
	paymentdomain "github.com/nlhtungg/parking-lot/internal/payment/domain"
	paymentrepo "github.com/nlhtungg/parking-lot/internal/payment/repository"
	paymentservice "github.com/nlhtungg/parking-lot/internal/payment/service"
	sessiondomain "github.com/nlhtungg/parking-lot/internal/session/domain"
	sessionrepo "github.com/nlhtungg/parking-lot/internal/session/repository"
	sessionservice "github.com/nlhtungg/parking-lot/internal/session/service"
	subscriptiondomain "github.com/nlhtungg/parking-lot/internal/subscription/domain"
	subscriptionrepo "github.com/nlhtungg/parking-lot/internal/subscription/repository"
	subscriptionservice "github.com/nlhtungg/parking-lot/internal/subscription/service"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	node   *snowflake.Node
	lot    lotdomain.ParkingLot
}

func newTestEnv(t *testing.T, redisAddr string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&lotdomain.ParkingLot{},
		&sessiondomain.ParkingSession{},
		&subscriptiondomain.MonthlySub{},
		&feeconfigdomain.FeeConfig{},
		&paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()

	lotRepo := lotrepo.Provide(db)
	feeRepo := feeconfigrepo.Provide(db)

	checkoutSvc := checkoutservice.New(checkoutservice.Params{
		DB:            db,
		Log:           logger,
		GenID:         node,
		Clock:         clock.New(),
		LotSvc:        lotservice.New(lotservice.Params{DB: db, Log: logger, Repo: lotRepo}),
		SessionSvc:    sessionservice.New(sessionservice.Params{DB: db, Log: logger, Repo: sessionrepo.Provide(db)}),
		SubSvc:        subscriptionservice.New(subscriptionservice.Params{DB: db, Log: logger, Repo: subscriptionrepo.Provide(db)}),
		FeeConfigRepo: feeRepo,
		PaymentSvc:    paymentservice.New(paymentservice.Params{DB: db, Log: logger, Repo: paymentrepo.Provide(db)}),
	})

	idem, err := NewIdempotencyStore(config.Config{
		Redis: config.RedisConfig{Addr: redisAddr},
	}, logger)
	require.NoError(t, err)

	registry := NewRegistry()
	srv := NewServer(Params{
		Log:         logger,
		DB:          db,
		CheckoutSvc: checkoutSvc,
		Idem:        idem,
		Metrics:     NewMetrics(registry),
		Registry:    registry,
	})

	lot := lotdomain.ParkingLot{
		ID:           node.Generate(),
		Name:         "Central Lot",
		CarCapacity:  5,
		BikeCapacity: 5,
	}
	require.NoError(t, db.Create(&lot).Error)

	fee := feeconfigdomain.FeeConfig{
		ID:          node.Generate(),
		TicketType:  sessiondomain.TicketTypeDaily,
		VehicleType: lotdomain.VehicleTypeCar,
		ServiceFee:  20000,
		PenaltyFee:  50000,
	}
	require.NoError(t, db.Create(&fee).Error)

	return &testEnv{
		router: srv.Router(config.Config{Server: config.ServerConfig{Mode: "test"}}),
		db:     db,
		node:   node,
		lot:    lot,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
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
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func (e *testEnv) checkIn(t *testing.T, plate string) map[string]any {
	t.Helper()
	w, resp := e.do(t, http.MethodPost, "/employee/parking/entry", gin.H{
		"lot_id":        e.lot.ID.String(),
		"license_plate": plate,
		"vehicle_type":  "car",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return resp["data"].(map[string]any)
}

func TestCheckInEndpoint(t *testing.T) {
	e := newTestEnv(t, "")

	w, resp := e.do(t, http.MethodPost, "/employee/parking/entry", gin.H{
		"lot_id":        e.lot.ID.String(),
		"license_plate": "ABC-123",
		"vehicle_type":  "CAR",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, "ABC-123", data["license_plate"])
	assert.Equal(t, "car", data["vehicle_type"])
	assert.NotEmpty(t, data["ticket_code"])
}

func TestCheckInEndpointValidation(t *testing.T) {
	e := newTestEnv(t, "")

	w, resp := e.do(t, http.MethodPost, "/employee/parking/entry", gin.H{
		"license_plate": "ABC-123",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, false, resp["success"])

	w, _ = e.do(t, http.MethodPost, "/employee/parking/entry", gin.H{
		"lot_id":        e.lot.ID.String(),
		"license_plate": "bad plate!",
		"vehicle_type":  "car",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCheckInEndpointUnknownLot(t *testing.T) {
	e := newTestEnv(t, "")

	w, _ := e.do(t, http.MethodPost, "/employee/parking/entry", gin.H{
		"lot_id":        e.node.Generate().String(),
		"license_plate": "ABC-123",
		"vehicle_type":  "car",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckInEndpointDuplicate(t *testing.T) {
	e := newTestEnv(t, "")
	e.checkIn(t, "ABC-123")

	w, resp := e.do(t, http.MethodPost, "/employee/parking/entry", gin.H{
		"lot_id":        e.lot.ID.String(),
		"license_plate": "ABC-123",
		"vehicle_type":  "car",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["message"], "active session")
}

func TestCheckoutFlowEndpoints(t *testing.T) {
	e := newTestEnv(t, "")
	data := e.checkIn(t, "ABC-123")
	sessionID := data["session_id"].(string)

	w, resp := e.do(t, http.MethodGet, "/employee/parking/exit/"+sessionID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	quote := resp["data"].(map[string]any)
	assert.Equal(t, "PENDING", quote["status"])
	assert.Equal(t, float64(20000), quote["amount"])
	paymentID := quote["payment_id"].(string)

	w, resp = e.do(t, http.MethodPost, "/employee/parking/exit/confirm", gin.H{
		"payment_id":     paymentID,
		"payment_method": "CASH",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	receipt := resp["data"].(map[string]any)
	payment := receipt["payment"].(map[string]any)
	assert.Equal(t, "CASH", payment["method"])
	session := receipt["session"].(map[string]any)
	assert.NotNil(t, session["checked_out_at"])

	// Second confirm is a state conflict.
	w, resp = e.do(t, http.MethodPost, "/employee/parking/exit/confirm", gin.H{
		"payment_id":     paymentID,
		"payment_method": "CASH",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestConfirmEndpointMethodValidation(t *testing.T) {
	e := newTestEnv(t, "")
	data := e.checkIn(t, "ABC-123")
	sessionID := data["session_id"].(string)

	_, resp := e.do(t, http.MethodGet, "/employee/parking/exit/"+sessionID, nil, nil)
	quote := resp["data"].(map[string]any)
	paymentID := quote["payment_id"].(string)

	// Methods are case-sensitive exact matches.
	w, _ := e.do(t, http.MethodPost, "/employee/parking/exit/confirm", gin.H{
		"payment_id":     paymentID,
		"payment_method": "cash",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = e.do(t, http.MethodPost, "/employee/parking/exit/confirm", gin.H{
		"payment_id": paymentID,
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestActiveSessionsEndpoint(t *testing.T) {
	e := newTestEnv(t, "")

	manager := e.node.Generate()
	require.NoError(t, e.db.Model(&lotdomain.ParkingLot{}).
		Where("id = ?", e.lot.ID).
		Update("manager_id", manager).Error)
	e.checkIn(t, "ABC-123")

	w, resp := e.do(t, http.MethodGet, "/employee/parking-sessions", nil, map[string]string{
		"X-Employee-ID": manager.String(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	assert.Equal(t, "Central Lot", data["lot_name"])
	assert.Len(t, data["sessions"].([]any), 1)

	// No employee header means no managed lot to resolve.
	w, _ = e.do(t, http.MethodGet, "/employee/parking-sessions", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirmIdempotencyKeyReplaysFirstResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	e := newTestEnv(t, mr.Addr())

	data := e.checkIn(t, "ABC-123")
	sessionID := data["session_id"].(string)
	_, resp := e.do(t, http.MethodGet, "/employee/parking/exit/"+sessionID, nil, nil)
	quote := resp["data"].(map[string]any)
	paymentID := quote["payment_id"].(string)

	headers := map[string]string{"Idempotency-Key": "confirm-abc-123"}
	body := gin.H{"payment_id": paymentID, "payment_method": "CARD"}

	w1, resp1 := e.do(t, http.MethodPost, "/employee/parking/exit/confirm", body, headers)
	require.Equal(t, http.StatusOK, w1.Code)

	// Same key replays the stored response instead of failing on the
	// already-finalized payment.
	w2, resp2 := e.do(t, http.MethodPost, "/employee/parking/exit/confirm", body, headers)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, resp1, resp2)

	// A different key hits the real state machine and conflicts.
	w3, _ := e.do(t, http.MethodPost, "/employee/parking/exit/confirm", body, map[string]string{
		"Idempotency-Key": "confirm-other",
	})
	assert.Equal(t, http.StatusBadRequest, w3.Code)
}

func TestHealthAndReadiness(t *testing.T) {
	e := newTestEnv(t, "")

	w, _ := e.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
