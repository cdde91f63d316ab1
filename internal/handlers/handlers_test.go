package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventease/internal/database"
	apperrors "eventease/internal/errors"
	"eventease/internal/middleware"
	"eventease/internal/models"
	"eventease/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "0b0f8c6e-1d4a-4d5e-9f3a-2b7c8d9e0f11"
	testEventID = "6f1c7a52-3f9e-4d8a-9b1e-2c4d5e6f7a80"
	testTierID  = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

type fakeEvents struct {
	gotUser  string
	gotQuery models.ListEventsQuery
}

func (f *fakeEvents) List(ctx context.Context, userID string, q models.ListEventsQuery) *models.SearchResult {
	f.gotUser = userID
	f.gotQuery = q
	return &models.SearchResult{
		Events:        []models.Event{{ID: testEventID, Name: "Go Meetup"}},
		Registrations: []models.Registration{},
	}
}

type fakeRegistrar struct {
	err error
}

func (f *fakeRegistrar) Register(ctx context.Context, userID, eventID, ticketTypeID string) (*models.RegisterResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if ticketTypeID == "" {
		return nil, apperrors.ErrTicketTypeRequired
	}
	return &models.RegisterResult{
		PurchaseID:     "p-1",
		RegistrationID: "r-1",
		AmountPaid:     25,
		PaymentMethod:  models.GatewayPayment("stripe"),
	}, nil
}

func (f *fakeRegistrar) Unregister(ctx context.Context, userID, eventID string) (*models.UnregisterResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.UnregisterResult{RefundedAmount: 25, PaymentMethod: models.GatewayPayment("stripe"), PurchaseID: "p-1"}, nil
}

type fakeRegistrations struct{}

func (fakeRegistrations) ListForUser(ctx context.Context, userID string) (*models.RegistrationsResponse, error) {
	return &models.RegistrationsResponse{Registrations: []models.RegistrationDetail{}}, nil
}

type fakeCatalog struct {
	statsErr error
}

func (f fakeCatalog) Categories(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "c-1", Name: "Music"}}, nil
}

func (f fakeCatalog) EventStats(ctx context.Context, eventID string) (*models.EventStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &models.EventStats{EventID: eventID, RegistrationsCount: 3}, nil
}

func setupRouter(t *testing.T, h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	r := gin.New()

	// API routes
	api := r.Group("/api")
	api.Use(middleware.UserIdentity())
	{
		api.GET("/events", h.ListEvents)
		api.GET("/events/:id/stats", h.GetEventStats)
		api.GET("/categories", h.ListCategories)
		api.GET("/registrations", h.ListRegistrations)
		api.POST("/registrations", h.Register)
		api.DELETE("/registrations/:eventId", h.Unregister)
	}

	return r
}

func newTestHandlers(registrar *fakeRegistrar, catalog fakeCatalog) (*Handlers, *fakeEvents) {
	events := &fakeEvents{}
	return &Handlers{
		events:        events,
		registration:  registrar,
		registrations: fakeRegistrations{},
		catalog:       catalog,
	}, events
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, testUserID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListEvents(t *testing.T) {
	h, events := newTestHandlers(&fakeRegistrar{}, fakeCatalog{})
	r := setupRouter(t, h)

	w := do(r, "GET", "/api/events?query=jazz&filter=registered", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testUserID, events.gotUser)
	assert.Equal(t, "jazz", events.gotQuery.Query)
	assert.Equal(t, models.FilterRegistered, events.gotQuery.Filter)

	var response models.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Events, 1)
	assert.NotNil(t, response.Registrations)
}

func TestListEventsValidation(t *testing.T) {
	h, _ := newTestHandlers(&fakeRegistrar{}, fakeCatalog{})
	r := setupRouter(t, h)

	// Неизвестный фильтр
	w := do(r, "GET", "/api/events?filter=mine", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Без заголовка X-User-ID
	req, _ := http.NewRequest("GET", "/api/events", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister(t *testing.T) {
	h, _ := newTestHandlers(&fakeRegistrar{}, fakeCatalog{})
	r := setupRouter(t, h)

	w := do(r, "POST", "/api/registrations", models.RegisterRequest{EventID: testEventID, TicketTypeID: testTierID})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "p-1", response["purchaseId"])
	assert.Equal(t, "r-1", response["registrationId"])
	assert.Equal(t, 25.0, response["amountPaid"])
	assert.Equal(t, "stripe", response["paymentMethod"])
}

func TestRegisterValidation(t *testing.T) {
	h, _ := newTestHandlers(&fakeRegistrar{}, fakeCatalog{})
	r := setupRouter(t, h)

	w := do(r, "POST", "/api/registrations", map[string]string{"event_id": "42"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, "POST", "/api/registrations", models.RegisterRequest{EventID: testEventID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Ticket type is required for registration", response.Error)
}

func TestRegisterErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "already registered",
			err:      &database.StoreError{Message: "User is already registered for this event", Code: database.CodeUniqueViolation},
			wantCode: http.StatusConflict,
			wantBody: "User is already registered for this event",
		},
		{
			name:     "unknown ticket type",
			err:      &database.StoreError{Message: "Ticket type not found for this event", Code: database.CodeForeignKeyViolation},
			wantCode: http.StatusNotFound,
			wantBody: "Ticket type not found for this event",
		},
		{
			name:     "sold out",
			err:      &database.StoreError{Message: "Ticket type is sold out", Code: database.CodeCheckViolation},
			wantCode: http.StatusUnprocessableEntity,
			wantBody: "Ticket type is sold out",
		},
		{
			name:     "other store error",
			err:      &database.StoreError{Message: "Event has already started", Code: database.CodeRaiseException},
			wantCode: http.StatusBadRequest,
			wantBody: "Event has already started",
		},
		{
			name:     "in progress",
			err:      apperrors.ErrOperationInProgress,
			wantCode: http.StatusConflict,
			wantBody: apperrors.ErrOperationInProgress.Error(),
		},
		{
			name:     "unexpected",
			err:      errors.New("connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandlers(&fakeRegistrar{err: tt.err}, fakeCatalog{})
			r := setupRouter(t, h)

			w := do(r, "POST", "/api/registrations", models.RegisterRequest{EventID: testEventID, TicketTypeID: testTierID})

			assert.Equal(t, tt.wantCode, w.Code)
			var response models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantBody, response.Error)
		})
	}
}

func TestUnregister(t *testing.T) {
	h, _ := newTestHandlers(&fakeRegistrar{}, fakeCatalog{})
	r := setupRouter(t, h)

	w := do(r, "DELETE", "/api/registrations/"+testEventID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 25.0, response["refundedAmount"])

	w = do(r, "DELETE", "/api/registrations/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnregisterNotFound(t *testing.T) {
	storeErr := &database.StoreError{Message: "Registration not found", Code: database.CodeNoDataFound}
	h, _ := newTestHandlers(&fakeRegistrar{err: storeErr}, fakeCatalog{})
	r := setupRouter(t, h)

	w := do(r, "DELETE", "/api/registrations/"+testEventID, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRegistrations(t *testing.T) {
	h, _ := newTestHandlers(&fakeRegistrar{}, fakeCatalog{})
	r := setupRouter(t, h)

	w := do(r, "GET", "/api/registrations", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"registrations": []}`, w.Body.String())
}

func TestCatalog(t *testing.T) {
	h, _ := newTestHandlers(&fakeRegistrar{}, fakeCatalog{})
	r := setupRouter(t, h)

	w := do(r, "GET", "/api/categories", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Music")

	w = do(r, "GET", "/api/events/"+testEventID+"/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var stats models.EventStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.RegistrationsCount)
}

func TestEventStatsNotFound(t *testing.T) {
	h, _ := newTestHandlers(&fakeRegistrar{}, fakeCatalog{statsErr: apperrors.ErrEventNotFound})
	r := setupRouter(t, h)

	w := do(r, "GET", "/api/events/"+testEventID+"/stats", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
