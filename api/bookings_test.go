package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/Domenick1991/flightrebooking/internal/errs"
	"github.com/Domenick1991/flightrebooking/internal/service/rebooking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRebookingUseCase is a mock implementation of rebooking.RebookingUseCase
type MockRebookingUseCase struct {
	mock.Mock
}

func (m *MockRebookingUseCase) GetBooking(ctx context.Context, reference string) (*domain.BookingDetails, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingDetails), args.Error(1)
}

func (m *MockRebookingUseCase) GetRebookingOptions(ctx context.Context, reference string) (*rebooking.OptionsResponse, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rebooking.OptionsResponse), args.Error(1)
}

func (m *MockRebookingUseCase) Rebook(ctx context.Context, input rebooking.RebookInput) (*rebooking.RebookResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rebooking.RebookResult), args.Error(1)
}

func testFlight(number, clock string) domain.Flight {
	departure, _ := time.Parse(time.RFC3339, "2026-06-15T"+clock+":00Z")
	return domain.Flight{
		ID:                 uuid.New(),
		FlightNumber:       number,
		Origin:             "AMS",
		Destination:        "BCN",
		ScheduledDeparture: departure,
	}
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	original := testFlight("FR100", "08:00")
	details := &domain.BookingDetails{
		Booking: domain.Booking{
			ID:               uuid.New(),
			Reference:        "BK-001",
			Status:           domain.BookingStatusDisrupted,
			PassengerName:    "Alex Fisher",
			OriginalFlightID: original.ID,
			Version:          4,
		},
		OriginalFlight: original,
		Disruption: &domain.Disruption{
			Type:       domain.DisruptionTypeCancellation,
			ReasonCode: "WX01",
			OccurredAt: original.ScheduledDeparture.Add(-time.Hour),
		},
	}

	c.Params = gin.Params{{Key: "ref", Value: "BK-001"}}
	c.Request = httptest.NewRequest("GET", "/bookings/BK-001", nil)

	mockService.On("GetBooking", c.Request.Context(), "BK-001").Return(details, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"4"`, w.Header().Get("ETag"))

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "BK-001", response.Reference)
	assert.Equal(t, string(domain.BookingStatusDisrupted), response.Status)
	assert.Equal(t, int64(4), response.Version)
	assert.Equal(t, original.ID.String(), response.OriginalFlight.FlightID)
	assert.NotNil(t, response.Disruption)
	assert.Equal(t, "WX01", response.Disruption.ReasonCode)
	assert.Nil(t, response.RebookedFlight)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_invalidReference(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "ref", Value: "bk"}}
	c.Request = httptest.NewRequest("GET", "/bookings/bk", nil)

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetBooking", mock.Anything, mock.Anything)
}

func TestBookingHandler_get_notFound(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "ref", Value: "BK-404"}}
	c.Request = httptest.NewRequest("GET", "/bookings/BK-404", nil)

	mockService.On("GetBooking", c.Request.Context(), "BK-404").Return(nil, domain.ErrBookingNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var p problem
	err := json.Unmarshal(w.Body.Bytes(), &p)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, p.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_options(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "ref", Value: "BK-001"}}
	c.Request = httptest.NewRequest("GET", "/bookings/BK-001/rebooking-options", nil)

	candidate := testFlight("FR101", "08:30")
	options := &rebooking.OptionsResponse{
		BookingReference: "BK-001",
		GeneratedAt:      time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
		Options: []rebooking.Option{
			{Flight: rebooking.NewFlightSummary(candidate), Score: 108, Reason: "Same day, similar departure time, direct flight"},
		},
	}

	mockService.On("GetRebookingOptions", c.Request.Context(), "BK-001").Return(options, nil)

	handler.options(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response rebooking.OptionsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "BK-001", response.BookingReference)
	assert.Len(t, response.Options, 1)
	assert.Equal(t, 108, response.Options[0].Score)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_options_notEligible(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "ref", Value: "BK-001"}}
	c.Request = httptest.NewRequest("GET", "/bookings/BK-001/rebooking-options", nil)

	mockService.On("GetRebookingOptions", c.Request.Context(), "BK-001").Return(nil, domain.ErrNotEligible)

	handler.options(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func rebookTestContext(t *testing.T, ref string, body interface{}, headers map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	c.Params = gin.Params{{Key: "ref", Value: ref}}
	c.Request = httptest.NewRequest("POST", "/bookings/"+ref+"/rebook", reader)
	c.Request.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c, w
}

func TestBookingHandler_rebook(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)
	gin.SetMode(gin.TestMode)

	key := uuid.New()
	selected := testFlight("FR102", "10:00")
	c, w := rebookTestContext(t, "BK-001",
		rebookRequest{SelectedFlightID: selected.ID.String()},
		map[string]string{"Idempotency-Key": key.String()})

	result := &rebooking.RebookResult{
		Response: rebooking.RebookResponse{
			BookingReference: "BK-001",
			Status:           string(domain.BookingStatusRebooked),
			NewFlight:        rebooking.NewFlightSummary(selected),
			RebookedAt:       time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
		},
		Replay: false,
	}

	mockService.On("Rebook", c.Request.Context(), rebooking.RebookInput{
		Reference:        "BK-001",
		SelectedFlightID: selected.ID.String(),
		IdempotencyKey:   key,
	}).Return(result, nil)

	handler.rebook(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response rebooking.RebookResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusRebooked), response.Status)
	assert.Equal(t, selected.ID.String(), response.NewFlight.FlightID)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_rebook_replay(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)
	gin.SetMode(gin.TestMode)

	key := uuid.New()
	selected := testFlight("FR102", "10:00")
	c, w := rebookTestContext(t, "BK-001",
		rebookRequest{SelectedFlightID: selected.ID.String()},
		map[string]string{"Idempotency-Key": key.String()})

	result := &rebooking.RebookResult{
		Response: rebooking.RebookResponse{
			BookingReference: "BK-001",
			Status:           string(domain.BookingStatusRebooked),
			NewFlight:        rebooking.NewFlightSummary(selected),
		},
		Replay: true,
	}
	mockService.On("Rebook", c.Request.Context(), mock.Anything).Return(result, nil)

	handler.rebook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_rebook_missingIdempotencyKey(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)
	gin.SetMode(gin.TestMode)

	c, w := rebookTestContext(t, "BK-001",
		rebookRequest{SelectedFlightID: uuid.NewString()}, nil)

	handler.rebook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Rebook", mock.Anything, mock.Anything)
}

func TestBookingHandler_rebook_malformedIdempotencyKey(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)
	gin.SetMode(gin.TestMode)

	c, w := rebookTestContext(t, "BK-001",
		rebookRequest{SelectedFlightID: uuid.NewString()},
		map[string]string{"Idempotency-Key": "not-a-uuid"})

	handler.rebook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Rebook", mock.Anything, mock.Anything)
}

func TestBookingHandler_rebook_malformedIfMatch(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)
	gin.SetMode(gin.TestMode)

	for _, ifMatch := range []string{"abc", `"-1"`, `"1.5"`} {
		c, w := rebookTestContext(t, "BK-001",
			rebookRequest{SelectedFlightID: uuid.NewString()},
			map[string]string{"Idempotency-Key": uuid.NewString(), "If-Match": ifMatch})

		handler.rebook(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, "If-Match %q", ifMatch)
	}
	mockService.AssertNotCalled(t, "Rebook", mock.Anything, mock.Anything)
}

func TestBookingHandler_rebook_ifMatchPassedToService(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)
	gin.SetMode(gin.TestMode)

	key := uuid.New()
	selected := uuid.NewString()
	c, w := rebookTestContext(t, "BK-001",
		rebookRequest{SelectedFlightID: selected},
		map[string]string{"Idempotency-Key": key.String(), "If-Match": `"7"`})

	version := int64(7)
	result := &rebooking.RebookResult{Response: rebooking.RebookResponse{BookingReference: "BK-001"}}
	mockService.On("Rebook", c.Request.Context(), rebooking.RebookInput{
		Reference:        "BK-001",
		SelectedFlightID: selected,
		IdempotencyKey:   key,
		ExpectedVersion:  &version,
	}).Return(result, nil)

	handler.rebook(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_rebook_missingBody(t *testing.T) {
	mockService := &MockRebookingUseCase{}
	handler := NewBookingHandler(mockService)
	gin.SetMode(gin.TestMode)

	c, w := rebookTestContext(t, "BK-001", nil,
		map[string]string{"Idempotency-Key": uuid.NewString()})

	handler.rebook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Rebook", mock.Anything, mock.Anything)
}

func TestBookingHandler_rebook_errorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"booking not found", domain.ErrBookingNotFound, http.StatusNotFound},
		{"not eligible", domain.ErrNotEligible, http.StatusConflict},
		{"already rebooked", domain.ErrAlreadyRebooked, http.StatusConflict},
		{"version conflict", domain.ErrVersionConflict, http.StatusConflict},
		{"invalid selection", domain.ErrInvalidFlightSelection, http.StatusBadRequest},
		{"key reused", domain.ErrIdempotencyKeyReused, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockRebookingUseCase{}
			handler := NewBookingHandler(mockService)
			gin.SetMode(gin.TestMode)

			c, w := rebookTestContext(t, "BK-001",
				rebookRequest{SelectedFlightID: uuid.NewString()},
				map[string]string{"Idempotency-Key": uuid.NewString()})

			// Marked with detail, the way the engine actually raises failures;
			// the mapping must not depend on receiving a bare sentinel.
			mockService.On("Rebook", c.Request.Context(), mock.Anything).
				Return(nil, errs.Mark(errs.Newf("engine detail for %s", tt.name), tt.err))

			handler.rebook(c)

			assert.Equal(t, tt.wantStatus, w.Code)

			var p problem
			err := json.Unmarshal(w.Body.Bytes(), &p)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, p.Status)
		})
	}
}
