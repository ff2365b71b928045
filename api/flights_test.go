package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/Domenick1991/flightrebooking/internal/service/rebooking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFlightUseCase is a mock implementation of catalog.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	flights := []domain.Flight{
		testFlight("FR100", "08:00"),
		testFlight("FR101", "08:30"),
	}
	mockService.On("List", c.Request.Context()).Return(flights, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []rebooking.FlightSummary
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 2)
	assert.Equal(t, "FR100", response[0].FlightNumber)
	assert.Equal(t, flights[1].ID.String(), response[1].FlightID)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	flight := testFlight("FR100", "08:00")
	c.Params = gin.Params{{Key: "id", Value: flight.ID.String()}}
	c.Request = httptest.NewRequest("GET", "/flights/"+flight.ID.String(), nil)

	mockService.On("GetByID", c.Request.Context(), flight.ID).Return(&flight, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response rebooking.FlightSummary
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, flight.ID.String(), response.FlightID)
	assert.Equal(t, "AMS", response.Origin)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_get_invalidID(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	c.Request = httptest.NewRequest("GET", "/flights/not-a-uuid", nil)

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestFlightHandler_get_notFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	id := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	c.Request = httptest.NewRequest("GET", "/flights/"+id.String(), nil)

	mockService.On("GetByID", c.Request.Context(), id).Return(nil, domain.ErrFlightNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}
