package api

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightrebooking/internal/service/rebooking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var bookingRefPattern = regexp.MustCompile(`^[A-Z0-9-]{3,20}$`)

const (
	idempotencyKeyMessage = "Idempotency-Key header is required and must be a valid UUID"
	ifMatchMessage        = "If-Match header must be a valid ETag (quoted version number)"
	bookingRefMessage     = "Booking reference must be 3-20 alphanumeric characters or hyphens"
)

type BookingHandler struct {
	service rebooking.RebookingUseCase
}

type rebookRequest struct {
	SelectedFlightID string `json:"selected_flight_id" binding:"required"`
}

type disruptionResponse struct {
	Type              string    `json:"type"`
	ReasonCode        string    `json:"reason_code"`
	ReasonDescription string    `json:"reason_description"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type bookingResponse struct {
	Reference      string                   `json:"reference"`
	Status         string                   `json:"status"`
	PassengerName  string                   `json:"passenger_name"`
	OriginalFlight rebooking.FlightSummary  `json:"original_flight"`
	RebookedFlight *rebooking.FlightSummary `json:"rebooked_flight,omitempty"`
	Disruption     *disruptionResponse      `json:"disruption,omitempty"`
	Version        int64                    `json:"version"`
}

func NewBookingHandler(service rebooking.RebookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/:ref", h.get)
	router.GET("/:ref/rebooking-options", h.options)
	router.POST("/:ref/rebook", h.rebook)
}

func (h *BookingHandler) get(c *gin.Context) {
	ref, ok := bookingRef(c)
	if !ok {
		return
	}

	details, err := h.service.GetBooking(c.Request.Context(), ref)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := bookingResponse{
		Reference:      details.Reference,
		Status:         string(details.Status),
		PassengerName:  details.PassengerName,
		OriginalFlight: rebooking.NewFlightSummary(details.OriginalFlight),
		Version:        details.Version,
	}
	if details.RebookedFlight != nil {
		summary := rebooking.NewFlightSummary(*details.RebookedFlight)
		resp.RebookedFlight = &summary
	}
	if details.Disruption != nil {
		resp.Disruption = &disruptionResponse{
			Type:              string(details.Disruption.Type),
			ReasonCode:        details.Disruption.ReasonCode,
			ReasonDescription: details.Disruption.ReasonDescription,
			OccurredAt:        details.Disruption.OccurredAt,
		}
	}

	c.Header("ETag", fmt.Sprintf("%q", strconv.FormatInt(details.Version, 10)))
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) options(c *gin.Context) {
	ref, ok := bookingRef(c)
	if !ok {
		return
	}

	options, err := h.service.GetRebookingOptions(c.Request.Context(), ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (h *BookingHandler) rebook(c *gin.Context) {
	ref, ok := bookingRef(c)
	if !ok {
		return
	}

	keyHeader := c.GetHeader("Idempotency-Key")
	if strings.TrimSpace(keyHeader) == "" {
		writeProblem(c, http.StatusBadRequest, "Bad Request", idempotencyKeyMessage)
		return
	}
	key, err := uuid.Parse(keyHeader)
	if err != nil {
		writeProblem(c, http.StatusBadRequest, "Bad Request", idempotencyKeyMessage)
		return
	}

	// Malformed If-Match is rejected rather than ignored: silently dropping
	// the token would defeat the concurrency check the client asked for.
	var expectedVersion *int64
	if ifMatch := c.GetHeader("If-Match"); strings.TrimSpace(ifMatch) != "" {
		version, err := strconv.ParseInt(strings.ReplaceAll(ifMatch, `"`, ""), 10, 64)
		if err != nil || version < 0 {
			writeProblem(c, http.StatusBadRequest, "Bad Request", ifMatchMessage)
			return
		}
		expectedVersion = &version
	}

	var req rebookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeProblem(c, http.StatusBadRequest, "Bad Request", "selected_flight_id is required")
		return
	}

	result, err := h.service.Rebook(c.Request.Context(), rebooking.RebookInput{
		Reference:        ref,
		SelectedFlightID: req.SelectedFlightID,
		IdempotencyKey:   key,
		ExpectedVersion:  expectedVersion,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replay {
		status = http.StatusOK
	}
	c.JSON(status, result.Response)
}

func bookingRef(c *gin.Context) (string, bool) {
	ref := c.Param("ref")
	if !bookingRefPattern.MatchString(ref) {
		writeProblem(c, http.StatusBadRequest, "Bad Request", bookingRefMessage)
		return "", false
	}
	return ref, true
}
