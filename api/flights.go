package api

import (
	"net/http"

	"github.com/Domenick1991/flightrebooking/internal/service/catalog"
	"github.com/Domenick1991/flightrebooking/internal/service/rebooking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FlightHandler struct {
	service catalog.FlightUseCase
}

func NewFlightHandler(service catalog.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	summaries := make([]rebooking.FlightSummary, 0, len(flights))
	for _, f := range flights {
		summaries = append(summaries, rebooking.NewFlightSummary(f))
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeProblem(c, http.StatusBadRequest, "Bad Request", "Flight id must be a valid UUID")
		return
	}

	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rebooking.NewFlightSummary(*flight))
}
