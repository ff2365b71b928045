package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightrebooking/internal/domain"
	"github.com/Domenick1991/flightrebooking/internal/logger"
	"github.com/gin-gonic/gin"
)

type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func writeProblem(c *gin.Context, status int, title, detail string) {
	c.JSON(status, problem{Title: title, Detail: detail, Status: status})
}

// writeError translates core failures to the boundary status contract:
// not-found 404; not-eligible, already-rebooked and version-conflict 409;
// invalid-selection and reused-key 400. Anything unclassified is logged and
// surfaced as an opaque 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrBookingNotFound):
		writeProblem(c, http.StatusNotFound, "Booking not found", err.Error())
	case errors.Is(err, domain.ErrFlightNotFound):
		writeProblem(c, http.StatusNotFound, "Flight not found", err.Error())
	case errors.Is(err, domain.ErrAlreadyRebooked),
		errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, domain.ErrVersionConflict):
		writeProblem(c, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidFlightSelection),
		errors.Is(err, domain.ErrIdempotencyKeyReused):
		writeProblem(c, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		logger.ErrorLogger.Errorf("unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		writeProblem(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
	}
}
