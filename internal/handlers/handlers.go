package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	errs "stagepass/internal/errors"
	"stagepass/internal/metrics"
	"stagepass/internal/service"
	"stagepass/internal/session"
)

// EventsCache is the optional listing cache behind ListEvents. A nil
// EventsCache disables caching.
type EventsCache interface {
	GetEventsListRaw(ctx context.Context, page, pageSize int) ([]byte, error)
	SetEventsList(ctx context.Context, page, pageSize int, value any)
	InvalidateEventsList(ctx context.Context)
}

type Handlers struct {
	services    *service.Services
	eventsCache EventsCache
}

func NewHandlers(services *service.Services, eventsCache EventsCache) *Handlers {
	return &Handlers{
		services:    services,
		eventsCache: eventsCache,
	}
}

// sessionFrom returns the session placed by the auth middleware, or nil on
// public routes.
func sessionFrom(c *gin.Context) *session.Session {
	if v, exists := c.Get("session"); exists {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

// statusFromError maps the domain error taxonomy onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrPaymentDeclined),
		errors.Is(err, errs.ErrRefundDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, errs.ErrEmailTaken),
		errors.Is(err, errs.ErrOrganisationTaken),
		errors.Is(err, errs.ErrScheduleClash),
		errors.Is(err, errs.ErrInsufficientTickets),
		errors.Is(err, errs.ErrPerformanceEnded),
		errors.Is(err, errs.ErrEventStarted),
		errors.Is(err, errs.ErrCancellationWindow),
		errors.Is(err, errs.ErrEventNotActive),
		errors.Is(err, errs.ErrBookingNotActive),
		errors.Is(err, errs.ErrRequestDecided):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail terminates the request with the mapped status and records the
// operation outcome.
func fail(c *gin.Context, operation string, err error) {
	metrics.OperationsTotal.WithLabelValues(operation, "failure").Inc()

	status := statusFromError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func succeed(operation string) {
	metrics.OperationsTotal.WithLabelValues(operation, "success").Inc()
}
