package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stagepass/internal/models"
)

// CreateEvent - POST /api/events
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Events.Create(c.Request.Context(), sessionFrom(c), &req)
	if err != nil {
		fail(c, "create_event", err)
		return
	}

	h.invalidateEventsCache(c)
	succeed("create_event")
	c.JSON(http.StatusCreated, response)
}

// AddPerformance - POST /api/events/performances
func (h *Handlers) AddPerformance(c *gin.Context) {
	var req models.AddPerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Events.AddPerformance(c.Request.Context(), sessionFrom(c), &req)
	if err != nil {
		fail(c, "add_performance", err)
		return
	}

	h.invalidateEventsCache(c)
	succeed("add_performance")
	c.JSON(http.StatusCreated, response)
}

// CancelEvent - PATCH /api/events/cancel
func (h *Handlers) CancelEvent(c *gin.Context) {
	var req models.CancelEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Events.Cancel(c.Request.Context(), sessionFrom(c), &req)
	if err != nil {
		fail(c, "cancel_event", err)
		return
	}

	h.invalidateEventsCache(c)
	succeed("cancel_event")
	c.JSON(http.StatusOK, response)
}

// ListEvents - GET /api/events
// Filters: active_only, mine_only, date (YYYY-MM-DD), match_preferences.
func (h *Handlers) ListEvents(c *gin.Context) {
	filter := &models.EventFilter{
		ActiveOnly:       c.Query("active_only") == "true",
		MineOnly:         c.Query("mine_only") == "true",
		MatchPreferences: c.Query("match_preferences") == "true",
	}

	if dateParam := c.Query("date"); dateParam != "" {
		date, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		filter.Date = &date
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 20"})
		return
	}

	// Only unfiltered pages are cacheable.
	unfiltered := !filter.ActiveOnly && !filter.MineOnly && !filter.MatchPreferences && filter.Date == nil
	shouldCache := unfiltered && pageSize%5 == 0

	if shouldCache && h.eventsCache != nil {
		if rawJSON, err := h.eventsCache.GetEventsListRaw(c.Request.Context(), page, pageSize); err == nil {
			// A hit is still a served listing; it counts like any other.
			succeed("list_events")
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	response, err := h.services.Reports.ListEvents(c.Request.Context(), sessionFrom(c), filter)
	if err != nil {
		fail(c, "list_events", err)
		return
	}

	response = paginateEvents(response, page, pageSize)

	if shouldCache && h.eventsCache != nil {
		h.eventsCache.SetEventsList(c.Request.Context(), page, pageSize, response)
	}

	succeed("list_events")
	c.JSON(http.StatusOK, response)
}

// TicketUtilization - GET /api/reports/utilization
func (h *Handlers) TicketUtilization(c *gin.Context) {
	response, err := h.services.Reports.TicketUtilization(c.Request.Context(), sessionFrom(c))
	if err != nil {
		fail(c, "ticket_utilization", err)
		return
	}

	succeed("ticket_utilization")
	c.JSON(http.StatusOK, response)
}

func (h *Handlers) invalidateEventsCache(c *gin.Context) {
	if h.eventsCache == nil {
		return
	}
	h.eventsCache.InvalidateEventsList(c.Request.Context())
	slog.Debug("Invalidated events list cache")
}

func paginateEvents(events models.ListEventsResponse, page, pageSize int) models.ListEventsResponse {
	start := (page - 1) * pageSize
	if start >= len(events) {
		return models.ListEventsResponse{}
	}
	end := start + pageSize
	if end > len(events) {
		end = len(events)
	}
	return events[start:end]
}
