package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stagepass/internal/models"
)

// RespondSponsorship - PATCH /api/sponsorships/respond
func (h *Handlers) RespondSponsorship(c *gin.Context) {
	var req models.RespondSponsorshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Sponsorships.Respond(c.Request.Context(), sessionFrom(c), &req)
	if err != nil {
		fail(c, "respond_sponsorship", err)
		return
	}

	h.invalidateEventsCache(c)
	succeed("respond_sponsorship")
	c.JSON(http.StatusOK, response)
}

// ListSponsorships - GET /api/sponsorships
func (h *Handlers) ListSponsorships(c *gin.Context) {
	response, err := h.services.Sponsorships.List(c.Request.Context(), sessionFrom(c))
	if err != nil {
		fail(c, "list_sponsorships", err)
		return
	}

	succeed("list_sponsorships")
	c.JSON(http.StatusOK, response)
}
