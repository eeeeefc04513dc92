package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahim112008/ovinmanager/internal/service/husbandry"
)

// RecordProduction saves a milking measurement.
func (h *Handler) RecordProduction(c *gin.Context) {
	var in husbandry.ProductionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	rec, err := h.svc.Husbandry.RecordProduction(c.Request.Context(), current(c).Scope(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.svc.Session.Invalidate()
	c.JSON(http.StatusCreated, rec)
}

// ListProduction returns the milking records of the current scope.
func (h *Handler) ListProduction(c *gin.Context) {
	recs, err := h.svc.Husbandry.ListProduction(c.Request.Context(), current(c).Scope())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// RecordHealth saves a veterinary intervention.
func (h *Handler) RecordHealth(c *gin.Context) {
	var in husbandry.HealthInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	rec, err := h.svc.Husbandry.RecordHealth(c.Request.Context(), current(c).Scope(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ListHealth returns the interventions of the current scope.
func (h *Handler) ListHealth(c *gin.Context) {
	recs, err := h.svc.Husbandry.ListHealth(c.Request.Context(), current(c).Scope())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// RecordMating opens a gestation.
func (h *Handler) RecordMating(c *gin.Context) {
	var in husbandry.MatingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	rec, err := h.svc.Husbandry.RecordMating(c.Request.Context(), current(c).Scope(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ListReproduction returns the reproduction records of the current scope.
func (h *Handler) ListReproduction(c *gin.Context) {
	recs, err := h.svc.Husbandry.ListReproduction(c.Request.Context(), current(c).Scope())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// CompleteReproduction closes a gestation.
func (h *Handler) CompleteReproduction(c *gin.Context) {
	rec, err := h.svc.Husbandry.CompleteReproduction(c.Request.Context(), current(c).Scope(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
