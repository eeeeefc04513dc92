package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/service/nutrition"
)

type priceUpdate struct {
	PricePerKg *float64 `json:"pricePerUnit" binding:"required"`
}

type suggestRequest struct {
	SheepID   string                  `json:"sheepId" binding:"required"`
	Objective models.FeedingObjective `json:"objectif" binding:"required"`
}

// ListPrices returns the price list of the selected breeder.
func (h *Handler) ListPrices(c *gin.Context) {
	prices, err := h.svc.Nutrition.EnsurePrices(c.Request.Context(), current(c).BreederID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

// UpdatePrice changes the unit price of an ingredient.
func (h *Handler) UpdatePrice(c *gin.Context) {
	var req priceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	p, err := h.svc.Nutrition.UpdatePrice(c.Request.Context(), current(c).User.ID, c.Param("id"), *req.PricePerKg)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// SaveRation costs and records a ration.
func (h *Handler) SaveRation(c *gin.Context) {
	var in nutrition.RationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	rec, err := h.svc.Nutrition.SaveRation(c.Request.Context(), current(c).Scope(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ListRations returns the rations of the current scope.
func (h *Handler) ListRations(c *gin.Context) {
	recs, err := h.svc.Nutrition.ListRations(c.Request.Context(), current(c).Scope())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// SuggestRation asks the advisor for a costed ration.
func (h *Handler) SuggestRation(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	costing, err := h.svc.Nutrition.SuggestRation(c.Request.Context(), current(c).Scope(), req.SheepID, req.Objective)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, costing)
}
