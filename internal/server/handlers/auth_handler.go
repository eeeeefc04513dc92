package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahim112008/ovinmanager/internal/service/auth"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type breederSelection struct {
	BreederID string `json:"breederId"`
}

// Register creates an account and signs it in.
func (h *Handler) Register(c *gin.Context) {
	var in auth.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	user, err := h.svc.Auth.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	s, err := h.svc.Session.Login(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// Login verifies the credentials and makes the account active.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	user, err := h.svc.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	s, err := h.svc.Session.Login(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// Logout clears the active account.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Session.Logout(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Session returns the current scope and its refreshed view.
func (h *Handler) Session(c *gin.Context) {
	s := h.svc.Session.Current()
	if !s.LoggedIn() {
		c.JSON(http.StatusOK, gin.H{"session": s})
		return
	}
	view, err := h.svc.Session.Refresh(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":           h.svc.Session.Current(),
		"view":              view,
		"analysisAvailable": h.svc.Flock.AnalysisAvailable(),
	})
}

// SelectBreeder switches the active breeder; an empty id selects all of them.
func (h *Handler) SelectBreeder(c *gin.Context) {
	var req breederSelection
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	s, err := h.svc.Session.SwitchBreeder(c.Request.Context(), req.BreederID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
