// Package handlers adapts the workflow services to HTTP.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/service/auth"
	"github.com/rahim112008/ovinmanager/internal/service/backup"
	"github.com/rahim112008/ovinmanager/internal/service/flock"
	"github.com/rahim112008/ovinmanager/internal/service/husbandry"
	"github.com/rahim112008/ovinmanager/internal/service/nutrition"
	"github.com/rahim112008/ovinmanager/internal/service/reporting"
	"github.com/rahim112008/ovinmanager/internal/service/session"
	"github.com/rahim112008/ovinmanager/internal/service/whatsapp"
)

const sessionKey = "session"

// Services groups the workflows served over HTTP.
type Services struct {
	Auth      *auth.Service
	Session   *session.Manager
	Flock     *flock.Service
	Husbandry *husbandry.Service
	Nutrition *nutrition.Service
	Reporting *reporting.Service
	Backup    *backup.Service
	Messaging *whatsapp.MetaWhatsAppService
}

// Handler serves the REST API.
type Handler struct {
	svc    Services
	logger *zap.Logger
}

// NewHandler constructs the HTTP handler adapter.
func NewHandler(svc Services, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// RequireUser rejects requests made without a signed-in user.
func (h *Handler) RequireUser(c *gin.Context) {
	s, err := h.svc.Session.RequireUser()
	if err != nil {
		h.fail(c, err)
		c.Abort()
		return
	}
	c.Set(sessionKey, s)
	c.Next()
}

func current(c *gin.Context) session.Session {
	v, _ := c.Get(sessionKey)
	s, _ := v.(session.Session)
	return s
}

// statusFor maps workflow errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrImportParse):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNoActiveUser), errors.Is(err, auth.ErrInvalidPassword):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound), errors.Is(err, auth.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNoActiveBreeder),
		errors.Is(err, models.ErrAnalysisInProgress),
		errors.Is(err, auth.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, models.ErrAnalysisFailed):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrAnalysisUnavailable),
		errors.Is(err, models.ErrStorageUnavailable),
		errors.Is(err, whatsapp.ErrDisabled),
		errors.Is(err, reporting.ErrPublishingDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Warn("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// Standards lists the breed standards and the trait catalogs.
func (h *Handler) Standards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"standards":     models.BreedStandards,
		"morphoTraits":  models.MorphoTraits,
		"mammaryTraits": models.MammaryTraits,
		"references":    models.ReferenceObjects,
		"races":         models.Races,
	})
}
