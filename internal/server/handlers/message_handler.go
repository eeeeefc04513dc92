package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
)

// SendMessage sends a WhatsApp text, e.g. a summary for a buyer or a vet.
func (h *Handler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.svc.Messaging.SendOutbound(c.Request.Context(), req); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("failed sending outbound", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
			return
		}
		h.fail(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}
