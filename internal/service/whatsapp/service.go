package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/metrics"
	client "github.com/rahim112008/ovinmanager/pkg/clients/whatsapp"
)

const sendTimeout = 30 * time.Second

// ErrDisabled is returned when no WhatsApp credentials are configured.
var ErrDisabled = errors.New("whatsapp messaging is not configured")

// MessagingService describes the operations the rest of the app can perform.
type MessagingService interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	ShareDocument(ctx context.Context, recipient, filename string, data []byte, caption string) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	client client.Client
	logger *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. A nil client yields a
// service that rejects every send with ErrDisabled.
func NewMetaWhatsAppService(client client.Client, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		client: client,
		logger: logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Enabled reports whether messages can be sent.
func (s *MetaWhatsAppService) Enabled() bool {
	return s.client != nil
}

// SendOutbound pushes a text message.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	if s.client == nil {
		return ErrDisabled
	}
	to := normalizeNumber(req.To)
	if to == "" || strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: recipient and message are required", models.ErrValidation)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	metrics.MessagesSentTotal.WithLabelValues("text", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Error("failed to send text message", zap.String("to", to), zap.Error(err))
		return err
	}
	s.logger.Info("text message sent", zap.String("to", to))
	return nil
}

// ShareDocument uploads data as a document and sends it to recipient.
func (s *MetaWhatsAppService) ShareDocument(ctx context.Context, recipient, filename string, data []byte, caption string) error {
	if s.client == nil {
		return ErrDisabled
	}
	to := normalizeNumber(recipient)
	if to == "" {
		return fmt.Errorf("%w: recipient is required", models.ErrValidation)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	mediaID, err := s.client.UploadMedia(ctxWithTimeout, client.UploadMediaRequest{
		Filename: filename,
		MimeType: "application/json",
		Data:     data,
	})
	if err != nil {
		metrics.MessagesSentTotal.WithLabelValues("document", "error").Inc()
		s.logger.Error("failed to upload document", zap.String("filename", filename), zap.Error(err))
		return err
	}

	_, err = s.client.SendDocumentMessage(ctxWithTimeout, client.SendDocumentRequest{
		To:       to,
		MediaID:  mediaID,
		Filename: filename,
		Caption:  caption,
	})
	metrics.MessagesSentTotal.WithLabelValues("document", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Error("failed to send document", zap.String("to", to), zap.String("filename", filename), zap.Error(err))
		return err
	}
	s.logger.Info("document shared", zap.String("to", to), zap.String("filename", filename), zap.Int("bytes", len(data)))
	return nil
}

// normalizeNumber keeps the digits of a phone number; the Cloud API wants
// international format without "+" or separators.
func normalizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
