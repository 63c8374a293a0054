package whatsapp

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
	client "github.com/mamadbah2/bizdesk/pkg/clients/whatsapp"
)

// MessagingService pushes text notifications to WhatsApp recipients.
type MessagingService interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	client client.Client
	logger *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(client client.Client, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{client: client, logger: logger}
}

// SendOutbound delivers req.Message, split on line boundaries into as many
// messages as the API length limit requires.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	to := strings.TrimSpace(req.To)
	if to == "" || strings.TrimSpace(req.Message) == "" {
		return apperror.Validation("Please provide a recipient and a message")
	}

	parts := splitMessage(req.Message, client.MaxTextLength)
	for i, part := range parts {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
		resp, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
			To:         to,
			Body:       part,
			PreviewURL: req.PreviewURL,
		})
		cancel()
		if err != nil {
			s.logger.Error("whatsapp send failed",
				zap.String("to", to),
				zap.Int("part", i+1),
				zap.Int("parts", len(parts)),
				zap.Error(err))
			return err
		}
		if len(resp.Messages) > 0 {
			s.logger.Debug("whatsapp message sent", zap.String("to", to), zap.String("message_id", resp.Messages[0].ID))
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit runes, preferring to
// break after a newline.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > 0; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	return append(parts, string(runes))
}
