package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/service/whatsapp"
)

// DigestGenerator builds the weekly worksheet digest.
type DigestGenerator interface {
	GenerateWeeklyDigest(ctx context.Context, now time.Time) (models.WeeklyDigest, error)
}

// DigestRunner delivers the weekly digest to its configured sinks.
type DigestRunner interface {
	RunWeeklyDigest(ctx context.Context) error
}

// ReportHandler exposes the weekly digest and manual notifications.
type ReportHandler struct {
	digests   DigestGenerator
	runner    DigestRunner
	messaging whatsapp.MessagingService
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportHandler constructs the HTTP handler adapter. messaging may be nil
// when WhatsApp delivery is not configured.
func NewReportHandler(digests DigestGenerator, runner DigestRunner, messaging whatsapp.MessagingService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{digests: digests, runner: runner, messaging: messaging, logger: logger, now: time.Now}
}

// WeeklyDigest answers GET /reports/weekly.
func (h *ReportHandler) WeeklyDigest(c *gin.Context) {
	digest, err := h.digests.GenerateWeeklyDigest(c.Request.Context(), h.now())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, digest)
}

// SendWeeklyDigest answers POST /reports/weekly/send by running the
// scheduled job immediately.
func (h *ReportHandler) SendWeeklyDigest(c *gin.Context) {
	if err := h.runner.RunWeeklyDigest(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// MessagingEnabled reports whether SendMessage can deliver anything.
func (h *ReportHandler) MessagingEnabled() bool {
	return h.messaging != nil
}

// SendMessage allows sending manual WhatsApp notifications.
func (h *ReportHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.messaging.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("failed sending outbound", zap.Error(err))
		fail(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
