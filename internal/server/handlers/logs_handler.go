package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/export"
	"github.com/mamadbah2/bizdesk/internal/service/logs"
)

// LogHandler serves the worksheet log endpoints.
type LogHandler struct {
	svc    logs.LogService
	logger *zap.Logger
}

// NewLogHandler constructs the HTTP handler adapter.
func NewLogHandler(svc logs.LogService, logger *zap.Logger) *LogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHandler{svc: svc, logger: logger}
}

// List answers GET /logs?search=&startDate=&endDate=.
func (h *LogHandler) List(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	filter, ok := filterOf(c)
	if !ok {
		return
	}

	page, err := h.svc.List(c.Request.Context(), caller, filter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, page)
}

// Export answers GET /logs/export with the same listing as an xlsx workbook.
func (h *LogHandler) Export(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	filter, ok := filterOf(c)
	if !ok {
		return
	}

	page, err := h.svc.List(c.Request.Context(), caller, filter)
	if err != nil {
		fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLogs(&buf, page); err != nil {
		fail(c, err)
		return
	}

	h.logger.Debug("logs exported", zap.Int("rows", len(page.Logs)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(page)))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *LogHandler) Get(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}

	log, err := h.svc.Get(c.Request.Context(), caller, c.Param("logID"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, log)
}

func (h *LogHandler) Create(c *gin.Context) {
	var in models.LogInput
	if !bindJSON(c, &in) {
		return
	}

	if _, err := h.svc.Create(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *LogHandler) Update(c *gin.Context) {
	var in models.LogInput
	if !bindJSON(c, &in) {
		return
	}

	if err := h.svc.Update(c.Request.Context(), c.Param("logID"), in); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LogHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("logID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
