package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/service/payees"
)

// PayeeHandler serves the payee endpoints.
type PayeeHandler struct {
	svc payees.PayeeService
}

// NewPayeeHandler constructs the HTTP handler adapter.
func NewPayeeHandler(svc payees.PayeeService) *PayeeHandler {
	return &PayeeHandler{svc: svc}
}

func (h *PayeeHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, list)
}

func (h *PayeeHandler) Get(c *gin.Context) {
	payee, err := h.svc.Get(c.Request.Context(), c.Param("payeeID"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, payee)
}

func (h *PayeeHandler) Create(c *gin.Context) {
	var in models.PayeeInput
	if !bindJSON(c, &in) {
		return
	}
	if _, err := h.svc.Create(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *PayeeHandler) Update(c *gin.Context) {
	var in models.PayeeInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.svc.Update(c.Request.Context(), c.Param("payeeID"), in); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes the payee; cheques that referenced it are kept without one.
func (h *PayeeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("payeeID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
