package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/service/ledger"
)

// ChequeHandler serves the cheque book endpoints.
type ChequeHandler struct {
	svc ledger.ChequeService
}

// NewChequeHandler constructs the HTTP handler adapter.
func NewChequeHandler(svc ledger.ChequeService) *ChequeHandler {
	return &ChequeHandler{svc: svc}
}

// List answers GET /cheques?search=&startDate=&endDate=&payee=.
func (h *ChequeHandler) List(c *gin.Context) {
	filter, ok := filterOf(c)
	if !ok {
		return
	}
	page, err := h.svc.List(c.Request.Context(), filter, c.Query("payee"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, page)
}

func (h *ChequeHandler) Get(c *gin.Context) {
	cheque, err := h.svc.Get(c.Request.Context(), c.Param("chequeID"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, cheque)
}

func (h *ChequeHandler) Create(c *gin.Context) {
	var in models.LedgerInput
	if !bindJSON(c, &in) {
		return
	}
	if _, err := h.svc.Create(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *ChequeHandler) Update(c *gin.Context) {
	var in models.LedgerInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.svc.Update(c.Request.Context(), c.Param("chequeID"), in); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChequeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("chequeID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BillHandler serves the bills register endpoints.
type BillHandler struct {
	svc ledger.BillService
}

// NewBillHandler constructs the HTTP handler adapter.
func NewBillHandler(svc ledger.BillService) *BillHandler {
	return &BillHandler{svc: svc}
}

func (h *BillHandler) List(c *gin.Context) {
	filter, ok := filterOf(c)
	if !ok {
		return
	}
	page, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, page)
}

func (h *BillHandler) Get(c *gin.Context) {
	bill, err := h.svc.Get(c.Request.Context(), c.Param("billID"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, bill)
}

func (h *BillHandler) Create(c *gin.Context) {
	var in models.LedgerInput
	if !bindJSON(c, &in) {
		return
	}
	if _, err := h.svc.Create(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *BillHandler) Update(c *gin.Context) {
	var in models.LedgerInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.svc.Update(c.Request.Context(), c.Param("billID"), in); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BillHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("billID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
