package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/clinic-ledger/internal/handler"
	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/service/payment"
)

type Handler struct {
	svc    *payment.Service
	events handler.EventEmitter
}

func NewHandler(svc *payment.Service, events handler.EventEmitter) *Handler {
	return &Handler{svc: svc, events: events}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/patients/:id/payments", h.AddPayment)
	r.GET("/patients/:id/payments", h.ListPayments)
	r.DELETE("/payments/:paymentId", h.DeletePayment)
}

func (h *Handler) AddPayment(c *gin.Context) {
	patientID, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.AddPaymentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.Add(c.Request.Context(), patientID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.EmitEvent(c, h.events, model.EventPaymentAdded, p)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

type paymentList struct {
	Payments  []*model.Payment `json:"payments"`
	TotalPaid decimal.Decimal  `json:"total_paid"`
}

func (h *Handler) ListPayments(c *gin.Context) {
	patientID, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.svc.List(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	total, err := h.svc.Sum(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if payments == nil {
		payments = []*model.Payment{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(paymentList{Payments: payments, TotalPaid: total}))
}

// DeletePayment succeeds whether or not the payment exists.
func (h *Handler) DeletePayment(c *gin.Context) {
	id, ok := handler.IDParam(c, "paymentId")
	if !ok {
		return
	}

	deleted, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	if deleted != nil {
		handler.EmitEvent(c, h.events, model.EventPaymentDeleted, deleted)
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deleted": deleted != nil}))
}
