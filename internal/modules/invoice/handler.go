package invoice

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/middleware"
	"resort/internal/pkg/response"
	"resort/internal/pkg/validator"
)

type Handler struct {
	invoices *Service
	payments *PaymentService
	log      *zap.Logger
}

func NewHandler(invoices *Service, payments *PaymentService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{invoices: invoices, payments: payments, log: log}
}

// RegisterRoutes mounts invoice and payment routes. Money movements are
// limited to accountants; front desk staff may create and view invoices.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	desk := middleware.RequireRole(domain.RoleReceptionist, domain.RoleAccountant)
	accounts := middleware.RequireRole(domain.RoleAccountant)

	inv := rg.Group("/invoices")
	{
		inv.POST("/from-booking/:bookingId", desk, h.CreateFromBooking)
		inv.GET("", desk, h.List)
		inv.GET("/:id", desk, h.Get)
		inv.GET("/:id/payments", desk, h.ListPayments)
		inv.POST("/:id/approve", accounts, h.Approve)
		inv.POST("/:id/cancel", accounts, h.Cancel)
	}

	rg.POST("/payments", desk, h.ProcessPayment)
	rg.POST("/payments/:id/refund", accounts, h.Refund)
}

// CreateFromBooking godoc
// @Summary      Issue an invoice for a booking
// @Tags         Invoices
// @Security     BearerAuth
// @Param        bookingId path int true "Booking ID"
// @Param        body body CreateOptions false "Tax and discount"
// @Success      201 {object} domain.Invoice
// @Router       /invoices/from-booking/{bookingId} [post]
func (h *Handler) CreateFromBooking(c *gin.Context) {
	bookingID, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	var req CreateOptions
	if c.Request.ContentLength != 0 {
		if !bind(c, &req) {
			return
		}
	}
	inv, err := h.invoices.CreateFromBooking(c.Request.Context(), bookingID, req, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, inv)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	out, err := h.invoices.List(c.Request.Context(), domain.InvoiceStatus(c.Query("status")), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	bal, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, bal)
}

func (h *Handler) ListPayments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, err := h.payments.ListForInvoice(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.Approve(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, inv)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength != 0 {
		if !bind(c, &req) {
			return
		}
	}
	inv, err := h.invoices.Cancel(c.Request.Context(), id, req.Reason, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, inv)
}

// ProcessPayment godoc
// @Summary      Record a payment against an invoice
// @Tags         Payments
// @Security     BearerAuth
// @Param        body body ProcessPaymentRequest true "Payment"
// @Success      201 {object} domain.Payment
// @Failure      409 {object} map[string]interface{} "PAYMENT_REJECTED"
// @Router       /payments [post]
func (h *Handler) ProcessPayment(c *gin.Context) {
	var req ProcessPaymentRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.payments.ProcessPayment(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) Refund(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RefundRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.payments.Refund(c.Request.Context(), id, req.Amount, req.Reason, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrInvoiceClosed), errors.Is(err, ErrExceedsBalance), errors.Is(err, ErrRefundExceedsPayment):
		response.Error(c, http.StatusConflict, "PAYMENT_REJECTED", err.Error())
	default:
		h.log.Error("invoice request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return id, true
}
