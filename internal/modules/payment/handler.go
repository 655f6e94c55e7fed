package payment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/middleware"
	"resort/internal/modules/booking"
	"resort/internal/pkg/lock"
	"resort/internal/pkg/response"
	"resort/internal/pkg/validator"
)

const maxCallbackBody = 64 << 10

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	desk := middleware.RequireRole(domain.RoleReceptionist, domain.RoleAccountant)
	rg.GET("/online-payments/:id", desk, h.Get)
	rg.POST("/online-payments/:id/confirm-deposit", desk, h.ConfirmDeposit)
}

// RegisterPublicRoutes mounts guest and gateway endpoints. Callers wrap rg
// with a rate limiter.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/online-bookings", h.CreateOnlineBooking)
	rg.POST("/payments/momo/ipn", h.MoMoIPN)
	rg.POST("/payments/stripe/webhook", h.StripeWebhook)
}

// CreateOnlineBooking godoc
// @Summary      Book a stay online
// @Description  Creates the guest, the booking and its deposit. Gateway methods return a pay URL.
// @Tags         Online booking
// @Accept       json
// @Produce      json
// @Param        body body OnlineBookingRequest true "Booking"
// @Success      201 {object} OnlineBookingResponse
// @Failure      400 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{} "ROOM_UNAVAILABLE"
// @Router       /online-bookings [post]
func (h *Handler) CreateOnlineBooking(c *gin.Context) {
	var req OnlineBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}
	resp, err := h.service.CreateOnlineBooking(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	op, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, op)
}

// ConfirmDeposit godoc
// @Summary      Confirm a cash deposit
// @Tags         Online booking
// @Security     BearerAuth
// @Param        id path int true "Online payment ID"
// @Success      200 {object} domain.OnlinePayment
// @Router       /online-payments/{id}/confirm-deposit [post]
func (h *Handler) ConfirmDeposit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	op, err := h.service.ConfirmCashDeposit(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, op)
}

// MoMoIPN godoc
// @Summary      MoMo instant payment notification
// @Description  Verifies the HMAC signature and settles the order (idempotent)
// @Tags         Payments
// @Accept       json
// @Success      204
// @Failure      403 {object} map[string]interface{} "INVALID_SIGNATURE"
// @Router       /payments/momo/ipn [post]
func (h *Handler) MoMoIPN(c *gin.Context) {
	if _, ok := h.callback(c, domain.MethodMoMo); ok {
		c.Status(http.StatusNoContent)
	}
}

// StripeWebhook godoc
// @Summary      Stripe webhook
// @Tags         Payments
// @Accept       json
// @Success      200 {object} map[string]interface{}
// @Router       /payments/stripe/webhook [post]
func (h *Handler) StripeWebhook(c *gin.Context) {
	if op, ok := h.callback(c, domain.MethodStripe); ok {
		c.JSON(http.StatusOK, gin.H{"received": true, "settled": op != nil})
	}
}

func (h *Handler) callback(c *gin.Context, gateway string) (*domain.OnlinePayment, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unreadable body")
		return nil, false
	}
	h.log.Info("gateway callback", zap.String("gateway", gateway), zap.Int("bytes", len(body)))

	op, err := h.service.HandleCallback(c.Request.Context(), gateway, body, c.Request.Header)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return op, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidSignature):
		response.Error(c, http.StatusForbidden, "INVALID_SIGNATURE", "Signature verification failed")
	case errors.Is(err, ErrValidation), errors.Is(err, booking.ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, booking.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, booking.ErrRoomUnavailable):
		response.Error(c, http.StatusConflict, "ROOM_UNAVAILABLE", err.Error())
	case errors.Is(err, ErrInvalidState), errors.Is(err, booking.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrAmountMismatch):
		response.Error(c, http.StatusConflict, "PAYMENT_REJECTED", err.Error())
	case errors.Is(err, booking.ErrConflict), errors.Is(err, lock.ErrNotAcquired):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrGateway):
		h.log.Error("gateway unavailable", zap.Error(err))
		response.Error(c, http.StatusBadGateway, "PAYMENT_REJECTED", "Payment provider is unavailable")
	default:
		h.log.Error("payment request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}
