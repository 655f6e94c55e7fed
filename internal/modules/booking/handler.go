package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/middleware"
	"resort/internal/pkg/lock"
	"resort/internal/pkg/response"
	"resort/internal/pkg/validator"
	"resort/internal/repository"
)

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

// RegisterRoutes mounts booking routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rooms/:id/availability", h.Availability)
	rg.GET("/rooms/:id/quote", h.Quote)

	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.Create)
		bookings.GET("", h.List)
		bookings.GET("/:id", h.Get)
		bookings.GET("/:id/history", h.History)
		bookings.POST("/:id/confirm", h.Confirm)
		bookings.POST("/:id/assign-room", h.AssignRoom)
		bookings.POST("/:id/check-in", h.CheckIn)
		bookings.POST("/:id/check-out", h.CheckOut)
		bookings.POST("/:id/cancel", h.Cancel)
	}
}

// Availability godoc
// @Summary      Check room availability
// @Tags         Bookings
// @Security     BearerAuth
// @Param        id        path  int    true "Room ID"
// @Param        check_in  query string true "YYYY-MM-DD"
// @Param        check_out query string true "YYYY-MM-DD"
// @Router       /rooms/{id}/availability [get]
func (h *Handler) Availability(c *gin.Context) {
	roomID, ok := pathID(c)
	if !ok {
		return
	}
	checkIn, checkOut, ok := dateRange(c)
	if !ok {
		return
	}
	var exclude *int64
	if raw := c.Query("exclude_booking_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid exclude_booking_id")
			return
		}
		exclude = &id
	}

	free, err := h.service.IsAvailable(c.Request.Context(), roomID, checkIn, checkOut, exclude)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, AvailabilityResponse{
		RoomID:       roomID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Available:    free,
	})
}

func (h *Handler) Quote(c *gin.Context) {
	roomID, ok := pathID(c)
	if !ok {
		return
	}
	checkIn, checkOut, ok := dateRange(c)
	if !ok {
		return
	}
	quote, err := h.service.CalculateAmount(c.Request.Context(), roomID, checkIn, checkOut)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, quote)
}

// Create godoc
// @Summary      Create a booking
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateBookingRequest true "Booking"
// @Success      201 {object} domain.Booking
// @Failure      400,404,409 {object} map[string]interface{}
// @Router       /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if !bind(c, &req) {
		return
	}
	b, err := h.service.Create(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) List(c *gin.Context) {
	f := repository.BookingFilter{Status: domain.BookingStatus(c.Query("status"))}
	var err error
	if f.RoomID, err = queryInt(c, "room_id"); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room_id")
		return
	}
	if f.CustomerID, err = queryInt(c, "customer_id"); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid customer_id")
		return
	}
	limit, _ := queryInt(c, "limit")
	offset, _ := queryInt(c, "offset")
	f.Limit, f.Offset = int(limit), int(offset)
	if f.From, err = queryDate(c, "from"); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) History(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rows, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) Confirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ConfirmRequest
	if !bindOptional(c, &req) {
		return
	}
	h.respond(c)(h.service.Confirm(c.Request.Context(), id, req.RoomID, middleware.ActorFrom(c)))
}

func (h *Handler) AssignRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req AssignRoomRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.service.AssignRoom(c.Request.Context(), id, req.RoomID, middleware.ActorFrom(c)))
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CheckInRequest
	if !bindOptional(c, &req) {
		return
	}
	h.respond(c)(h.service.CheckIn(c.Request.Context(), id, req, middleware.ActorFrom(c)))
}

func (h *Handler) CheckOut(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CheckOutRequest
	if !bindOptional(c, &req) {
		return
	}
	h.respond(c)(h.service.CheckOut(c.Request.Context(), id, req.Notes, middleware.ActorFrom(c)))
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CancelRequest
	if !bindOptional(c, &req) {
		return
	}
	h.respond(c)(h.service.Cancel(c.Request.Context(), id, req.Reason, middleware.ActorFrom(c)))
}

func (h *Handler) respond(c *gin.Context) func(*domain.Booking, error) {
	return func(b *domain.Booking, err error) {
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.Success(c, http.StatusOK, b)
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrRoomUnavailable):
		response.Error(c, http.StatusConflict, "ROOM_UNAVAILABLE", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrConflict), errors.Is(err, lock.ErrNotAcquired):
		response.Error(c, http.StatusConflict, "CONFLICT", "Resource is busy or was changed concurrently, retry")
	default:
		h.log.Error("booking request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	return check(c, req)
}

// bindOptional accepts an empty body.
func bindOptional(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return check(c, req)
	}
	return bind(c, req)
}

func check(c *gin.Context, req any) bool {
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return false
	}
	return true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}

func dateRange(c *gin.Context) (domain.Date, domain.Date, bool) {
	checkIn, err := domain.ParseDate(c.Query("check_in"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "check_in: "+err.Error())
		return domain.Date{}, domain.Date{}, false
	}
	checkOut, err := domain.ParseDate(c.Query("check_out"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "check_out: "+err.Error())
		return domain.Date{}, domain.Date{}, false
	}
	return checkIn, checkOut, true
}

func queryInt(c *gin.Context, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func queryDate(c *gin.Context, key string) (domain.Date, error) {
	raw := c.Query(key)
	if raw == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(raw)
}
