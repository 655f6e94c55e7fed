package catalog

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
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts the catalog on an authenticated group. Reads are open
// to all staff; reference data writes are admin-only, walk-in customers are
// registered at the desk.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := middleware.AdminOnly()
	desk := middleware.RequireRole(domain.RoleReceptionist)

	rg.GET("/room-types", h.ListRoomTypes)
	rg.POST("/room-types", admin, h.CreateRoomType)

	rg.GET("/rooms", h.ListRooms)
	rg.GET("/rooms/:id", h.GetRoom)
	rg.POST("/rooms", admin, h.CreateRoom)

	rg.GET("/customers", h.ListCustomers)
	rg.GET("/customers/:id", h.GetCustomer)
	rg.POST("/customers", desk, h.CreateCustomer)

	rg.GET("/services", h.ListServices)
	rg.POST("/services", admin, h.CreateService)

	rg.GET("/inventory", h.ListInventory)
	rg.POST("/inventory", admin, h.CreateInventory)
}

/* ---------- ROOM TYPES ---------- */

func (h *Handler) ListRoomTypes(c *gin.Context) {
	out, err := h.service.ListRoomTypes(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// CreateRoomType godoc
// @Summary      Create a room type
// @Tags         Catalog
// @Security     BearerAuth
// @Param        body body CreateRoomTypeRequest true "Room type"
// @Success      201 {object} domain.RoomType
// @Router       /room-types [post]
func (h *Handler) CreateRoomType(c *gin.Context) {
	var req CreateRoomTypeRequest
	if !bind(c, &req) {
		return
	}
	rt, err := h.service.CreateRoomType(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rt)
}

/* ---------- ROOMS ---------- */

// ListRooms handles GET /rooms?status=cleaning
func (h *Handler) ListRooms(c *gin.Context) {
	out, err := h.service.ListRooms(c.Request.Context(), domain.RoomStatus(c.Query("status")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	room, err := h.service.GetRoom(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, room)
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if !bind(c, &req) {
		return
	}
	room, err := h.service.CreateRoom(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, room)
}

/* ---------- CUSTOMERS ---------- */

// ListCustomers handles GET /customers?search=nguyen&limit=20
func (h *Handler) ListCustomers(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	out, err := h.service.ListCustomers(c.Request.Context(), c.Query("search"), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cust, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cust)
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if !bind(c, &req) {
		return
	}
	cust, err := h.service.CreateCustomer(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cust)
}

/* ---------- SERVICES ---------- */

func (h *Handler) ListServices(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "true") != "false"
	out, err := h.service.ListServices(c.Request.Context(), activeOnly)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if !bind(c, &req) {
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, svc)
}

/* ---------- INVENTORY ---------- */

// ListInventory handles GET /inventory?low_stock=true
func (h *Handler) ListInventory(c *gin.Context) {
	lowStock, _ := strconv.ParseBool(c.Query("low_stock"))
	out, err := h.service.ListInventory(c.Request.Context(), lowStock)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) CreateInventory(c *gin.Context) {
	var req CreateInventoryRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.CreateInventory(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		h.log.Error("catalog request failed", zap.String("path", c.FullPath()), zap.Error(err))
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

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}
