package nightaudit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/middleware"
	"resort/internal/pkg/response"
)

type RunRequest struct {
	Date domain.Date `json:"date"`
}

type Handler struct {
	service *Service
	loc     *time.Location
	log     *zap.Logger
}

func NewHandler(service *Service, loc *time.Location, log *zap.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, loc: loc, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/night-audit/run", middleware.AdminOnly(), h.Run)
}

// Run godoc
// @Summary      Run the night audit now
// @Description  Sweeps as of the given date, or today in the resort timezone. Safe to repeat.
// @Tags         Night audit
// @Security     BearerAuth
// @Param        body body RunRequest false "Audit date"
// @Success      200 {object} Summary
// @Router       /night-audit/run [post]
func (h *Handler) Run(c *gin.Context) {
	var req RunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}
	day := req.Date
	if day.IsZero() {
		day = domain.DateOf(h.service.now().In(h.loc))
	}

	sum, err := h.service.Run(c.Request.Context(), day)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Night audit failed")
		return
	}
	h.log.Info("night audit triggered manually", zap.Int64("user_id", middleware.ActorFrom(c).UserID), zap.String("date", day.String()))
	response.Success(c, http.StatusOK, sum)
}
