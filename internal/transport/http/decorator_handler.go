package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/decor-platform/internal/apperr"
	"github.com/Leganyst/decor-platform/internal/service"
)

type DecoratorHandler struct {
	registry *service.RegistryService
}

func NewDecoratorHandler(registry *service.RegistryService) *DecoratorHandler {
	return &DecoratorHandler{registry: registry}
}

// POST /decorators
func (h *DecoratorHandler) Register(c *gin.Context) {
	var in struct {
		Email       string `json:"email" binding:"required"`
		DisplayName string `json:"display_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, apperr.Validationf("%v", err))
		return
	}
	d, err := h.registry.Register(c.Request.Context(), service.RegisterDecoratorInput{
		Email:       in.Email,
		DisplayName: in.DisplayName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// GET /decorators?available=1 — только одобренные.
func (h *DecoratorHandler) List(c *gin.Context) {
	onlyAvailable := c.Query("available") == "1" || c.Query("available") == "true"
	out, err := h.registry.FindAvailable(c.Request.Context(), onlyAvailable)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /decorators/:id
func (h *DecoratorHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	d, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// POST /decorators/:id/decision (admin)
func (h *DecoratorHandler) Decide(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in struct {
		Approve *bool `json:"approve" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, apperr.Validationf("%v", err))
		return
	}
	d, err := h.registry.Decide(c.Request.Context(), id, *in.Approve)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
