package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Leganyst/decor-platform/internal/apperr"
	"github.com/Leganyst/decor-platform/internal/model"
	"github.com/Leganyst/decor-platform/internal/pagination"
	"github.com/Leganyst/decor-platform/internal/service"
)

type BookingHandler struct {
	bookings   *service.BookingService
	assignment *service.AssignmentService
}

func NewBookingHandler(bookings *service.BookingService, assignment *service.AssignmentService) *BookingHandler {
	return &BookingHandler{bookings: bookings, assignment: assignment}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, apperr.Validationf("malformed id %q", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

// POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var in struct {
		RequesterEmail string `json:"requester_email" binding:"required"`
		ServiceRef     string `json:"service_ref" binding:"required"`
		PriceCents     int64  `json:"price_cents"`
		EventAt        string `json:"event_at" binding:"required"` // RFC3339
		Address        string `json:"address"`
		Message        string `json:"message"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, apperr.Validationf("%v", err))
		return
	}
	b, err := h.bookings.Create(c.Request.Context(), service.CreateBookingInput{
		RequesterEmail: in.RequesterEmail,
		ServiceRef:     in.ServiceRef,
		PriceCents:     in.PriceCents,
		EventAtISO:     in.EventAt,
		Address:        in.Address,
		Message:        in.Message,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /bookings?email=&page=&page_size=
func (h *BookingHandler) List(c *gin.Context) {
	items, err := h.bookings.List(c.Request.Context(), c.Query("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	c.JSON(http.StatusOK, pagination.Paginate(items, page, size))
}

// GET /bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PATCH /bookings/:id (admin)
func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in struct {
		Address *string `json:"address"`
		Message *string `json:"message"`
		EventAt *string `json:"event_at"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, apperr.Validationf("%v", err))
		return
	}
	b, err := h.bookings.UpdateFields(c.Request.Context(), id, service.UpdateBookingInput{
		Address:    in.Address,
		Message:    in.Message,
		EventAtISO: in.EventAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /bookings/:id/status (admin)
func (h *BookingHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in struct {
		State string `json:"state" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, apperr.Validationf("%v", err))
		return
	}
	b, err := h.bookings.SetFulfillmentState(c.Request.Context(), id, model.FulfillmentState(in.State))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /bookings/:id/assign (admin)
func (h *BookingHandler) Assign(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in struct {
		DecoratorID string `json:"decorator_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, apperr.Validationf("%v", err))
		return
	}
	decoratorID, err := uuid.Parse(in.DecoratorID)
	if err != nil {
		writeError(c, apperr.Validationf("malformed decorator id %q", in.DecoratorID))
		return
	}
	b, err := h.assignment.Assign(c.Request.Context(), id, decoratorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DELETE /bookings/:id (admin)
func (h *BookingHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.bookings.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
