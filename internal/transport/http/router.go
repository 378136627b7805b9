package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/decor-platform/internal/auth"
	"github.com/Leganyst/decor-platform/internal/service"
)

// NewRouter собирает HTTP-поверхность поверх ядра. Административные
// операции закрыты JWT-ролью admin; вебхук и чекаут публичные.
func NewRouter(
	jwtSecret string,
	bookings *service.BookingService,
	assignment *service.AssignmentService,
	registry *service.RegistryService,
	payments *service.PaymentService,
	analytics *service.AnalyticsService,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	bh := NewBookingHandler(bookings, assignment)
	dh := NewDecoratorHandler(registry)
	ph := NewPaymentHandler(payments)
	ah := NewAnalyticsHandler(analytics)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/bookings", bh.Create)
	r.GET("/bookings", bh.List)
	r.GET("/bookings/:id", bh.Get)

	r.POST("/decorators", dh.Register)
	r.GET("/decorators", dh.List)
	r.GET("/decorators/:id", dh.Get)

	r.POST("/payments/checkout", ph.Checkout)
	r.POST("/payments/webhook", ph.Webhook)

	admin := r.Group("/", JWTAuth(jwtSecret), RequireRole(auth.RoleAdmin))
	{
		admin.POST("/decorators/:id/decision", dh.Decide)
		admin.POST("/bookings/:id/assign", bh.Assign)
		admin.POST("/bookings/:id/status", bh.SetStatus)
		admin.PATCH("/bookings/:id", bh.Update)
		admin.DELETE("/bookings/:id", bh.Delete)
		admin.GET("/analytics/summary", ah.Summary)
	}

	return r
}
