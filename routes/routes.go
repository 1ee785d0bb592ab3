package routes

import (
	"net/http"
	"time"

	"clinicflow/handlers"
	"clinicflow/middleware"
	"clinicflow/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterFlowRoutes sets up the endpoints for the booking conversation.
func RegisterFlowRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/clinics/:clinicID/flows")
	{
		api.POST("", hb.StartFlow)
		api.GET("/:phone", hb.GetCurrentFlow)
		api.GET("/:phone/summary", hb.FlowSummary)
		api.POST("/:phone/transition", hb.TransitionFlow)
		api.POST("/:phone/confirm", hb.ConfirmAppointment)
		api.POST("/:phone/cancel", hb.CancelFlow)
	}
}

// RegisterAvailabilityRoutes sets up the discovery endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/clinics/:clinicID/availability")
	{
		api.GET("/services", hb.AvailableServices)
		api.GET("/professionals", hb.AvailableProfessionals)
		api.GET("/dates", hb.AvailableDates)
		api.GET("/times", hb.AvailableTimes)
	}
}

// RegisterCalendarRoutes sets up sync and conflict endpoints.
func RegisterCalendarRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/clinics/:clinicID/calendar")
	{
		api.POST("/sync", hb.SyncCalendar)
		api.POST("/push", hb.PushAppointments)
		api.GET("/conflicts", hb.CalendarConflicts)
	}
}

// RegisterAppointmentRoutes sets up booked-appointment management endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/clinics/:clinicID/appointments")
	{
		api.POST("/:appointmentID/cancel", hb.CancelAppointment)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"message":      "Hi, I'm Clinicflow",
			"dependencies": utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterFlowRoutes(r, hb)
	RegisterAvailabilityRoutes(r, hb)
	RegisterCalendarRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
}
