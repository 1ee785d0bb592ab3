package handlers

import (
	"net/http"

	"clinicflow/models"
	"clinicflow/services/availability"

	"github.com/gin-gonic/gin"
)

// AvailableServicesHandler lists bookable services, optionally by category.
func AvailableServicesHandler(resolver availability.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		services, err := resolver.GetAvailableServices(c.Request.Context(), c.Param("clinicID"), c.Query("category"))
		if err != nil {
			respondError(c, err)
			return
		}
		if services == nil {
			services = []models.Service{}
		}
		c.JSON(http.StatusOK, gin.H{"services": services})
	}
}

// AvailableProfessionalsHandler lists professionals qualified for a service.
func AvailableProfessionalsHandler(resolver availability.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		serviceID := c.Query("serviceId")
		if serviceID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "serviceId is required"})
			return
		}

		professionals, err := resolver.GetAvailableProfessionals(c.Request.Context(), c.Param("clinicID"), serviceID)
		if err != nil {
			respondError(c, err)
			return
		}
		if professionals == nil {
			professionals = []models.Professional{}
		}
		c.JSON(http.StatusOK, gin.H{"professionals": professionals})
	}
}

// AvailableDatesHandler lists bookable dates inside the clinic's window.
func AvailableDatesHandler(resolver availability.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		serviceID := c.Query("serviceId")
		if serviceID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "serviceId is required"})
			return
		}

		dates, err := resolver.GetAvailableDates(c.Request.Context(), c.Param("clinicID"), serviceID, c.Query("professionalId"))
		if err != nil {
			respondError(c, err)
			return
		}
		if dates == nil {
			dates = []models.AvailableDate{}
		}
		c.JSON(http.StatusOK, gin.H{"dates": dates})
	}
}

// AvailableTimesHandler lists free slots for a service on a date.
func AvailableTimesHandler(resolver availability.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		serviceID := c.Query("serviceId")
		date := c.Query("date")
		if serviceID == "" || date == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "serviceId and date are required"})
			return
		}

		slots, err := resolver.GetAvailableTimes(c.Request.Context(), c.Param("clinicID"), serviceID, c.Query("professionalId"), date)
		if err != nil {
			respondError(c, err)
			return
		}
		if slots == nil {
			slots = []models.AvailableSlot{}
		}
		c.JSON(http.StatusOK, gin.H{"slots": slots})
	}
}
