package handlers

import (
	"net/http"
	"time"

	"clinicflow/models"
	"clinicflow/services/calendar"

	"github.com/gin-gonic/gin"
)

// SyncCalendarHandler triggers an on-demand reconciliation pass for a clinic.
func SyncCalendarHandler(engine *calendar.SyncEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		}
		// Defaults when no window is supplied: a week back, a month ahead.
		_ = c.ShouldBindJSON(&input)
		now := time.Now()
		if input.Start.IsZero() {
			input.Start = now.AddDate(0, 0, -7)
		}
		if input.End.IsZero() {
			input.End = now.AddDate(0, 0, 30)
		}
		if !input.Start.Before(input.End) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be before end"})
			return
		}

		summary, err := engine.SyncEvents(c.Request.Context(), c.Param("clinicID"), input.Start, input.End)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// CalendarConflictsHandler reports booked intervals overlapping a candidate range.
func CalendarConflictsHandler(engine *calendar.SyncEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, err := time.Parse(time.RFC3339, c.Query("start"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC3339"})
			return
		}
		end, err := time.Parse(time.RFC3339, c.Query("end"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must be RFC3339"})
			return
		}
		if !start.Before(end) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be before end"})
			return
		}

		conflicts, err := engine.GetConflicts(c.Request.Context(), c.Param("clinicID"), start, end, c.Query("excludeId"))
		if err != nil {
			respondError(c, err)
			return
		}
		if conflicts == nil {
			conflicts = []models.Conflict{}
		}
		c.JSON(http.StatusOK, gin.H{"conflicts": conflicts})
	}
}

// CancelAppointmentHandler cancels a booked appointment and schedules the
// remote calendar deletion for the next sync pass.
func CancelAppointmentHandler(engine *calendar.SyncEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := engine.CancelAppointment(c.Request.Context(), c.Param("appointmentID")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
	}
}

// PushAppointmentsHandler publishes confirmed appointments that have no
// calendar event yet, typically after a remote outage.
func PushAppointmentsHandler(engine *calendar.SyncEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		pushed, err := engine.PushAppointments(c.Request.Context(), c.Param("clinicID"), now, now.AddDate(0, 0, 30))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pushed": pushed})
	}
}
