package handlers

import (
	"net/http"

	"clinicflow/services/flow"

	"github.com/gin-gonic/gin"
)

// StartFlowHandler opens (or resumes) a booking flow for a patient phone.
func StartFlowHandler(svc flow.FlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := c.Param("clinicID")
		var input struct {
			PatientPhone string `json:"patientPhone"`
			PatientName  string `json:"patientName"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		bf, err := svc.StartFlow(c.Request.Context(), clinicID, input.PatientPhone, input.PatientName)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bf)
	}
}

// GetCurrentFlowHandler returns the live flow for a patient phone.
func GetCurrentFlowHandler(svc flow.FlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bf, err := svc.GetCurrentFlow(c.Request.Context(), c.Param("clinicID"), c.Param("phone"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bf)
	}
}

// TransitionFlowHandler advances the flow to the requested state, carrying the
// selection payload for the stage being completed.
func TransitionFlowHandler(svc flow.FlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			TargetState string            `json:"targetState"`
			Data        map[string]string `json:"data"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		bf, err := svc.TransitionToState(c.Request.Context(), c.Param("clinicID"), c.Param("phone"), input.TargetState, input.Data)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bf)
	}
}

// ConfirmAppointmentHandler finalizes the flow into a booked appointment.
func ConfirmAppointmentHandler(svc flow.FlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Data map[string]string `json:"data"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		appt, err := svc.ConfirmAppointment(c.Request.Context(), c.Param("clinicID"), c.Param("phone"), input.Data)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, appt)
	}
}

// CancelFlowHandler abandons the flow from any non-terminal state.
func CancelFlowHandler(svc flow.FlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Reason string `json:"reason"`
		}
		// The body is optional; cancellation without a reason is fine.
		_ = c.ShouldBindJSON(&input)

		if err := svc.CancelFlow(c.Request.Context(), c.Param("clinicID"), c.Param("phone"), input.Reason); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
	}
}

// FlowSummaryHandler returns the flow's progress view.
func FlowSummaryHandler(svc flow.FlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := svc.GetFlowSummary(c.Request.Context(), c.Param("clinicID"), c.Param("phone"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
