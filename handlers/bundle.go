package handlers

import (
	"clinicflow/services/availability"
	"clinicflow/services/calendar"
	"clinicflow/services/flow"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Flow endpoints
	StartFlow          gin.HandlerFunc
	GetCurrentFlow     gin.HandlerFunc
	TransitionFlow     gin.HandlerFunc
	ConfirmAppointment gin.HandlerFunc
	CancelFlow         gin.HandlerFunc
	FlowSummary        gin.HandlerFunc

	// Availability endpoints
	AvailableServices      gin.HandlerFunc
	AvailableProfessionals gin.HandlerFunc
	AvailableDates         gin.HandlerFunc
	AvailableTimes         gin.HandlerFunc

	// Calendar endpoints
	SyncCalendar      gin.HandlerFunc
	CalendarConflicts gin.HandlerFunc
	PushAppointments  gin.HandlerFunc

	// Appointment endpoints
	CancelAppointment gin.HandlerFunc
}

// NewHandlerBundle wires every handler to its backing service.
func NewHandlerBundle(flowSvc flow.FlowService, resolver availability.Resolver, engine *calendar.SyncEngine) *HandlerBundle {
	return &HandlerBundle{
		StartFlow:          StartFlowHandler(flowSvc),
		GetCurrentFlow:     GetCurrentFlowHandler(flowSvc),
		TransitionFlow:     TransitionFlowHandler(flowSvc),
		ConfirmAppointment: ConfirmAppointmentHandler(flowSvc),
		CancelFlow:         CancelFlowHandler(flowSvc),
		FlowSummary:        FlowSummaryHandler(flowSvc),

		AvailableServices:      AvailableServicesHandler(resolver),
		AvailableProfessionals: AvailableProfessionalsHandler(resolver),
		AvailableDates:         AvailableDatesHandler(resolver),
		AvailableTimes:         AvailableTimesHandler(resolver),

		SyncCalendar:      SyncCalendarHandler(engine),
		CalendarConflicts: CalendarConflictsHandler(engine),
		PushAppointments:  PushAppointmentsHandler(engine),

		CancelAppointment: CancelAppointmentHandler(engine),
	}
}
