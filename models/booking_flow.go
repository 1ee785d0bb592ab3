package models

import "time"

// Booking flow stages, in conversation order. A flow only ever advances to the
// immediate next stage, or jumps to FlowStateCancelled.
const (
	FlowStateStart                 = "start"
	FlowStateServiceSelection      = "service_selection"
	FlowStateProfessionalSelection = "professional_selection"
	FlowStateDateSelection         = "date_selection"
	FlowStateTimeSelection         = "time_selection"
	FlowStateConfirmed             = "confirmed"
	FlowStateCancelled             = "cancelled"
)

// BookingFlow holds the per-patient conversation state between the first
// booking command and confirmation. Exactly one non-expired flow exists per
// (clinic, patient phone).
type BookingFlow struct {
	ClinicID     string            `json:"clinicId"`
	PatientPhone string            `json:"patientPhone"`
	PatientName  string            `json:"patientName"`
	State        string            `json:"state"`
	Data         map[string]string `json:"data"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	ExpiresAt    time.Time         `json:"expiresAt"`
}

// FlowSummary is a read-only projection of a flow for client display.
type FlowSummary struct {
	ClinicID     string            `json:"clinicId"`
	PatientPhone string            `json:"patientPhone"`
	State        string            `json:"state"`
	Progress     int               `json:"progress"`
	NextSteps    []string          `json:"nextSteps"`
	Data         map[string]string `json:"data"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}
