package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicflow/models"
	"clinicflow/utils"

	"go.uber.org/zap"
)

// StartFlow resumes the existing active flow for (clinic, patient) if one
// exists, otherwise creates a new one in the start stage. Idempotent under
// repeated calls with the same key.
func (s *DefaultFlowService) StartFlow(ctx context.Context, clinicID, patientPhone, patientName string) (*models.BookingFlow, error) {
	logger := utils.GetLogger()

	if clinicID == "" {
		return nil, &ValidationError{Field: "clinic_id", Message: "must not be empty"}
	}
	if patientPhone == "" {
		return nil, &ValidationError{Field: "patient_phone", Message: "must not be empty"}
	}

	existing, err := s.Store.Get(ctx, clinicID, patientPhone)
	if err == nil {
		logger.Debug("resuming active booking flow",
			zap.String("clinicID", clinicID), zap.String("patientPhone", patientPhone),
			zap.String("state", existing.State))
		return existing, nil
	}
	if !errors.Is(err, ErrFlowNotFound) {
		return nil, err
	}

	now := time.Now()
	f := &models.BookingFlow{
		ClinicID:     clinicID,
		PatientPhone: patientPhone,
		PatientName:  patientName,
		State:        models.FlowStateStart,
		Data:         map[string]string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Create(ctx, f); err != nil {
		return nil, err
	}

	logger.Info("booking flow started",
		zap.String("clinicID", clinicID), zap.String("patientPhone", patientPhone))
	return f, nil
}

// GetCurrentFlow returns the active flow, or ErrFlowNotFound.
func (s *DefaultFlowService) GetCurrentFlow(ctx context.Context, clinicID, patientPhone string) (*models.BookingFlow, error) {
	return s.Store.Get(ctx, clinicID, patientPhone)
}

// TransitionToState advances the flow to targetState, which must be the
// immediate successor of the current stage or the cancelled stage. The payload
// is merged into collected data and the TTL refreshed.
func (s *DefaultFlowService) TransitionToState(ctx context.Context, clinicID, patientPhone, targetState string, payload map[string]string) (*models.BookingFlow, error) {
	logger := utils.GetLogger()

	if !isKnownStage(targetState) {
		return nil, &ValidationError{Field: "target_state", Message: fmt.Sprintf("unknown stage %q", targetState)}
	}

	f, err := s.Store.Get(ctx, clinicID, patientPhone)
	if err != nil {
		return nil, err
	}

	fromState := f.State
	if isTerminal(fromState) {
		return nil, &InvalidTransitionError{From: fromState, To: targetState}
	}
	if targetState != models.FlowStateCancelled && targetState != nextStage(fromState) {
		return nil, &InvalidTransitionError{From: fromState, To: targetState}
	}

	if f.Data == nil {
		f.Data = map[string]string{}
	}
	for k, v := range payload {
		f.Data[k] = v
	}
	if field, ok := requiredFieldByStage[targetState]; ok {
		if f.Data[field] == "" {
			return nil, &ValidationError{Field: field, Message: fmt.Sprintf("required to enter %s", targetState)}
		}
	}

	f.State = targetState
	if err := s.Store.Save(ctx, f, fromState); err != nil {
		return nil, err
	}

	logger.Info("booking flow state transitioned",
		zap.String("clinicID", clinicID), zap.String("patientPhone", patientPhone),
		zap.String("from", fromState), zap.String("to", targetState))
	return f, nil
}

// CancelFlow moves the flow to the terminal cancelled stage from any
// non-terminal stage. An already-confirmed Appointment is left untouched.
func (s *DefaultFlowService) CancelFlow(ctx context.Context, clinicID, patientPhone, reason string) error {
	logger := utils.GetLogger()

	f, err := s.Store.Get(ctx, clinicID, patientPhone)
	if err != nil {
		return err
	}
	if isTerminal(f.State) {
		return &InvalidTransitionError{From: f.State, To: models.FlowStateCancelled}
	}

	fromState := f.State
	if f.Data == nil {
		f.Data = map[string]string{}
	}
	f.Data["cancellation_reason"] = reason
	f.Data["cancelled_at"] = time.Now().Format(time.RFC3339)
	f.State = models.FlowStateCancelled

	if err := s.Store.Save(ctx, f, fromState); err != nil {
		return err
	}
	if err := s.Store.Expire(ctx, clinicID, patientPhone, s.CleanupTTL); err != nil {
		logger.Warn("failed to schedule cancelled flow cleanup", zap.Error(err))
	}

	logger.Info("booking flow cancelled",
		zap.String("clinicID", clinicID), zap.String("patientPhone", patientPhone),
		zap.String("reason", reason))
	return nil
}

// GetFlowSummary is a read-only projection with progress and next steps.
func (s *DefaultFlowService) GetFlowSummary(ctx context.Context, clinicID, patientPhone string) (*models.FlowSummary, error) {
	f, err := s.Store.Get(ctx, clinicID, patientPhone)
	if err != nil {
		return nil, err
	}
	return &models.FlowSummary{
		ClinicID:     f.ClinicID,
		PatientPhone: f.PatientPhone,
		State:        f.State,
		Progress:     progressPercentage(f.State),
		NextSteps:    nextSteps(f.State),
		Data:         f.Data,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}, nil
}
