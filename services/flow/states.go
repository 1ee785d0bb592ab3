package flow

import "clinicflow/models"

// stageOrder is the conversation's stage sequence. CANCELLED sits outside the
// order and is reachable from any non-terminal stage.
var stageOrder = []string{
	models.FlowStateStart,
	models.FlowStateServiceSelection,
	models.FlowStateProfessionalSelection,
	models.FlowStateDateSelection,
	models.FlowStateTimeSelection,
	models.FlowStateConfirmed,
}

// requiredFieldByStage maps a target stage to the collected-data key that must
// be present in the transition payload (or already collected).
var requiredFieldByStage = map[string]string{
	models.FlowStateServiceSelection:      "service_id",
	models.FlowStateProfessionalSelection: "professional_id",
	models.FlowStateDateSelection:         "date",
	models.FlowStateTimeSelection:         "time",
}

// nextStage returns the immediate successor of the given stage, or "" when the
// stage is terminal or unknown.
func nextStage(state string) string {
	for i, s := range stageOrder {
		if s == state && i+1 < len(stageOrder) {
			return stageOrder[i+1]
		}
	}
	return ""
}

func isTerminal(state string) bool {
	return state == models.FlowStateConfirmed || state == models.FlowStateCancelled
}

func isKnownStage(state string) bool {
	if state == models.FlowStateCancelled {
		return true
	}
	for _, s := range stageOrder {
		if s == state {
			return true
		}
	}
	return false
}

func progressPercentage(state string) int {
	switch state {
	case models.FlowStateStart:
		return 0
	case models.FlowStateServiceSelection:
		return 20
	case models.FlowStateProfessionalSelection:
		return 40
	case models.FlowStateDateSelection:
		return 60
	case models.FlowStateTimeSelection:
		return 80
	case models.FlowStateConfirmed:
		return 100
	default:
		return 0
	}
}

func nextSteps(state string) []string {
	switch state {
	case models.FlowStateStart:
		return []string{"select service"}
	case models.FlowStateServiceSelection:
		return []string{"select professional"}
	case models.FlowStateProfessionalSelection:
		return []string{"select date"}
	case models.FlowStateDateSelection:
		return []string{"select time"}
	case models.FlowStateTimeSelection:
		return []string{"confirm appointment", "cancel"}
	case models.FlowStateConfirmed:
		return []string{"appointment booked"}
	case models.FlowStateCancelled:
		return []string{"flow cancelled"}
	default:
		return nil
	}
}
