package availability

import "fmt"

// NotFoundError reports an unknown clinic, service or professional.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
