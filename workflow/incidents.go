package workflow

import (
	"fmt"
	"strings"

	"rentadm/api"
)

var (
	incidentStatuses   = []api.IncidentStatus{api.IncidentReported, api.IncidentInProgress, api.IncidentResolved, api.IncidentClosed}
	incidentPriorities = []api.IncidentPriority{api.PriorityLow, api.PriorityMedium, api.PriorityHigh, api.PriorityCritical}
)

func ParseIncidentStatus(raw string) (api.IncidentStatus, error) {
	needle := api.IncidentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range incidentStatuses {
		if s == needle {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid incident status %q (want one of %s)", raw, joinStatuses(incidentStatuses))
}

// ParseIncidentPriority accepts an empty value, which keeps the current
// priority.
func ParseIncidentPriority(raw string) (api.IncidentPriority, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	needle := api.IncidentPriority(strings.ToUpper(strings.TrimSpace(raw)))
	for _, p := range incidentPriorities {
		if p == needle {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid incident priority %q (want one of %s)", raw, joinStatuses(incidentPriorities))
}

func ValidateIncidentUpdate(u api.IncidentStatusUpdate) error {
	if _, err := ParseIncidentStatus(string(u.Status)); err != nil {
		return err
	}
	_, err := ParseIncidentPriority(string(u.Priority))
	return err
}

func joinStatuses[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
