package request

import "github.com/studymart/studymart-api/internal/models"

// IsValidDecision reports whether status is one the item owner may set.
// Requests start Pending and are never moved back.
func IsValidDecision(status string) bool {
	switch status {
	case models.RequestAccepted, models.RequestRejected, models.RequestCompleted:
		return true
	}
	return false
}
