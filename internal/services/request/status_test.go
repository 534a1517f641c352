package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/studymart/studymart-api/internal/models"
)

func TestIsValidDecision(t *testing.T) {
	assert.True(t, IsValidDecision(models.RequestAccepted))
	assert.True(t, IsValidDecision(models.RequestRejected))
	assert.True(t, IsValidDecision(models.RequestCompleted))

	// Pending is the initial state, not a decision an owner may set.
	assert.False(t, IsValidDecision(models.RequestPending))
	assert.False(t, IsValidDecision(""))
	assert.False(t, IsValidDecision("accepted"))
	assert.False(t, IsValidDecision("Cancelled"))
}
