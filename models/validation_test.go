package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationStatusValid(t *testing.T) {
	require.True(t, StatusPending.Valid())
	require.True(t, StatusApproved.Valid())
	require.True(t, StatusRejected.Valid())
	require.False(t, ValidationStatus("validated").Valid())
	require.False(t, ValidationStatus("").Valid())
	require.False(t, ValidationStatus("APPROVED").Valid())
}

func TestCanTransitionAllowsEveryPairOfValidStatuses(t *testing.T) {
	statuses := []ValidationStatus{StatusPending, StatusApproved, StatusRejected}
	for _, from := range statuses {
		for _, to := range statuses {
			require.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransitionRejectsUnknownStatus(t *testing.T) {
	require.False(t, CanTransition(StatusPending, ValidationStatus("archived")))
	require.False(t, CanTransition(ValidationStatus("archived"), StatusApproved))
}
