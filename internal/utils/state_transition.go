package utils

import (
	"github.com/sameicp/assignment-monitor/internal/types"
)

// QualifiedStatesToSubmitted returns the qualified existing states to transition to "submitted"
func QualifiedStatesToSubmitted() []types.ProgressState {
	return []types.ProgressState{types.Pending}
}

// QualifiedStatesToVerified returns the qualified existing states to transition to "verified"
// Verification does not require the work to be uploaded first.
func QualifiedStatesToVerified() []types.ProgressState {
	return []types.ProgressState{types.Pending, types.Submitted}
}

// QualifiedStatesToForfeited returns the qualified existing states to transition to "forfeited"
func QualifiedStatesToForfeited() []types.ProgressState {
	return []types.ProgressState{types.Pending, types.Submitted}
}

// QualifiedStatesToClaimed returns the qualified existing states to transition to "claimed"
func QualifiedStatesToClaimed() []types.ProgressState {
	return []types.ProgressState{types.Verified}
}

// List of states in which a repeated verification only has to release the timer
var OutdatedStatesForVerified = []types.ProgressState{types.Verified, types.Claimed}
