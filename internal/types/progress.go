package types

import "fmt"

// ProgressState is the lifecycle state of a progress record (the escrow ticket).
type ProgressState string

const (
	Pending   ProgressState = "pending"
	Submitted ProgressState = "submitted"
	Verified  ProgressState = "verified"
	Claimed   ProgressState = "claimed"
	Forfeited ProgressState = "forfeited"
)

func (s ProgressState) ToString() string {
	return string(s)
}

// IsFinished reports whether a supervisor has confirmed the work. It is the
// value persisted as is_finished alongside the state.
func (s ProgressState) IsFinished() bool {
	return s == Verified || s == Claimed
}

func FromStringToProgressState(s string) (ProgressState, error) {
	switch s {
	case "pending":
		return Pending, nil
	case "submitted":
		return Submitted, nil
	case "verified":
		return Verified, nil
	case "claimed":
		return Claimed, nil
	case "forfeited":
		return Forfeited, nil
	default:
		return "", fmt.Errorf("invalid progress state: %s", s)
	}
}
