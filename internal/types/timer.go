package types

type TimerState string

const (
	TimerArmed    TimerState = "armed"
	TimerCanceled TimerState = "canceled"
	TimerFired    TimerState = "fired"
)

func (s TimerState) ToString() string {
	return string(s)
}
