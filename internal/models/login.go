package models

import "fmt"

// Stage is the position of a login session in the verification protocol.
type Stage int

const (
	StageAwaitingFirstAttempt Stage = iota
	StageAwaitingConfirmation
	StageAwaitingSecondFactor
	StageAuthenticated
	StageLocked
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingFirstAttempt:
		return "awaiting_first_attempt"
	case StageAwaitingConfirmation:
		return "awaiting_confirmation"
	case StageAwaitingSecondFactor:
		return "awaiting_second_factor"
	case StageAuthenticated:
		return "authenticated"
	case StageLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// MarshalText encodes the stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stage name written by MarshalText.
func (s *Stage) UnmarshalText(text []byte) error {
	for st := StageAwaitingFirstAttempt; st <= StageLocked; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown login stage %q", text)
}

// LoginOutcome is returned by every successful transition.
type LoginOutcome struct {
	SessionID         string
	Stage             Stage
	Attempts          int
	AttemptsRemaining int
	AccessToken       string
	Username          string
}
