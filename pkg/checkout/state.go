package checkout

import (
	"fmt"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
)

// State is the position of a checkout attempt in its lifecycle
type State int

const (
	StateIdle State = iota
	StateRequireAuth
	StatePaying
	StatePaymentSucceeded
	StateOrderPersisted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRequireAuth:
		return "REQUIRE_AUTH"
	case StatePaying:
		return "PAYING"
	case StatePaymentSucceeded:
		return "PAYMENT_SUCCEEDED"
	case StateOrderPersisted:
		return "ORDER_PERSISTED"
	default:
		return "FAILED"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for candidate := StateIdle; candidate <= StateFailed; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown checkout state %q", text)
}

// StateForError reports where a failed call leaves the attempt.
// Missing auth, an empty cart and a cart changed after Begin are recoverable; an order write failure happens
// after payment succeeded.
func StateForError(err error) State {
	switch apperr.KindOf(err) {
	case apperr.KindAuthRequired:
		return StateRequireAuth
	case apperr.KindValidation, apperr.KindConflict:
		return StateIdle
	case apperr.KindOrderPersistence:
		return StatePaymentSucceeded
	default:
		return StateFailed
	}
}
