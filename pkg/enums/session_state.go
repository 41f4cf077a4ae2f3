package enums

// SessionState is the closed state set of an order composition session.
type SessionState string

const (
	SessionComposing       SessionState = "composing"
	SessionAwaitingPayment SessionState = "awaiting_payment"
	SessionPaid            SessionState = "paid"
	SessionCancelled       SessionState = "cancelled"
)

var validSessionStates = []SessionState{
	SessionComposing,
	SessionAwaitingPayment,
	SessionPaid,
	SessionCancelled,
}

// String implements fmt.Stringer.
func (s SessionState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SessionState.
func (s SessionState) IsValid() bool {
	for _, candidate := range validSessionStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the session accepts no further transitions.
func (s SessionState) IsTerminal() bool {
	return s == SessionPaid || s == SessionCancelled
}
