package enums

import "testing"

func TestSessionStateValidityAndTerminality(t *testing.T) {
	for _, state := range validSessionStates {
		if !state.IsValid() {
			t.Fatalf("%s must be valid", state)
		}
	}
	if SessionState("settling").IsValid() {
		t.Fatal("unknown state must be invalid")
	}

	if SessionComposing.IsTerminal() || SessionAwaitingPayment.IsTerminal() {
		t.Fatal("live states must accept further transitions")
	}
	if !SessionPaid.IsTerminal() || !SessionCancelled.IsTerminal() {
		t.Fatal("paid and cancelled must be terminal")
	}
}
