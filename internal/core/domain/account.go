package domain

// AccountStatus represents the lifecycle state of an account.
// Removal is not a status: hard deletes drop the document.
type AccountStatus string

const (
	StatusActive      AccountStatus = "active"
	StatusDeactivated AccountStatus = "deactivated"
)

// validTransitions defines the allowed account state machine transitions.
var validTransitions = map[AccountStatus][]AccountStatus{
	StatusActive:      {StatusDeactivated},
	StatusDeactivated: {StatusActive},
}

// Valid reports whether s is a known status.
func (s AccountStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
