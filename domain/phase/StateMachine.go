package phase

import "portal/domain"

// stateless object, just used for state computing
type StateMachine struct {
	States      []domain.PhaseStatus `json:"states"`
	Transitions []Transition         `json:"transitions"`
}

type Transition struct {
	Name string             `json:"name"`
	From domain.PhaseStatus `json:"from"`
	To   domain.PhaseStatus `json:"to"`
}

const (
	TransitionStart           = "start"
	TransitionRequestApproval = "request_approval"
	TransitionApprove         = "approve"
	TransitionRequestChanges  = "request_changes"
	TransitionRework          = "rework"
)

//                  NOT_STARTED  IN_PROGRESS  AWAITING  APPROVED  CHANGES_REQUESTED
// NOT_STARTED      -            start        X         X         X
// IN_PROGRESS      X            -            request   X         X
// AWAITING         X            X            -         approve   request_changes
// APPROVED         X            X            X         -         X
// CHANGES_REQ      X            rework       request   X         -
var Lifecycle = NewStateMachine(
	[]domain.PhaseStatus{domain.PhaseStatusNotStarted, domain.PhaseStatusInProgress, domain.PhaseStatusAwaitingApproval,
		domain.PhaseStatusApproved, domain.PhaseStatusChangesRequested},
	[]Transition{
		{Name: TransitionStart, From: domain.PhaseStatusNotStarted, To: domain.PhaseStatusInProgress},
		{Name: TransitionRequestApproval, From: domain.PhaseStatusInProgress, To: domain.PhaseStatusAwaitingApproval},
		{Name: TransitionRequestApproval, From: domain.PhaseStatusChangesRequested, To: domain.PhaseStatusAwaitingApproval},
		{Name: TransitionApprove, From: domain.PhaseStatusAwaitingApproval, To: domain.PhaseStatusApproved},
		{Name: TransitionRequestChanges, From: domain.PhaseStatusAwaitingApproval, To: domain.PhaseStatusChangesRequested},
		{Name: TransitionRework, From: domain.PhaseStatusChangesRequested, To: domain.PhaseStatusInProgress},
	})

func NewStateMachine(states []domain.PhaseStatus, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

// AvailableTransitions filters transitions by from and to, an empty value matches any state.
func (sm *StateMachine) AvailableTransitions(from, to domain.PhaseStatus) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if (from == "" || from == transition.From) && (to == "" || to == transition.To) {
			r = append(r, transition)
		}
	}
	return r
}

func (sm *StateMachine) CanTransit(from, to domain.PhaseStatus) bool {
	return len(sm.AvailableTransitions(from, to)) == 1
}
