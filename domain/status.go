package domain

type ProjectStatus string

const (
	ProjectStatusActive    = ProjectStatus("active")
	ProjectStatusAtRisk    = ProjectStatus("at_risk")
	ProjectStatusCompleted = ProjectStatus("completed")
	ProjectStatusOnHold    = ProjectStatus("on_hold")
	ProjectStatusArchived  = ProjectStatus("archived")
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusAtRisk, ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusArchived:
		return true
	}
	return false
}

// PhaseStatus is the lifecycle state of a phase:
// not_started -> in_progress -> awaiting_approval -> approved | changes_requested,
// changes_requested -> in_progress.
type PhaseStatus string

const (
	PhaseStatusNotStarted       = PhaseStatus("not_started")
	PhaseStatusInProgress       = PhaseStatus("in_progress")
	PhaseStatusAwaitingApproval = PhaseStatus("awaiting_approval")
	PhaseStatusApproved         = PhaseStatus("approved")
	PhaseStatusChangesRequested = PhaseStatus("changes_requested")
)

func (s PhaseStatus) Valid() bool {
	switch s {
	case PhaseStatusNotStarted, PhaseStatusInProgress, PhaseStatusAwaitingApproval, PhaseStatusApproved, PhaseStatusChangesRequested:
		return true
	}
	return false
}

type DeliverableStatus string

const (
	DeliverableStatusDraft          = DeliverableStatus("draft")
	DeliverableStatusReadyForReview = DeliverableStatus("ready_for_review")
	DeliverableStatusApproved       = DeliverableStatus("approved")
)

func (s DeliverableStatus) Valid() bool {
	switch s {
	case DeliverableStatusDraft, DeliverableStatusReadyForReview, DeliverableStatusApproved:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalStatusPending          = ApprovalStatus("pending")
	ApprovalStatusApproved         = ApprovalStatus("approved")
	ApprovalStatusChangesRequested = ApprovalStatus("changes_requested")
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusChangesRequested:
		return true
	}
	return false
}

type MessageType string

const (
	MessageTypeSystem = MessageType("system")
	MessageTypeUser   = MessageType("user")
)
