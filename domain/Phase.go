package domain

import (
	"github.com/fundwit/go-commons/types"
)

type Phase struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId" gorm:"unique_index:uni_project_order"`

	Name string `json:"name"`

	// position in the project, unique within the project
	Order  int         `json:"order" gorm:"column:phase_order;unique_index:uni_project_order"`
	Status PhaseStatus `json:"status"`

	DueDate    types.Timestamp `json:"dueDate" sql:"type:DATETIME(6)"`
	AssigneeID types.ID        `json:"assigneeId"`

	ApprovedAt types.Timestamp `json:"approvedAt" sql:"type:DATETIME(6)"`
	ApprovedBy types.ID        `json:"approvedBy"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type PhaseCreating struct {
	Name       string          `json:"name" binding:"required,lte=100"`
	Order      int             `json:"order" binding:"required,gt=0"`
	DueDate    types.Timestamp `json:"dueDate"`
	AssigneeID types.ID        `json:"assigneeId"`
}

type Deliverable struct {
	ID      types.ID `json:"id" gorm:"primary_key"`
	PhaseID types.ID `json:"phaseId" gorm:"index:idx_deliverable_phase"`

	Name   string            `json:"name"`
	Status DeliverableStatus `json:"status"`

	CreatorID  types.ID        `json:"creatorId"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type DeliverableCreating struct {
	PhaseID types.ID `json:"phaseId" binding:"required"`
	Name    string   `json:"name" binding:"required,lte=255"`
}

type DeliverableStatusUpdating struct {
	Status DeliverableStatus `json:"status" binding:"required,oneof=draft ready_for_review approved"`
}

type DeliverableQuery struct {
	PhaseID types.ID `json:"phaseId" form:"phaseId" binding:"required"`
}

type Approval struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	PhaseID   types.ID `json:"phaseId" gorm:"index:idx_approval_phase"`
	ProjectID types.ID `json:"projectId"`

	Status ApprovalStatus `json:"status"`

	RequestedAt types.Timestamp `json:"requestedAt" sql:"type:DATETIME(6) NOT NULL"`
	RequestedBy types.ID        `json:"requestedBy"`
	RespondedAt types.Timestamp `json:"respondedAt" sql:"type:DATETIME(6)"`
	RespondedBy types.ID        `json:"respondedBy"`

	Feedback string `json:"feedback" sql:"type:TEXT"`
}

type ChangesRequesting struct {
	Feedback string `json:"feedback"`
}

type Message struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	PhaseID   types.ID `json:"phaseId" gorm:"index:idx_message_phase"`
	ProjectID types.ID `json:"projectId"`

	MessageType MessageType `json:"messageType"`
	AuthorID    types.ID    `json:"authorId"`
	Content     string      `json:"content" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type MessageCreating struct {
	Content string `json:"content" binding:"required,lte=4000"`
}

// PhaseOutcome is returned by the approval workflow operations.
type PhaseOutcome struct {
	Phase    Phase     `json:"phase"`
	Project  Project   `json:"project"`
	Approval *Approval `json:"approval,omitempty"`
}
