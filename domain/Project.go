package domain

import (
	"github.com/fundwit/go-commons/types"
)

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name        string `json:"name"`
	ClientEmail string `json:"clientEmail" gorm:"index:idx_client_email"`

	Status ProjectStatus `json:"status"`

	// derived from phase states, see progress.Recompute
	ProgressPercentage int `json:"progressPercentage"`

	CreatorID  types.ID        `json:"creatorId"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type ProjectCreating struct {
	Name        string `json:"name" binding:"required,lte=100"`
	ClientEmail string `json:"clientEmail" binding:"required,email"`

	// one of Template or Phases
	Template string           `json:"template"`
	Phases   []PhaseSpecifier `json:"phases" binding:"dive"`
}

type PhaseSpecifier struct {
	Name    string          `json:"name" binding:"required,lte=100"`
	DueDate types.Timestamp `json:"dueDate"`
}

type ProjectStatusUpdating struct {
	Status ProjectStatus `json:"status" binding:"required,oneof=active at_risk on_hold archived"`
}

type ProjectDetail struct {
	Project
	Phases []PhaseView `json:"phases"`
}

type PhaseView struct {
	Phase
	Accessible            bool `json:"accessible"`
	DeliverableCount      int  `json:"deliverableCount"`
	ReadyDeliverableCount int  `json:"readyDeliverableCount"`
}
