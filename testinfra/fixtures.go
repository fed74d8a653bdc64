package testinfra

import (
	"context"
	"fmt"
	"portal/domain"
	"portal/persistence"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

var fixtureSeq types.ID = 1000

func nextFixtureID() types.ID {
	fixtureSeq++
	return fixtureSeq
}

// SeedProject inserts a project with one phase per status, ordered 1..n.
func SeedProject(clientEmail string, statuses ...domain.PhaseStatus) (*domain.Project, []domain.Phase) {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	project := domain.Project{ID: nextFixtureID(), Name: "project", ClientEmail: clientEmail,
		Status: domain.ProjectStatusActive, CreatorID: 1, CreateTime: types.CurrentTimestamp()}
	Expect(db.Create(&project).Error).To(BeNil())

	phases := make([]domain.Phase, 0, len(statuses))
	for i, status := range statuses {
		p := domain.Phase{ID: nextFixtureID(), ProjectID: project.ID, Name: fmt.Sprintf("phase%d", i+1),
			Order: i + 1, Status: status, CreateTime: types.CurrentTimestamp()}
		if status == domain.PhaseStatusApproved {
			p.ApprovedAt = types.CurrentTimestamp()
			p.ApprovedBy = 1
		}
		Expect(db.Create(&p).Error).To(BeNil())
		phases = append(phases, p)
	}
	return &project, phases
}

// SeedPendingApproval inserts a pending approval for p.
func SeedPendingApproval(p domain.Phase, requestedAt types.Timestamp) *domain.Approval {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	a := domain.Approval{ID: nextFixtureID(), PhaseID: p.ID, ProjectID: p.ProjectID, Status: domain.ApprovalStatusPending,
		RequestedAt: requestedAt, RequestedBy: 1}
	Expect(db.Create(&a).Error).To(BeNil())
	return &a
}

func LoadPhase(id types.ID) domain.Phase {
	p := domain.Phase{}
	Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).Where("id = ?", id).First(&p).Error).To(BeNil())
	return p
}

func LoadProject(id types.ID) domain.Project {
	p := domain.Project{}
	Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).Where("id = ?", id).First(&p).Error).To(BeNil())
	return p
}

func LoadMessages(phaseID types.ID) []domain.Message {
	var ms []domain.Message
	Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).Where("phase_id = ?", phaseID).
		Order("create_time ASC").Order("id ASC").Find(&ms).Error).To(BeNil())
	return ms
}

func LoadApprovals(phaseID types.ID) []domain.Approval {
	var as []domain.Approval
	Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).Where("phase_id = ?", phaseID).
		Order("requested_at DESC").Order("id DESC").Find(&as).Error).To(BeNil())
	return as
}
