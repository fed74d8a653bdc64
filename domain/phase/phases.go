package phase

import (
	"portal/bizerror"
	"portal/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	LoadPhaseContextFunc   = LoadPhaseContext
	QueryProjectPhasesFunc = QueryProjectPhases
)

// PhaseContext is a phase read together with its project and the ordered sibling phases.
type PhaseContext struct {
	Phase   domain.Phase
	Project domain.Project
	Ordered []domain.Phase
}

func (c *PhaseContext) Accessible() bool {
	return IsAccessible(c.Phase, c.Ordered)
}

func (c *PhaseContext) Next() (domain.Phase, bool) {
	return NextPhase(c.Phase, c.Ordered)
}

func QueryProjectPhases(projectID types.ID, db *gorm.DB) ([]domain.Phase, error) {
	var phases []domain.Phase
	if err := db.Where("project_id = ?", projectID).Find(&phases).Error; err != nil {
		return nil, err
	}
	return SortPhases(phases), nil
}

func LoadPhaseContext(phaseID types.ID, db *gorm.DB) (*PhaseContext, error) {
	c := PhaseContext{}
	if err := db.Where("id = ?", phaseID).First(&c.Phase).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id = ?", c.Phase.ProjectID).First(&c.Project).Error; err != nil {
		return nil, err
	}
	ordered, err := QueryProjectPhases(c.Phase.ProjectID, db)
	if err != nil {
		return nil, err
	}
	c.Ordered = ordered
	return &c, nil
}

// Transit moves p to status `to` when the lifecycle allows it. The update is conditioned on
// the status p was read with; any other writer in between makes it fail with a conflict.
// extra columns are written in the same statement.
func Transit(p *domain.Phase, to domain.PhaseStatus, extra map[string]interface{}, tx *gorm.DB) error {
	if !Lifecycle.CanTransit(p.Status, to) {
		return bizerror.ErrPhaseInvalidState
	}
	changes := map[string]interface{}{"status": to}
	for k, v := range extra {
		changes[k] = v
	}
	db := tx.Model(&domain.Phase{}).Where("id = ? AND status = ?", p.ID, p.Status).Updates(changes)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		return bizerror.ErrConcurrentModification
	}
	p.Status = to
	return nil
}
