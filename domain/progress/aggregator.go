package progress

import (
	"portal/bizerror"
	"portal/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

type Result struct {
	Percentage int                  `json:"percentage"`
	Status     domain.ProjectStatus `json:"status"`
}

// Recompute derives the progress percentage and project status from phase states.
// percentage = round_half_up(100 * approved / total), 0 when there are no phases.
// Reaching 100 completes the project, dropping below 100 reverts completed to active,
// any other status is left as it is.
func Recompute(current domain.ProjectStatus, phases []domain.Phase) Result {
	total := len(phases)
	approved := 0
	for _, p := range phases {
		if p.Status == domain.PhaseStatusApproved {
			approved++
		}
	}

	percentage := 0
	if total > 0 {
		percentage = (200*approved + total) / (2 * total)
	}

	status := current
	if percentage == 100 {
		status = domain.ProjectStatusCompleted
	} else if current == domain.ProjectStatusCompleted {
		status = domain.ProjectStatusActive
	}
	return Result{Percentage: percentage, Status: status}
}

// RecomputeProjectProgress re-reads the phases of the project inside tx and overwrites
// the cached progress fields. The stored values are never trusted as input.
func RecomputeProjectProgress(projectID types.ID, tx *gorm.DB) (*domain.Project, error) {
	var project domain.Project
	if err := tx.Where("id = ?", projectID).First(&project).Error; err != nil {
		return nil, err
	}
	var phases []domain.Phase
	if err := tx.Where("project_id = ?", projectID).Find(&phases).Error; err != nil {
		return nil, err
	}

	r := Recompute(project.Status, phases)
	if r.Percentage == project.ProgressPercentage && r.Status == project.Status {
		return &project, nil
	}

	db := tx.Model(&domain.Project{}).Where("id = ? AND status = ?", projectID, project.Status).
		Updates(map[string]interface{}{"progress_percentage": r.Percentage, "status": r.Status})
	if db.Error != nil {
		return nil, db.Error
	}
	if db.RowsAffected != 1 {
		return nil, bizerror.ErrConcurrentModification
	}

	project.ProgressPercentage = r.Percentage
	project.Status = r.Status
	return &project, nil
}
