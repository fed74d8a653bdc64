package deliverable

import (
	"portal/bizerror"
	"portal/domain"
	"portal/domain/phase"
	"portal/event"
	"portal/idgen"
	"portal/persistence"
	"portal/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	deliverableIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateDeliverableFunc       = CreateDeliverable
	QueryDeliverablesFunc       = QueryDeliverables
	UpdateDeliverableStatusFunc = UpdateDeliverableStatus
)

// transitions allowed between deliverable states
var transitions = map[domain.DeliverableStatus][]domain.DeliverableStatus{
	domain.DeliverableStatusDraft:          {domain.DeliverableStatusReadyForReview},
	domain.DeliverableStatusReadyForReview: {domain.DeliverableStatusApproved, domain.DeliverableStatusDraft},
	domain.DeliverableStatusApproved:       {domain.DeliverableStatusDraft},
}

func CanTransit(from, to domain.DeliverableStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckStatusUpdating admins drive every transition, a project's client may only approve.
func CheckStatusUpdating(d *domain.Deliverable, to domain.DeliverableStatus, project *domain.Project, s *session.Session) error {
	if !s.CanView(project.ClientEmail) {
		return bizerror.ErrForbidden
	}
	if !s.IsAdmin() && to != domain.DeliverableStatusApproved {
		return bizerror.ErrForbidden
	}
	if !CanTransit(d.Status, to) {
		return bizerror.ErrDeliverableInvalidTransition
	}
	return nil
}

func CreateDeliverable(c *domain.DeliverableCreating, s *session.Session) (*domain.Deliverable, error) {
	if !s.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	var d *domain.Deliverable
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		pc, err := phase.LoadPhaseContextFunc(c.PhaseID, tx)
		if err != nil {
			return err
		}
		now := types.CurrentTimestamp()
		d = &domain.Deliverable{ID: idgen.NextID(deliverableIdWorker), PhaseID: pc.Phase.ID, Name: c.Name,
			Status: domain.DeliverableStatusDraft, CreatorID: s.Identity.ID, CreateTime: now}
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		ev, err = event.CreateEvent(event.SourceTypeDeliverable, d.ID, d.Name, pc.Project.ID, event.EventCategoryCreated,
			nil, &s.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.DispatchAll([]*event.EventRecord{ev})
	return d, nil
}

func QueryDeliverables(q *domain.DeliverableQuery, s *session.Session) ([]domain.Deliverable, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	pc, err := phase.LoadPhaseContextFunc(q.PhaseID, db)
	if err != nil {
		return nil, err
	}
	if !s.CanView(pc.Project.ClientEmail) {
		return nil, bizerror.ErrForbidden
	}

	deliverables := []domain.Deliverable{}
	if err := db.Where("phase_id = ?", q.PhaseID).Order("create_time ASC").Order("id ASC").
		Find(&deliverables).Error; err != nil {
		return nil, err
	}
	return deliverables, nil
}

func UpdateDeliverableStatus(id types.ID, u *domain.DeliverableStatusUpdating, s *session.Session) (*domain.Deliverable, error) {
	d := domain.Deliverable{}
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&d).Error; err != nil {
			return err
		}
		pc, err := phase.LoadPhaseContextFunc(d.PhaseID, tx)
		if err != nil {
			return err
		}
		if err := CheckStatusUpdating(&d, u.Status, &pc.Project, s); err != nil {
			return err
		}

		from := d.Status
		r := tx.Model(&domain.Deliverable{}).Where("id = ? AND status = ?", d.ID, from).Update("status", u.Status)
		if r.Error != nil {
			return r.Error
		}
		if r.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		d.Status = u.Status

		ev, err = event.CreateEvent(event.SourceTypeDeliverable, d.ID, d.Name, pc.Project.ID, event.EventCategoryPropertyUpdated,
			event.StatusChange(string(from), string(u.Status)), &s.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"deliverable": d.ID, "phase": d.PhaseID, "status": d.Status, "actor": s.Identity.ID}).
		Info("deliverable status updated")
	event.DispatchAll([]*event.EventRecord{ev})
	return &d, nil
}

// CountByPhase returns total and ready-or-approved deliverable counts per phase.
func CountByPhase(phaseIDs []types.ID, db *gorm.DB) (map[types.ID][2]int, error) {
	counts := map[types.ID][2]int{}
	if len(phaseIDs) == 0 {
		return counts, nil
	}
	var deliverables []domain.Deliverable
	if err := db.Select("id, phase_id, status").Where("phase_id IN (?)", phaseIDs).Find(&deliverables).Error; err != nil {
		return nil, err
	}
	for _, d := range deliverables {
		c := counts[d.PhaseID]
		c[0]++
		if d.Status != domain.DeliverableStatusDraft {
			c[1]++
		}
		counts[d.PhaseID] = c
	}
	return counts, nil
}
