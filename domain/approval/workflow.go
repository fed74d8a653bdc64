package approval

import (
	"errors"
	"portal/bizerror"
	"portal/domain"
	"portal/domain/message"
	"portal/domain/phase"
	"portal/domain/project"
	"portal/event"
	"portal/idgen"
	"portal/metrics"
	"portal/persistence"
	"portal/phaselock"
	"portal/session"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	approvalIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RequestApprovalFunc = RequestApproval
	ApproveFunc         = Approve
	RequestChangesFunc  = RequestChanges
	StartPhaseFunc      = StartPhase
	ReworkPhaseFunc     = ReworkPhase
	QueryApprovalsFunc  = QueryApprovals
)

// effects collects what a committed operation hands to the outside world.
type effects struct {
	events      []*event.EventRecord
	transitions []string
}

func (e *effects) record(ev *event.EventRecord, transition string) {
	e.events = append(e.events, ev)
	if transition != "" {
		e.transitions = append(e.transitions, transition)
	}
}

// mutate runs fn in one transaction under the phase lock. Events and metrics are emitted
// only when the transaction committed.
func mutate(operation string, phaseID types.ID, s *session.Session, fn func(tx *gorm.DB, fx *effects) error) error {
	fx := &effects{}
	err := phaselock.WithPhaseLock(s.Context, phaseID, func() error {
		return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
			return fn(tx, fx)
		})
	})
	if err != nil {
		if kind := rejectionKind(err); kind != "" {
			metrics.RecordRejection(operation, kind)
		}
		logrus.WithFields(logrus.Fields{"operation": operation, "phase": phaseID, "actor": s.Identity.ID}).
			Debugf("workflow operation refused: %v", err)
		return err
	}
	for _, t := range fx.transitions {
		metrics.RecordTransition(t)
	}
	event.DispatchAll(fx.events)
	return nil
}

func rejectionKind(err error) string {
	if errors.Is(err, bizerror.ErrForbidden) {
		return "forbidden"
	}
	return string(bizerror.KindOf(err))
}

func loadPending(phaseID types.ID, tx *gorm.DB) (*domain.Approval, error) {
	var approvals []domain.Approval
	if err := tx.Where("phase_id = ? AND status = ?", phaseID, domain.ApprovalStatusPending).
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return LatestPending(approvals), nil
}

// respond resolves a pending approval, conditioned on it still being pending.
func respond(a *domain.Approval, to domain.ApprovalStatus, feedback string, s *session.Session, now types.Timestamp, tx *gorm.DB) error {
	changes := map[string]interface{}{"status": to, "responded_at": now, "responded_by": s.Identity.ID}
	if feedback != "" {
		changes["feedback"] = feedback
	}
	db := tx.Model(&domain.Approval{}).Where("id = ? AND status = ?", a.ID, domain.ApprovalStatusPending).Updates(changes)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		return bizerror.ErrConcurrentModification
	}
	a.Status = to
	a.RespondedAt = now
	a.RespondedBy = s.Identity.ID
	if feedback != "" {
		a.Feedback = feedback
	}
	return nil
}

func phaseEvent(c *phase.PhaseContext, p *domain.Phase, category event.EventCategory, props event.UpdatedProperties,
	s *session.Session, now types.Timestamp, tx *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypePhase, p.ID, p.Name, c.Project.ID, category, props, &s.Identity, now, tx)
}

// RequestApproval opens a pending approval and moves the phase to awaiting_approval.
func RequestApproval(phaseID types.ID, s *session.Session) (*domain.PhaseOutcome, error) {
	var outcome *domain.PhaseOutcome
	err := mutate(phase.TransitionRequestApproval, phaseID, s, func(tx *gorm.DB, fx *effects) error {
		c, err := phase.LoadPhaseContextFunc(phaseID, tx)
		if err != nil {
			return err
		}
		pending, err := loadPending(phaseID, tx)
		if err != nil {
			return err
		}
		if err := CheckRequestApproval(c, pending, s); err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		a := domain.Approval{ID: idgen.NextID(approvalIdWorker), PhaseID: c.Phase.ID, ProjectID: c.Project.ID,
			Status: domain.ApprovalStatusPending, RequestedAt: now, RequestedBy: s.Identity.ID}
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		from := c.Phase.Status
		if err := phase.Transit(&c.Phase, domain.PhaseStatusAwaitingApproval, nil, tx); err != nil {
			return err
		}
		if _, err := message.AppendSystemMessage(&c.Phase, s.Identity.ID, message.ContentApprovalRequested, now, tx); err != nil {
			return err
		}
		ev, err := phaseEvent(c, &c.Phase, event.EventCategoryApprovalRequested,
			event.StatusChange(string(from), string(c.Phase.Status)), s, now, tx)
		if err != nil {
			return err
		}
		fx.record(ev, phase.TransitionRequestApproval)

		outcome = &domain.PhaseOutcome{Phase: c.Phase, Project: c.Project, Approval: &a}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"phase": phaseID, "project": outcome.Project.ID, "actor": s.Identity.ID}).
		Info("approval requested")
	return outcome, nil
}

// Approve resolves the latest pending approval, approves the phase, starts the next one
// and refreshes the project progress.
func Approve(phaseID types.ID, s *session.Session) (*domain.PhaseOutcome, error) {
	var outcome *domain.PhaseOutcome
	err := mutate(phase.TransitionApprove, phaseID, s, func(tx *gorm.DB, fx *effects) error {
		c, err := phase.LoadPhaseContextFunc(phaseID, tx)
		if err != nil {
			return err
		}
		pending, err := loadPending(phaseID, tx)
		if err != nil {
			return err
		}
		if err := CheckApprove(c, pending, s); err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		if err := respond(pending, domain.ApprovalStatusApproved, "", s, now, tx); err != nil {
			return err
		}
		from := c.Phase.Status
		if err := phase.Transit(&c.Phase, domain.PhaseStatusApproved,
			map[string]interface{}{"approved_at": now, "approved_by": s.Identity.ID}, tx); err != nil {
			return err
		}
		c.Phase.ApprovedAt = now
		c.Phase.ApprovedBy = s.Identity.ID
		if _, err := message.AppendSystemMessage(&c.Phase, s.Identity.ID, message.ContentApproved, now, tx); err != nil {
			return err
		}
		ev, err := phaseEvent(c, &c.Phase, event.EventCategoryApproved,
			event.StatusChange(string(from), string(c.Phase.Status)), s, now, tx)
		if err != nil {
			return err
		}
		fx.record(ev, phase.TransitionApprove)

		if next, found := c.Next(); found && next.Status == domain.PhaseStatusNotStarted {
			if err := phase.Transit(&next, domain.PhaseStatusInProgress, nil, tx); err != nil {
				return err
			}
			if _, err := message.AppendSystemMessage(&next, s.Identity.ID, message.ContentPhaseStarted, now, tx); err != nil {
				return err
			}
			ev, err := phaseEvent(c, &next, event.EventCategoryPropertyUpdated,
				event.StatusChange(string(domain.PhaseStatusNotStarted), string(next.Status)), s, now, tx)
			if err != nil {
				return err
			}
			fx.record(ev, phase.TransitionStart)
		}

		p, progressEv, err := project.RecomputeProgressInTx(c.Project.ID, s, tx)
		if err != nil {
			return err
		}
		fx.record(progressEv, "")

		outcome = &domain.PhaseOutcome{Phase: c.Phase, Project: *p, Approval: pending}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"phase": phaseID, "project": outcome.Project.ID, "actor": s.Identity.ID,
		"progress": outcome.Project.ProgressPercentage}).Info("phase approved")
	return outcome, nil
}

// RequestChanges resolves the latest pending approval with feedback and sends the phase back.
func RequestChanges(phaseID types.ID, feedback string, s *session.Session) (*domain.PhaseOutcome, error) {
	if err := ValidateFeedback(feedback); err != nil {
		metrics.RecordRejection(phase.TransitionRequestChanges, rejectionKind(err))
		return nil, err
	}
	feedback = strings.TrimSpace(feedback)

	var outcome *domain.PhaseOutcome
	err := mutate(phase.TransitionRequestChanges, phaseID, s, func(tx *gorm.DB, fx *effects) error {
		c, err := phase.LoadPhaseContextFunc(phaseID, tx)
		if err != nil {
			return err
		}
		pending, err := loadPending(phaseID, tx)
		if err != nil {
			return err
		}
		if err := CheckRequestChanges(c, pending, s); err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		if err := respond(pending, domain.ApprovalStatusChangesRequested, feedback, s, now, tx); err != nil {
			return err
		}
		from := c.Phase.Status
		if err := phase.Transit(&c.Phase, domain.PhaseStatusChangesRequested, nil, tx); err != nil {
			return err
		}
		if _, err := message.AppendMessage(&c.Phase, domain.MessageTypeUser, s.Identity.ID, feedback, now, tx); err != nil {
			return err
		}
		props := append(event.StatusChange(string(from), string(c.Phase.Status)),
			event.UpdatedProperty{PropertyName: "Feedback", PropertyDesc: "Feedback", NewValue: feedback})
		ev, err := phaseEvent(c, &c.Phase, event.EventCategoryChangesRequested, props, s, now, tx)
		if err != nil {
			return err
		}
		fx.record(ev, phase.TransitionRequestChanges)

		outcome = &domain.PhaseOutcome{Phase: c.Phase, Project: c.Project, Approval: pending}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"phase": phaseID, "project": outcome.Project.ID, "actor": s.Identity.ID}).
		Info("changes requested")
	return outcome, nil
}

// StartPhase moves an accessible not_started phase to in_progress.
func StartPhase(phaseID types.ID, s *session.Session) (*domain.PhaseOutcome, error) {
	return simpleTransit(phase.TransitionStart, phaseID, domain.PhaseStatusInProgress, message.ContentPhaseStarted,
		CheckStartPhase, s)
}

// ReworkPhase moves a changes_requested phase back to in_progress.
func ReworkPhase(phaseID types.ID, s *session.Session) (*domain.PhaseOutcome, error) {
	return simpleTransit(phase.TransitionRework, phaseID, domain.PhaseStatusInProgress, message.ContentReworkStarted,
		CheckReworkPhase, s)
}

func simpleTransit(transition string, phaseID types.ID, to domain.PhaseStatus, content string,
	check func(*phase.PhaseContext, *session.Session) error, s *session.Session) (*domain.PhaseOutcome, error) {
	var outcome *domain.PhaseOutcome
	err := mutate(transition, phaseID, s, func(tx *gorm.DB, fx *effects) error {
		c, err := phase.LoadPhaseContextFunc(phaseID, tx)
		if err != nil {
			return err
		}
		if err := check(c, s); err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		from := c.Phase.Status
		if err := phase.Transit(&c.Phase, to, nil, tx); err != nil {
			return err
		}
		if _, err := message.AppendSystemMessage(&c.Phase, s.Identity.ID, content, now, tx); err != nil {
			return err
		}
		ev, err := phaseEvent(c, &c.Phase, event.EventCategoryPropertyUpdated,
			event.StatusChange(string(from), string(c.Phase.Status)), s, now, tx)
		if err != nil {
			return err
		}
		fx.record(ev, transition)

		outcome = &domain.PhaseOutcome{Phase: c.Phase, Project: c.Project}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"phase": phaseID, "transition": transition, "actor": s.Identity.ID}).Info("phase transited")
	return outcome, nil
}

// QueryApprovals returns the approval history of a phase, newest first.
func QueryApprovals(phaseID types.ID, s *session.Session) ([]domain.Approval, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	c, err := phase.LoadPhaseContextFunc(phaseID, db)
	if err != nil {
		return nil, err
	}
	if !s.CanView(c.Project.ClientEmail) {
		return nil, bizerror.ErrForbidden
	}
	approvals := []domain.Approval{}
	if err := db.Where("phase_id = ?", phaseID).Order("requested_at DESC").Order("id DESC").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}
