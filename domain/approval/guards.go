package approval

import (
	"portal/bizerror"
	"portal/domain"
	"portal/domain/phase"
	"portal/session"
	"strings"
)

// The checks below run on state read inside the transaction and never write.
// Their order decides which error wins when several preconditions fail.

func CheckRequestApproval(c *phase.PhaseContext, pending *domain.Approval, s *session.Session) error {
	if !s.IsAdmin() {
		return bizerror.ErrForbidden
	}
	if !c.Accessible() {
		return bizerror.ErrPhaseLocked
	}
	if c.Phase.Status != domain.PhaseStatusInProgress && c.Phase.Status != domain.PhaseStatusChangesRequested {
		return bizerror.ErrPhaseInvalidState
	}
	if pending != nil {
		return bizerror.ErrApprovalAlreadyPending
	}
	return nil
}

func CheckApprove(c *phase.PhaseContext, pending *domain.Approval, s *session.Session) error {
	if !s.CanRespondFor(c.Project.ClientEmail) {
		return bizerror.ErrForbidden
	}
	if pending == nil {
		return bizerror.ErrPendingApprovalNotFound
	}
	if !c.Accessible() {
		return bizerror.ErrPhaseLocked
	}
	if c.Phase.Status != domain.PhaseStatusAwaitingApproval {
		return bizerror.ErrPhaseInvalidState
	}
	return nil
}

// ValidateFeedback runs before anything is read.
func ValidateFeedback(feedback string) error {
	if strings.TrimSpace(feedback) == "" {
		return bizerror.ErrFeedbackRequired
	}
	return nil
}

func CheckRequestChanges(c *phase.PhaseContext, pending *domain.Approval, s *session.Session) error {
	if !s.CanRespondFor(c.Project.ClientEmail) {
		return bizerror.ErrForbidden
	}
	if pending == nil {
		return bizerror.ErrPendingApprovalNotFound
	}
	if c.Phase.Status != domain.PhaseStatusAwaitingApproval {
		return bizerror.ErrPhaseInvalidState
	}
	return nil
}

func CheckStartPhase(c *phase.PhaseContext, s *session.Session) error {
	if !s.IsAdmin() {
		return bizerror.ErrForbidden
	}
	if !c.Accessible() {
		return bizerror.ErrPhaseLocked
	}
	if c.Phase.Status != domain.PhaseStatusNotStarted {
		return bizerror.ErrPhaseInvalidState
	}
	return nil
}

func CheckReworkPhase(c *phase.PhaseContext, s *session.Session) error {
	if !s.IsAdmin() {
		return bizerror.ErrForbidden
	}
	if c.Phase.Status != domain.PhaseStatusChangesRequested {
		return bizerror.ErrPhaseInvalidState
	}
	return nil
}

// LatestPending picks the most recently requested pending approval, ties broken by id.
func LatestPending(approvals []domain.Approval) *domain.Approval {
	var latest *domain.Approval
	for i := range approvals {
		a := &approvals[i]
		if a.Status != domain.ApprovalStatusPending {
			continue
		}
		if latest == nil || a.RequestedAt.Time().After(latest.RequestedAt.Time()) ||
			(a.RequestedAt.Time().Equal(latest.RequestedAt.Time()) && a.ID > latest.ID) {
			latest = a
		}
	}
	return latest
}
