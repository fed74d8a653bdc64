package approval_test

import (
	"portal/bizerror"
	"portal/domain"
	"portal/domain/approval"
	"portal/domain/phase"
	"portal/testinfra"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func buildContext(target int, statuses ...domain.PhaseStatus) *phase.PhaseContext {
	ordered := make([]domain.Phase, 0, len(statuses))
	for i, s := range statuses {
		ordered = append(ordered, domain.Phase{ID: types.ID(100 + i), ProjectID: 9, Order: i + 1, Status: s})
	}
	return &phase.PhaseContext{
		Phase:   ordered[target],
		Project: domain.Project{ID: 9, ClientEmail: "ann@client.test", Status: domain.ProjectStatusActive},
		Ordered: ordered,
	}
}

func TestCheckRequestApproval(t *testing.T) {
	RegisterTestingT(t)
	admin := testinfra.AdminSession()

	t.Run("should pass for accessible in_progress or changes_requested phase", func(t *testing.T) {
		Expect(approval.CheckRequestApproval(buildContext(0, domain.PhaseStatusInProgress), nil, admin)).To(BeNil())
		Expect(approval.CheckRequestApproval(buildContext(1, domain.PhaseStatusApproved, domain.PhaseStatusChangesRequested),
			nil, admin)).To(BeNil())
	})

	t.Run("should be forbidden for clients", func(t *testing.T) {
		err := approval.CheckRequestApproval(buildContext(0, domain.PhaseStatusInProgress), nil,
			testinfra.ClientSession("ann@client.test"))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should report locked before lifecycle state", func(t *testing.T) {
		c := buildContext(2, domain.PhaseStatusApproved, domain.PhaseStatusInProgress, domain.PhaseStatusNotStarted)
		Expect(approval.CheckRequestApproval(c, nil, admin)).To(Equal(bizerror.ErrPhaseLocked))
	})

	t.Run("should reject phases in other states", func(t *testing.T) {
		for _, s := range []domain.PhaseStatus{domain.PhaseStatusNotStarted, domain.PhaseStatusAwaitingApproval, domain.PhaseStatusApproved} {
			Expect(approval.CheckRequestApproval(buildContext(0, s), nil, admin)).To(Equal(bizerror.ErrPhaseInvalidState))
		}
	})

	t.Run("should reject when an approval is already pending", func(t *testing.T) {
		pending := &domain.Approval{ID: 1, Status: domain.ApprovalStatusPending}
		err := approval.CheckRequestApproval(buildContext(0, domain.PhaseStatusChangesRequested), pending, admin)
		Expect(err).To(Equal(bizerror.ErrApprovalAlreadyPending))
		Expect(bizerror.KindOf(err)).To(Equal(bizerror.KindInvalidState))
	})
}

func TestCheckApprove(t *testing.T) {
	RegisterTestingT(t)
	pending := &domain.Approval{ID: 1, Status: domain.ApprovalStatusPending}

	t.Run("should allow admin and the project client", func(t *testing.T) {
		c := buildContext(1, domain.PhaseStatusApproved, domain.PhaseStatusAwaitingApproval)
		Expect(approval.CheckApprove(c, pending, testinfra.AdminSession())).To(BeNil())
		Expect(approval.CheckApprove(c, pending, testinfra.ClientSession("ANN@client.test"))).To(BeNil())
	})

	t.Run("should be forbidden for another client", func(t *testing.T) {
		c := buildContext(0, domain.PhaseStatusAwaitingApproval)
		Expect(approval.CheckApprove(c, pending, testinfra.ClientSession("bob@client.test"))).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should fail with not found without pending approval", func(t *testing.T) {
		c := buildContext(0, domain.PhaseStatusAwaitingApproval)
		err := approval.CheckApprove(c, nil, testinfra.AdminSession())
		Expect(err).To(Equal(bizerror.ErrPendingApprovalNotFound))
		Expect(bizerror.KindOf(err)).To(Equal(bizerror.KindNotFound))
	})

	t.Run("should re-check gating", func(t *testing.T) {
		c := buildContext(1, domain.PhaseStatusInProgress, domain.PhaseStatusAwaitingApproval)
		Expect(approval.CheckApprove(c, pending, testinfra.AdminSession())).To(Equal(bizerror.ErrPhaseLocked))
	})

	t.Run("should reject phase not awaiting approval", func(t *testing.T) {
		c := buildContext(0, domain.PhaseStatusInProgress)
		Expect(approval.CheckApprove(c, pending, testinfra.AdminSession())).To(Equal(bizerror.ErrPhaseInvalidState))
	})
}

func TestCheckRequestChanges(t *testing.T) {
	RegisterTestingT(t)
	pending := &domain.Approval{ID: 1, Status: domain.ApprovalStatusPending}

	t.Run("should require feedback", func(t *testing.T) {
		for _, f := range []string{"", "   ", "\n\t"} {
			err := approval.ValidateFeedback(f)
			Expect(err).To(Equal(bizerror.ErrFeedbackRequired))
			Expect(bizerror.KindOf(err)).To(Equal(bizerror.KindValidation))
		}
		Expect(approval.ValidateFeedback("logo colors are off")).To(BeNil())
	})

	t.Run("should check responder, pending approval and state in order", func(t *testing.T) {
		c := buildContext(0, domain.PhaseStatusAwaitingApproval)
		Expect(approval.CheckRequestChanges(c, pending, testinfra.ClientSession("bob@client.test"))).To(Equal(bizerror.ErrForbidden))
		Expect(approval.CheckRequestChanges(c, nil, testinfra.ClientSession("ann@client.test"))).To(Equal(bizerror.ErrPendingApprovalNotFound))
		Expect(approval.CheckRequestChanges(c, pending, testinfra.ClientSession("ann@client.test"))).To(BeNil())

		c = buildContext(0, domain.PhaseStatusApproved)
		Expect(approval.CheckRequestChanges(c, pending, testinfra.AdminSession())).To(Equal(bizerror.ErrPhaseInvalidState))
	})
}

func TestCheckStartAndRework(t *testing.T) {
	RegisterTestingT(t)
	admin := testinfra.AdminSession()

	t.Run("should start only accessible not_started phases", func(t *testing.T) {
		Expect(approval.CheckStartPhase(buildContext(1, domain.PhaseStatusApproved, domain.PhaseStatusNotStarted), admin)).To(BeNil())
		Expect(approval.CheckStartPhase(buildContext(1, domain.PhaseStatusInProgress, domain.PhaseStatusNotStarted), admin)).
			To(Equal(bizerror.ErrPhaseLocked))
		Expect(approval.CheckStartPhase(buildContext(0, domain.PhaseStatusInProgress), admin)).To(Equal(bizerror.ErrPhaseInvalidState))
		Expect(approval.CheckStartPhase(buildContext(0, domain.PhaseStatusNotStarted), testinfra.ClientSession("ann@client.test"))).
			To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should rework only changes_requested phases", func(t *testing.T) {
		Expect(approval.CheckReworkPhase(buildContext(0, domain.PhaseStatusChangesRequested), admin)).To(BeNil())
		Expect(approval.CheckReworkPhase(buildContext(0, domain.PhaseStatusApproved), admin)).To(Equal(bizerror.ErrPhaseInvalidState))
		Expect(approval.CheckReworkPhase(buildContext(0, domain.PhaseStatusChangesRequested), testinfra.ClientSession("ann@client.test"))).
			To(Equal(bizerror.ErrForbidden))
	})
}

func TestLatestPending(t *testing.T) {
	RegisterTestingT(t)
	t1 := types.TimestampOfDate(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := types.TimestampOfDate(2021, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("should return nil when nothing is pending", func(t *testing.T) {
		Expect(approval.LatestPending(nil)).To(BeNil())
		Expect(approval.LatestPending([]domain.Approval{{ID: 1, Status: domain.ApprovalStatusApproved, RequestedAt: t2}})).To(BeNil())
	})

	t.Run("should pick the most recently requested pending approval", func(t *testing.T) {
		approvals := []domain.Approval{
			{ID: 3, Status: domain.ApprovalStatusPending, RequestedAt: t1},
			{ID: 1, Status: domain.ApprovalStatusPending, RequestedAt: t2},
			{ID: 9, Status: domain.ApprovalStatusChangesRequested, RequestedAt: t2},
		}
		Expect(approval.LatestPending(approvals).ID).To(Equal(types.ID(1)))
	})

	t.Run("should break ties by id", func(t *testing.T) {
		approvals := []domain.Approval{
			{ID: 5, Status: domain.ApprovalStatusPending, RequestedAt: t1},
			{ID: 7, Status: domain.ApprovalStatusPending, RequestedAt: t1},
			{ID: 6, Status: domain.ApprovalStatusPending, RequestedAt: t1},
		}
		Expect(approval.LatestPending(approvals).ID).To(Equal(types.ID(7)))
	})
}
