package phase_test

import (
	"portal/domain"
	"portal/domain/phase"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	Describe("AvailableTransitions", func() {
		It("should list outgoing transitions of each state", func() {
			sm := phase.Lifecycle

			Ω(sm.AvailableTransitions(domain.PhaseStatusNotStarted, "")).Should(Equal([]phase.Transition{
				{Name: "start", From: domain.PhaseStatusNotStarted, To: domain.PhaseStatusInProgress},
			}))
			Ω(sm.AvailableTransitions(domain.PhaseStatusAwaitingApproval, "")).Should(Equal([]phase.Transition{
				{Name: "approve", From: domain.PhaseStatusAwaitingApproval, To: domain.PhaseStatusApproved},
				{Name: "request_changes", From: domain.PhaseStatusAwaitingApproval, To: domain.PhaseStatusChangesRequested},
			}))
			Ω(sm.AvailableTransitions(domain.PhaseStatusChangesRequested, "")).Should(Equal([]phase.Transition{
				{Name: "request_approval", From: domain.PhaseStatusChangesRequested, To: domain.PhaseStatusAwaitingApproval},
				{Name: "rework", From: domain.PhaseStatusChangesRequested, To: domain.PhaseStatusInProgress},
			}))
			Ω(len(sm.AvailableTransitions(domain.PhaseStatus("UNKNOWN"), ""))).Should(Equal(0))
		})

		It("should filter by target state", func() {
			Ω(phase.Lifecycle.AvailableTransitions("", domain.PhaseStatusAwaitingApproval)).Should(HaveLen(2))
		})
	})

	Describe("CanTransit", func() {
		It("should never leave the approved state", func() {
			for _, to := range phase.Lifecycle.States {
				Expect(phase.Lifecycle.CanTransit(domain.PhaseStatusApproved, to)).To(BeFalse())
			}
		})

		It("should follow the approval lifecycle", func() {
			Expect(phase.Lifecycle.CanTransit(domain.PhaseStatusInProgress, domain.PhaseStatusAwaitingApproval)).To(BeTrue())
			Expect(phase.Lifecycle.CanTransit(domain.PhaseStatusNotStarted, domain.PhaseStatusAwaitingApproval)).To(BeFalse())
			Expect(phase.Lifecycle.CanTransit(domain.PhaseStatusAwaitingApproval, domain.PhaseStatusAwaitingApproval)).To(BeFalse())
			Expect(phase.Lifecycle.CanTransit(domain.PhaseStatusChangesRequested, domain.PhaseStatusInProgress)).To(BeTrue())
		})
	})
})
