package phase_test

import (
	"portal/domain"
	"portal/domain/phase"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sequencer", func() {
	var (
		p1, p3, p5 domain.Phase
		ordered    []domain.Phase
	)

	BeforeEach(func() {
		// non-contiguous orders are still a valid total order
		p1 = domain.Phase{ID: 11, Order: 1, Status: domain.PhaseStatusApproved}
		p3 = domain.Phase{ID: 13, Order: 3, Status: domain.PhaseStatusInProgress}
		p5 = domain.Phase{ID: 15, Order: 5, Status: domain.PhaseStatusNotStarted}
		ordered = phase.SortPhases([]domain.Phase{p5, p1, p3})
	})

	Describe("SortPhases", func() {
		It("should sort by order ascending without touching the input", func() {
			input := []domain.Phase{p5, p1, p3}
			Expect(phase.SortPhases(input)).To(Equal([]domain.Phase{p1, p3, p5}))
			Expect(input).To(Equal([]domain.Phase{p5, p1, p3}))
		})

		It("should accept empty input", func() {
			Expect(phase.SortPhases(nil)).To(BeEmpty())
		})
	})

	Describe("IsAccessible", func() {
		It("should never gate the first phase", func() {
			Expect(phase.IsAccessible(p1, ordered)).To(BeTrue())

			single := []domain.Phase{{ID: 1, Order: 1, Status: domain.PhaseStatusNotStarted}}
			Expect(phase.IsAccessible(single[0], single)).To(BeTrue())
		})

		It("should use the previous phase in sorted order", func() {
			Expect(phase.IsAccessible(p3, ordered)).To(BeTrue())
			Expect(phase.IsAccessible(p5, ordered)).To(BeFalse())
		})

		It("should hold for every combination of phase states", func() {
			statuses := phase.Lifecycle.States
			for _, s1 := range statuses {
				for _, s2 := range statuses {
					seq := []domain.Phase{
						{ID: 1, Order: 1, Status: s1},
						{ID: 2, Order: 2, Status: s2},
						{ID: 3, Order: 3, Status: domain.PhaseStatusNotStarted},
					}
					Expect(phase.IsAccessible(seq[0], seq)).To(BeTrue())
					Expect(phase.IsAccessible(seq[1], seq)).To(Equal(s1 == domain.PhaseStatusApproved))
					Expect(phase.IsAccessible(seq[2], seq)).To(Equal(s2 == domain.PhaseStatusApproved))
				}
			}
		})

		It("should reject a phase that is not part of the sequence", func() {
			Expect(phase.IsAccessible(domain.Phase{ID: 99, Order: 1}, ordered)).To(BeFalse())
		})
	})

	Describe("NextPhase and PreviousPhase", func() {
		It("should navigate the sequence", func() {
			next, found := phase.NextPhase(p1, ordered)
			Expect(found).To(BeTrue())
			Expect(next).To(Equal(p3))

			_, found = phase.NextPhase(p5, ordered)
			Expect(found).To(BeFalse())

			prev, found := phase.PreviousPhase(p5, ordered)
			Expect(found).To(BeTrue())
			Expect(prev).To(Equal(p3))

			_, found = phase.PreviousPhase(p1, ordered)
			Expect(found).To(BeFalse())
		})
	})
})
