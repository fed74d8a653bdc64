package phase

import (
	"portal/domain"
	"sort"

	"github.com/fundwit/go-commons/types"
)

// SortPhases returns a copy of phases ordered by Order ascending.
// Duplicate orders inside one project are a data integrity error and yield an unspecified order.
func SortPhases(phases []domain.Phase) []domain.Phase {
	ordered := make([]domain.Phase, len(phases))
	copy(ordered, phases)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})
	return ordered
}

// IsAccessible reports whether p is unlocked: it is the first phase of the sequence,
// or the phase right before it is approved. A phase absent from ordered is not accessible.
func IsAccessible(p domain.Phase, ordered []domain.Phase) bool {
	idx := indexOf(p.ID, ordered)
	if idx < 0 {
		return false
	}
	if idx == 0 {
		return true
	}
	return ordered[idx-1].Status == domain.PhaseStatusApproved
}

func NextPhase(p domain.Phase, ordered []domain.Phase) (domain.Phase, bool) {
	idx := indexOf(p.ID, ordered)
	if idx < 0 || idx+1 >= len(ordered) {
		return domain.Phase{}, false
	}
	return ordered[idx+1], true
}

func PreviousPhase(p domain.Phase, ordered []domain.Phase) (domain.Phase, bool) {
	idx := indexOf(p.ID, ordered)
	if idx <= 0 {
		return domain.Phase{}, false
	}
	return ordered[idx-1], true
}

func indexOf(id types.ID, ordered []domain.Phase) int {
	for i, p := range ordered {
		if p.ID == id {
			return i
		}
	}
	return -1
}
