// Package credit implements the tiered hours-to-credits eligibility rules
// shared by the CEP and report pipelines.
package credit

import "sort"

// Tier awards Credits once a student has logged at least Hours.
type Tier struct {
	Hours   float64 `json:"hours"`
	Credits int     `json:"credits"`
}

// Approval status values shared by CEP and Field Project evaluations.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatus reports whether s is a recognised approval status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Compute returns the credits of the highest tier whose hours threshold the
// student meets. Tiers arrive unordered from configuration; they are sorted
// descending by hours here. With no tiers, or hours below every threshold,
// the result is 0. Tiers sharing a threshold keep their configured order
// (stable sort), so the tier listed first wins.
func Compute(totalHours float64, tiers []Tier) int {
	if len(tiers) == 0 || totalHours < 0 {
		return 0
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Hours > sorted[j].Hours
	})
	for _, tier := range sorted {
		if totalHours >= tier.Hours {
			return tier.Credits
		}
	}
	return 0
}

// Allot derives the credits recorded on an approval. Credits are a reward
// tied strictly to approval: any other status zeroes them regardless of the
// hours completed.
func Allot(status string, computed int) int {
	if status == StatusApproved {
		return computed
	}
	return 0
}
