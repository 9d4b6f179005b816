package service

// Credit economics: 5 credits per approved upload, surprise unlocked at 500.
const (
	CreditsPerApproval = 5
	SurpriseThreshold  = 500
)

// ReadingProgressPercent returns how much of the catalog the user has read,
// as a percentage clamped to [0,100]. An empty catalog is 0, not a division
// error.
func ReadingProgressPercent(booksRead, totalBooks int) float64 {
	if totalBooks <= 0 {
		return 0
	}
	pct := 100 * float64(booksRead) / float64(totalBooks)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// SurpriseEligible reports whether the credit balance has reached the
// surprise milestone.
func SurpriseEligible(credits int) bool {
	return credits >= SurpriseThreshold
}

// SurpriseProgressPercent returns progress toward the surprise milestone,
// capped at 100.
func SurpriseProgressPercent(credits int) float64 {
	if credits <= 0 {
		return 0
	}
	pct := 100 * float64(credits) / float64(SurpriseThreshold)
	if pct > 100 {
		return 100
	}
	return pct
}

// CreditsToSurprise returns how many credits remain until the surprise,
// zero once reached.
func CreditsToSurprise(credits int) int {
	if credits >= SurpriseThreshold {
		return 0
	}
	return SurpriseThreshold - credits
}
