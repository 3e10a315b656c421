package processors

import "time"

// MaturityStatus is the lifecycle label shared by bonds, commercial paper,
// debt notes and money-market notes. Real-estate and private-equity
// positions carry a server-reported status string instead and never use this
// classifier.
type MaturityStatus string

const (
	StatusMatured      MaturityStatus = "Matured"
	StatusMaturingSoon MaturityStatus = "MaturingSoon"
	StatusActive       MaturityStatus = "Active"
	StatusUnknown      MaturityStatus = "Unknown"
)

// maturingSoonDays is the inclusive upper bound of the MaturingSoon band.
const maturingSoonDays = 30

// Classify re-evaluates the lifecycle state against now. There is no stored
// transition history; the result depends only on the maturity date and the
// clock.
func Classify(maturity *time.Time, now time.Time) MaturityStatus {
	d, ok := DaysToMaturity(maturity, now)
	if !ok {
		return StatusUnknown
	}
	switch {
	case d <= 0:
		return StatusMatured
	case d <= maturingSoonDays:
		return StatusMaturingSoon
	default:
		return StatusActive
	}
}
