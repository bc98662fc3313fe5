package offer

import "time"

// VerificationWindow is how long after move-in a tenant has to confirm
// or dispute the move-in.
const VerificationWindow = 24 * time.Hour

// ComputeDeadline returns the move-in verification deadline for the
// given move-in date. A nil move-in date means the clock starts now.
func ComputeDeadline(moveInDate *time.Time) time.Time {
	base := time.Now().UTC()
	if moveInDate != nil {
		base = moveInDate.UTC()
	}
	return base.Add(VerificationWindow)
}
