package valueobjects

import "time"

// Status is the lifecycle state of a voucher.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusClaimed   Status = "CLAIMED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusClaimed, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// IsFinal reports whether no transition leaves s other than purge.
// CLAIMED is not final: a failed payout rolls it back to ACTIVE.
func (s Status) IsFinal() bool {
	return s == StatusCancelled || s == StatusExpired
}

func (s Status) IsRedeemable() bool {
	return s == StatusActive
}

func (s Status) String() string {
	return string(s)
}

// DeriveStatus computes the authoritative status from the stored facts.
// Precedence: claimed, then cancelled, then past expiry, else active.
// A voucher is still active at exactly expiresAt.
func DeriveStatus(claimed bool, cancelledAt *time.Time, expiresAt, now time.Time) Status {
	switch {
	case claimed:
		return StatusClaimed
	case cancelledAt != nil:
		return StatusCancelled
	case now.After(expiresAt):
		return StatusExpired
	default:
		return StatusActive
	}
}
