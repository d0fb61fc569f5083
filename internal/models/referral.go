package models

import (
	"time"

	"github.com/google/uuid"
)

type ReferralCode struct {
	ID        uuid.UUID
	Code      string
	OwnerID   uuid.UUID
	IsActive  bool
	MaxUses   int
	Uses      int
	CreatedAt time.Time
}

// Exhausted reports whether the code reached its use limit. Zero means
// unlimited.
func (r ReferralCode) Exhausted() bool {
	return r.MaxUses > 0 && r.Uses >= r.MaxUses
}
