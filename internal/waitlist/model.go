package waitlist

import "time"

// Entry is a member's place in a per-service queue. Positions are 1-based
// and contiguous within a service: every remove or reorder re-packs the
// sequence in the same transaction.
type Entry struct {
	ID             int64      `db:"id" json:"id"`
	OrganizationID int64      `db:"organization_id" json:"organization_id"`
	ServiceID      int64      `db:"service_id" json:"service_id"`
	UserID         int64      `db:"user_id" json:"user_id"`
	Position       int        `db:"position" json:"position"`
	JoinedAt       time.Time  `db:"joined_at" json:"joined_at"`
	NotifiedAt     *time.Time `db:"notified_at" json:"notified_at,omitempty"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	NotifyByEmail  bool       `db:"notify_by_email" json:"notify_by_email"`
	NotifyBySms    bool       `db:"notify_by_sms" json:"notify_by_sms"`
	IsActive       bool       `db:"is_active" json:"is_active"`
}

type JoinRequest struct {
	UserID        int64 `json:"user_id" binding:"required"`
	NotifyByEmail bool  `json:"notify_by_email"`
	NotifyBySms   bool  `json:"notify_by_sms"`
}

type ReorderRequest struct {
	Position int `json:"position" binding:"required"`
}

type NotifyRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

type PositionResponse struct {
	Position int `json:"position"`
}
