package models

import "time"

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteExpired  InviteStatus = "expired"
)

// Invite is a single-use, time-boxed token granting the redeemer membership
// one level below the inviter. pending -> accepted and pending -> expired are
// the only transitions; both are terminal.
type Invite struct {
	ID        uint64       `gorm:"primarykey" json:"id"`
	Token     string       `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	GroupID   uint64       `gorm:"not null;index" json:"groupId"`
	InviterID uint64       `gorm:"not null;index" json:"inviterId"`
	InviteeID *uint64      `json:"inviteeId,omitempty"`
	Status    InviteStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ExpiresAt time.Time    `gorm:"not null" json:"expiresAt"`
	UsedAt    *time.Time   `json:"usedAt,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`

	// Relations
	Group   Group `gorm:"foreignKey:GroupID" json:"-"`
	Inviter User  `gorm:"foreignKey:InviterID" json:"-"`
}
