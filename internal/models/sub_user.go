package models

import "time"

// SubUser is the hierarchical delegation edge, parallel to GroupMember: it
// answers "who are X's direct reports in group G". Every accepted invite or
// explicit sub-user creation writes both edges; the duplication is a
// deliberate dual index (flat lookup vs. tree traversal).
type SubUser struct {
	ID       uint64     `gorm:"primarykey" json:"id"`
	ParentID uint64     `gorm:"not null;uniqueIndex:idx_sub_user_edge" json:"parentId"`
	UserID   uint64     `gorm:"not null;uniqueIndex:idx_sub_user_edge" json:"userId"`
	GroupID  uint64     `gorm:"not null;uniqueIndex:idx_sub_user_edge" json:"groupId"`
	Role     MemberRole `gorm:"type:varchar(20);not null" json:"role"`
	Level    int        `gorm:"not null" json:"level"`
	JoinedAt time.Time  `json:"joinedAt"`

	// Relations
	Parent User `gorm:"foreignKey:ParentID" json:"-"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
