package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Tasks       []Task        `gorm:"foreignKey:UserID" json:"tasks,omitempty"`
	Memberships []GroupMember `gorm:"foreignKey:UserID" json:"-"`
	SubUsers    []SubUser     `gorm:"foreignKey:ParentID" json:"subUsers,omitempty"`
}
