package entity

import "time"

type Server struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	ImageURL   string    `json:"image-url"`
	InviteCode string    `gorm:"not null;uniqueIndex" json:"invite-code"`
	ProfileID  string    `gorm:"not null;index" json:"profile-id"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created-at"`

	Channels []Channel `gorm:"foreignKey:ServerID;references:ID" json:"channels,omitempty"`
	Members  []Member  `gorm:"foreignKey:ServerID;references:ID" json:"members,omitempty"`
}
