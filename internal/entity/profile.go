package entity

import "time"

// Profile is the global account behind every membership.
type Profile struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	ImageURL  string    `json:"image-url"`
	CreatedAt time.Time `gorm:"not null;index" json:"created-at"`
}
