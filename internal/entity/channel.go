package entity

import "time"

type ChannelType string

const (
	ChannelText  ChannelType = "TEXT"
	ChannelAudio ChannelType = "AUDIO"
	ChannelVideo ChannelType = "VIDEO"
)

func (t ChannelType) Valid() bool {
	switch t {
	case ChannelText, ChannelAudio, ChannelVideo:
		return true
	}
	return false
}

type Channel struct {
	ID        string      `gorm:"primaryKey" json:"id"`
	Name      string      `gorm:"not null" json:"name"`
	Type      ChannelType `gorm:"not null;default:TEXT;index" json:"type"`
	ProfileID string      `gorm:"not null;index" json:"profile-id"`
	ServerID  string      `gorm:"not null;index" json:"server-id"`
	CreatedAt time.Time   `gorm:"not null;index" json:"created-at"`
}
