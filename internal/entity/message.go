package entity

import "time"

// Tombstone replaces the content of a deleted message.
const Tombstone = "This message has been deleted."

type Message struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"not null" json:"content"`
	FileURL   *string   `json:"file-url,omitempty"`
	MemberID  string    `gorm:"not null;index" json:"member-id"`
	ChannelID string    `gorm:"not null;index:channel_created_index" json:"channel-id"`
	Deleted   bool      `gorm:"not null;default:false" json:"deleted"`
	Edited    bool      `gorm:"not null;default:false" json:"edited"`
	CreatedAt time.Time `gorm:"not null;index:channel_created_index" json:"created-at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated-at"`

	Member Member `gorm:"foreignKey:MemberID;references:ID" json:"member"`
}

// HasAttachment reports whether a file was posted with the message.
func (m *Message) HasAttachment() bool {
	return m.FileURL != nil && *m.FileURL != ""
}
