package entity

import "time"

type MemberRole string

const (
	RoleAdmin     MemberRole = "ADMIN"
	RoleModerator MemberRole = "MODERATOR"
	RoleGuest     MemberRole = "GUEST"
)

// Member is a profile's role-scoped identity inside one server.
type Member struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	Role      MemberRole `gorm:"not null;default:GUEST;index" json:"role"`
	ProfileID string     `gorm:"not null;index;uniqueIndex:member_server_index" json:"profile-id"`
	ServerID  string     `gorm:"not null;index;uniqueIndex:member_server_index" json:"server-id"`
	CreatedAt time.Time  `gorm:"not null;index" json:"created-at"`

	Profile Profile `gorm:"foreignKey:ProfileID;references:ID" json:"profile"`
}

func (m *Member) DisplayName() string {
	return m.Profile.Name
}

func (m *Member) AvatarURL() string {
	return m.Profile.ImageURL
}
