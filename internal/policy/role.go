package policy

import (
	"fmt"

	"guildhall/internal/entity"
)

// Icon names a glyph the view layer knows how to draw.
type Icon string

const (
	IconNone        Icon = ""
	IconShieldCheck Icon = "shield-check"
	IconShieldAlert Icon = "shield-alert"
	IconHash        Icon = "hash"
	IconMic         Icon = "mic"
	IconVideo       Icon = "video"
)

var roleBadges = map[entity.MemberRole]Icon{
	entity.RoleGuest:     IconNone,
	entity.RoleModerator: IconShieldCheck,
	entity.RoleAdmin:     IconShieldAlert,
}

// Lower value means more privileged. Members are listed in this order.
var rolePrecedence = map[entity.MemberRole]int{
	entity.RoleAdmin:     0,
	entity.RoleModerator: 1,
	entity.RoleGuest:     2,
}

var channelIcons = map[entity.ChannelType]Icon{
	entity.ChannelText:  IconHash,
	entity.ChannelAudio: IconMic,
	entity.ChannelVideo: IconVideo,
}

// RoleBadge panics on a role outside the enumeration.
func RoleBadge(role entity.MemberRole) Icon {
	icon, ok := roleBadges[role]
	if !ok {
		panic(fmt.Sprintf("policy: no badge for role %q", role))
	}
	return icon
}

func ChannelIcon(t entity.ChannelType) Icon {
	icon, ok := channelIcons[t]
	if !ok {
		panic(fmt.Sprintf("policy: no icon for channel type %q", t))
	}
	return icon
}

// Precedence ranks roles; unknown roles rank after every known one.
func Precedence(role entity.MemberRole) int {
	if p, ok := rolePrecedence[role]; ok {
		return p
	}
	return len(rolePrecedence)
}

// Roles returns the enumeration in precedence order.
func Roles() []entity.MemberRole {
	return []entity.MemberRole{entity.RoleAdmin, entity.RoleModerator, entity.RoleGuest}
}

func isPrivileged(role entity.MemberRole) bool {
	return role == entity.RoleAdmin || role == entity.RoleModerator
}
