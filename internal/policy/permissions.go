package policy

import "guildhall/internal/entity"

type Permissions struct {
	CanEdit   bool `json:"can-edit"`
	CanDelete bool `json:"can-delete"`
}

// ComputePermissions decides what viewer may do with msg written by author.
// A nil viewer is someone without a membership in the server: no role, no rights.
func ComputePermissions(viewer *entity.Member, msg *entity.Message, author *entity.Member) Permissions {
	if viewer == nil || msg == nil || msg.Deleted {
		return Permissions{}
	}

	isAuthor := IsSameMember(viewer, author)

	return Permissions{
		CanEdit:   isAuthor && !msg.HasAttachment(),
		CanDelete: isPrivileged(viewer.Role) || isAuthor,
	}
}

// IsSameMember compares memberships, never profiles. Empty ids never match.
func IsSameMember(a, b *entity.Member) bool {
	if a == nil || b == nil || a.ID == "" {
		return false
	}
	return a.ID == b.ID
}

// CanManageChannels gates channel creation.
func CanManageChannels(viewer *entity.Member) bool {
	return viewer != nil && isPrivileged(viewer.Role)
}
