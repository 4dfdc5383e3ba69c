package chatitem

import (
	"guildhall/internal/attachment"
	"guildhall/internal/entity"
	"guildhall/internal/policy"
)

const (
	TimestampFormat = "2 Jan 2006, 15:04"
	EditHint        = "Press escape to cancel, enter to save"
	EditedMarker    = "(edited)"
)

// ViewModel is everything a renderer needs to draw one message.
type ViewModel struct {
	ID    string
	State State

	AuthorID     string
	AuthorName   string
	AuthorAvatar string
	AuthorRole   entity.MemberRole
	IsViewer     bool
	RoleBadge    policy.Icon
	Timestamp    string

	Attachment    attachment.Kind
	AttachmentURL string

	Content     string
	ShowContent bool
	ShowEditor  bool
	Edited      bool
	Deleted     bool
	Draft       string
	Hint        string

	Permissions policy.Permissions
	Busy        bool
	Error       string
}

func (v ViewModel) IsImage() bool    { return v.Attachment == attachment.Image }
func (v ViewModel) IsDocument() bool { return v.Attachment == attachment.Document }

func (it *Item) View() ViewModel {
	it.mu.Lock()
	defer it.mu.Unlock()

	author := &it.msg.Member
	kind := attachment.Classify(it.msg.FileURL)

	vm := ViewModel{
		ID:           it.msg.ID,
		State:        it.state,
		AuthorID:     author.ID,
		AuthorName:   author.DisplayName(),
		AuthorAvatar: author.AvatarURL(),
		AuthorRole:   author.Role,
		IsViewer:     policy.IsSameMember(it.viewer, author),
		RoleBadge:    policy.RoleBadge(author.Role),
		Timestamp:    it.msg.CreatedAt.Format(TimestampFormat),
		Attachment:   kind,
		Content:      it.msg.Content,
		ShowContent:  kind == attachment.None && it.state == Viewing,
		ShowEditor:   kind == attachment.None && it.state == Editing,
		Edited:       it.msg.Edited && !it.msg.Deleted,
		Deleted:      it.msg.Deleted,
		Draft:        it.draft,
		Permissions:  it.permissions(),
		Busy:         it.busy,
	}
	if it.msg.FileURL != nil {
		vm.AttachmentURL = *it.msg.FileURL
	}
	if vm.ShowEditor {
		vm.Hint = EditHint
	}
	if it.err != nil {
		vm.Error = it.err.Error()
	}
	return vm
}

// Render builds the Viewing state of every message for viewer, as used by
// server side pages.
func Render(messages []entity.Message, viewer *entity.Member, route Route) []ViewModel {
	out := make([]ViewModel, 0, len(messages))
	for _, msg := range messages {
		out = append(out, New(msg, viewer, route, nil, nil).View())
	}
	return out
}
