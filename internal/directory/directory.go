// Package directory builds the categorized index of a server's channels and
// members shown by the server search.
package directory

import (
	"strings"
	"unicode/utf8"

	"guildhall/internal/entity"
	"guildhall/internal/policy"
)

type GroupType string

const (
	TypeChannel GroupType = "channel"
	TypeMember  GroupType = "member"
)

const (
	LabelText    = "Text Channels"
	LabelAudio   = "Audio Channels"
	LabelVideo   = "Video Channels"
	LabelMembers = "Members"
)

const shortNameLength = 15

type Item struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Icon policy.Icon `json:"icon"`
}

// ShortName clips long names the way the member list displays them.
func (i Item) ShortName() string {
	if utf8.RuneCountInString(i.Name) <= shortNameLength {
		return i.Name
	}
	return string([]rune(i.Name)[:shortNameLength]) + "..."
}

type Group struct {
	Label string    `json:"label"`
	Type  GroupType `json:"type"`
	Data  []Item    `json:"data"`
}

// Directory always holds the four groups, in order, even when some are empty.
type Directory struct {
	Groups []Group `json:"groups"`
}

// Build partitions channels by type and lists every member except the viewer.
// Input order is preserved inside each group.
func Build(channels []entity.Channel, members []entity.Member, viewerID string) *Directory {
	text := make([]Item, 0)
	audio := make([]Item, 0)
	video := make([]Item, 0)

	for _, ch := range channels {
		item := Item{ID: ch.ID, Name: ch.Name, Icon: policy.ChannelIcon(ch.Type)}
		switch ch.Type {
		case entity.ChannelText:
			text = append(text, item)
		case entity.ChannelAudio:
			audio = append(audio, item)
		case entity.ChannelVideo:
			video = append(video, item)
		}
	}

	people := make([]Item, 0, len(members))
	for i := range members {
		m := &members[i]
		if m.ID == viewerID {
			continue
		}
		people = append(people, Item{ID: m.ID, Name: m.DisplayName(), Icon: policy.RoleBadge(m.Role)})
	}

	return &Directory{Groups: []Group{
		{Label: LabelText, Type: TypeChannel, Data: text},
		{Label: LabelAudio, Type: TypeChannel, Data: audio},
		{Label: LabelVideo, Type: TypeChannel, Data: video},
		{Label: LabelMembers, Type: TypeMember, Data: people},
	}}
}

// Search keeps the items whose name contains query, case-insensitively.
// The group layout is left intact.
func (d *Directory) Search(query string) *Directory {
	query = strings.ToLower(strings.TrimSpace(query))

	out := &Directory{Groups: make([]Group, len(d.Groups))}
	for i, g := range d.Groups {
		filtered := make([]Item, 0, len(g.Data))
		for _, item := range g.Data {
			if query == "" || strings.Contains(strings.ToLower(item.Name), query) {
				filtered = append(filtered, item)
			}
		}
		out.Groups[i] = Group{Label: g.Label, Type: g.Type, Data: filtered}
	}
	return out
}

// Len counts items across all groups.
func (d *Directory) Len() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Data)
	}
	return n
}
