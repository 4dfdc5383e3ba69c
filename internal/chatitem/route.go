package chatitem

import (
	"net/url"
	"strings"
)

// Route addresses the message endpoint of one channel.
type Route struct {
	BaseURL   string
	ServerID  string
	ChannelID string
}

func (r Route) Query() url.Values {
	q := url.Values{}
	q.Set("serverId", r.ServerID)
	q.Set("channelId", r.ChannelID)
	return q
}

// MessageURL is "{base}/{messageId}?channelId=...&serverId=...".
func (r Route) MessageURL(messageID string) string {
	return strings.TrimRight(r.BaseURL, "/") + "/" + url.PathEscape(messageID) + "?" + r.Query().Encode()
}

func ConversationPath(serverID, memberID string) string {
	return "/servers/" + url.PathEscape(serverID) + "/conversations/" + url.PathEscape(memberID)
}
