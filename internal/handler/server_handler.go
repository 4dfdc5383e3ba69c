package handler

import (
	"errors"
	"net/http"
	"net/url"

	"guildhall/internal/chatitem"
	"guildhall/internal/entity"
	"guildhall/internal/policy"
	"guildhall/internal/service"
	"guildhall/internal/view"

	"github.com/gorilla/mux"
)

type serverRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"image-url"`
}

func (s *serverRequest) fillForm(v url.Values) {
	s.Name = v.Get("name")
	s.ImageURL = v.Get("image-url")
}

type channelRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (c *channelRequest) fillForm(v url.Values) {
	c.Name = v.Get("name")
	c.Type = v.Get("type")
}

type ServerHandler struct {
	serverService  service.ServerService
	messageService service.MessageService
	renderer       *view.PageRenderer
	socketURL      string
}

func NewServerHandler(serverService service.ServerService, messageService service.MessageService, renderer *view.PageRenderer, socketURL string) *ServerHandler {
	return &ServerHandler{
		serverService:  serverService,
		messageService: messageService,
		renderer:       renderer,
		socketURL:      socketURL,
	}
}

func serverPath(serverID string) string {
	return "/servers/" + url.PathEscape(serverID)
}

func (h *ServerHandler) CreateServer(w http.ResponseWriter, r *http.Request) {
	var request serverRequest
	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	server, err := h.serverService.CreateServer(profileOf(r), request.Name, request.ImageURL)
	if err != nil {
		writeError(w, err)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, serverPath(server.ID), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"server": server,
		"status": "success",
	})
}

func (h *ServerHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["inviteCode"]

	server, member, err := h.serverService.JoinByInvite(profileOf(r), code)
	if err != nil {
		if !wantsJSON(r) && errors.Is(err, service.ErrServerNotFound) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		writeError(w, err)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, serverPath(server.ID), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"server": server,
		"member": member,
		"status": "success",
	})
}

func (h *ServerHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]

	var request channelRequest
	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	channel, err := h.serverService.CreateChannel(profileOf(r), serverID, request.Name, entity.ChannelType(request.Type))
	if err != nil {
		writeError(w, err)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, serverPath(serverID), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"channel": channel,
		"status":  "success",
	})
}

// GetServer renders the server page. Unknown servers and outsiders go back
// to the index.
func (h *ServerHandler) GetServer(w http.ResponseWriter, r *http.Request) {
	page, ok := h.memberPage(w, r)
	if !ok {
		return
	}

	data := map[string]any{
		"Page":         page,
		"Directory":    page.Directory.Search(r.URL.Query().Get("q")),
		"Query":        r.URL.Query().Get("q"),
		"CanManage":    policy.CanManageChannels(page.Viewer),
		"ActiveMember": "",
	}
	if err := h.renderer.RenderTemplate(w, "server.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ServerHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	page, ok := h.memberPage(w, r)
	if !ok {
		return
	}
	channelID := mux.Vars(r)["channelId"]

	list, err := h.messageService.List(profileOf(r), page.Server.ID, channelID)
	if errors.Is(err, service.ErrChannelNotFound) {
		http.Redirect(w, r, serverPath(page.Server.ID), http.StatusSeeOther)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}

	route := chatitem.Route{BaseURL: h.socketURL, ServerID: page.Server.ID, ChannelID: channelID}
	data := map[string]any{
		"Page":         page,
		"Directory":    page.Directory,
		"Query":        "",
		"ActiveMember": "",
		"Channel":      list.Channel,
		"Messages":     chatitem.Render(list.Messages, list.Viewer, route),
		"Route":        route,
	}
	if err := h.renderer.RenderTemplate(w, "channel.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetConversation opens a direct conversation with another member. Opening
// one with yourself lands on the server page.
func (h *ServerHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	page, ok := h.memberPage(w, r)
	if !ok {
		return
	}

	other, err := h.serverService.GetMember(page.Server.ID, mux.Vars(r)["memberId"])
	if err != nil || other.ID == page.Viewer.ID {
		http.Redirect(w, r, serverPath(page.Server.ID), http.StatusSeeOther)
		return
	}

	data := map[string]any{
		"Page":         page,
		"Directory":    page.Directory,
		"Query":        "",
		"ActiveMember": other.ID,
		"Other":        other,
	}
	if err := h.renderer.RenderTemplate(w, "conversation.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ServerHandler) GetDirectory(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]

	page, err := h.serverService.ServerPage(serverID, profileOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if page.Viewer == nil {
		writeError(w, service.ErrForbidden)
		return
	}

	writeJSON(w, http.StatusOK, page.Directory.Search(r.URL.Query().Get("q")))
}

func (h *ServerHandler) memberPage(w http.ResponseWriter, r *http.Request) (*service.ServerPage, bool) {
	serverID := mux.Vars(r)["serverId"]

	page, err := h.serverService.ServerPage(serverID, profileOf(r))
	if errors.Is(err, service.ErrServerNotFound) || (err == nil && page.Viewer == nil) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return page, true
}
