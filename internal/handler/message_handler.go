package handler

import (
	"net/http"
	"net/url"

	"guildhall/internal/service"

	"github.com/gorilla/mux"
)

type msgReqFields struct {
	Content string  `json:"content"`
	FileURL *string `json:"file-url,omitempty"`
}

func (m *msgReqFields) fillForm(v url.Values) {
	m.Content = v.Get("content")
	if file := v.Get("file-url"); file != "" {
		m.FileURL = &file
	}
}

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	serverID, channelID, ok := channelScope(r)
	if !ok {
		http.Error(w, "serverId and channelId are required", http.StatusBadRequest)
		return
	}

	list, err := h.messageService.List(profileOf(r), serverID, channelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	serverID, channelID, ok := channelScope(r)
	if !ok {
		http.Error(w, "serverId and channelId are required", http.StatusBadRequest)
		return
	}

	var request msgReqFields
	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	message, err := h.messageService.Send(profileOf(r), serverID, channelID, request.Content, request.FileURL)
	if err != nil {
		writeError(w, err)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, serverPath(serverID)+"/channels/"+url.PathEscape(channelID), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

// Edit answers with the canonical message, which the editor applies as is.
func (h *MessageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	serverID, channelID, ok := channelScope(r)
	if !ok {
		http.Error(w, "serverId and channelId are required", http.StatusBadRequest)
		return
	}

	var request msgReqFields
	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	message, err := h.messageService.Edit(profileOf(r), serverID, channelID, mux.Vars(r)["messageId"], request.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	serverID, channelID, ok := channelScope(r)
	if !ok {
		http.Error(w, "serverId and channelId are required", http.StatusBadRequest)
		return
	}

	message, err := h.messageService.Delete(profileOf(r), serverID, channelID, mux.Vars(r)["messageId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message)
}
