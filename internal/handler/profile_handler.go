package handler

import (
	"net/http"
	"net/url"

	"guildhall/internal/entity"
	"guildhall/internal/middleware"
	"guildhall/internal/service"
	"guildhall/internal/view"

	"github.com/gorilla/sessions"
)

type profileRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"image-url"`
}

func (p *profileRequest) fillForm(v url.Values) {
	p.Name = v.Get("name")
	p.ImageURL = v.Get("image-url")
}

type ProfileHandler struct {
	profileService service.ProfileService
	serverService  service.ServerService
	cookieStore    sessions.Store
	renderer       *view.PageRenderer
}

func NewProfileHandler(profileService service.ProfileService, serverService service.ServerService, cookieStore sessions.Store, renderer *view.PageRenderer) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		serverService:  serverService,
		cookieStore:    cookieStore,
		renderer:       renderer,
	}
}

// Index lists the servers of the session profile, or asks for a name.
func (h *ProfileHandler) Index(w http.ResponseWriter, r *http.Request) {
	session, _ := h.cookieStore.Get(r, middleware.SessionName)
	profileID, _ := session.Values[middleware.ProfileKey].(string)
	name, _ := session.Values[middleware.NameKey].(string)

	var servers []*entity.Server
	if profileID != "" {
		var err error
		if servers, err = h.serverService.GetServers(profileID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	data := map[string]any{
		"LoggedProfile": name,
		"Servers":       servers,
	}
	if err := h.renderer.RenderTemplate(w, "index.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Identify binds the profile with the given name to the session.
func (h *ProfileHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var request profileRequest
	if err := decodeRequest(r, &request); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profileService.Identify(request.Name, request.ImageURL)
	if err != nil {
		writeError(w, err)
		return
	}

	session, _ := h.cookieStore.Get(r, middleware.SessionName)
	session.Values[middleware.ProfileKey] = profile.ID
	session.Values[middleware.NameKey] = profile.Name
	if err := sessions.Save(r, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
		"status":  "success",
	})
}

func (h *ProfileHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.cookieStore.Get(r, middleware.SessionName)
	session.Options.MaxAge = -1
	if err := sessions.Save(r, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
