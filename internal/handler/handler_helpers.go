package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"guildhall/internal/form"
	"guildhall/internal/middleware"
	"guildhall/internal/service"
)

const maxBodyBytes = 1 << 20

// formFiller is implemented by request bodies that can also arrive as an
// urlencoded form from the HTML pages.
type formFiller interface {
	fillForm(values url.Values)
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func wantsJSON(r *http.Request) bool {
	return isJSON(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

func decodeRequest(r *http.Request, dst formFiller) error {
	if isJSON(r) {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
			return errors.Join(form.ErrInvalidInput, err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return errors.Join(form.ErrInvalidInput, err)
	}
	dst.fillForm(r.PostForm)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, form.ErrEmptyContent), errors.Is(err, form.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrServerNotFound),
		errors.Is(err, service.ErrChannelNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal Server Error"
	}
	writeJSON(w, status, map[string]any{
		"status": "error",
		"error":  message,
	})
}

func profileOf(r *http.Request) string {
	p, _ := middleware.ProfileFromContext(r.Context())
	return p.ID
}

// channelScope reads the serverId/channelId pair every message endpoint takes.
func channelScope(r *http.Request) (serverID, channelID string, ok bool) {
	q := r.URL.Query()
	serverID, channelID = q.Get("serverId"), q.Get("channelId")
	return serverID, channelID, serverID != "" && channelID != ""
}
