package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	SessionName = "auth-session"
	ProfileKey  = "profile_id"
	NameKey     = "profile_name"
)

type contextKey string

const profileContextKey contextKey = "profile"

// SessionProfile is the identity bound to the cookie session.
type SessionProfile struct {
	ID   string
	Name string
}

func WithProfile(ctx context.Context, p SessionProfile) context.Context {
	return context.WithValue(ctx, profileContextKey, p)
}

func ProfileFromContext(ctx context.Context) (SessionProfile, bool) {
	p, ok := ctx.Value(profileContextKey).(SessionProfile)
	return p, ok && p.ID != ""
}

func readSession(store sessions.Store, r *http.Request) (SessionProfile, bool, error) {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return SessionProfile{}, false, err
	}
	id, ok1 := session.Values[ProfileKey].(string)
	name, ok2 := session.Values[NameKey].(string)
	if !(ok1 && ok2) || id == "" {
		return SessionProfile{}, false, nil
	}
	return SessionProfile{ID: id, Name: name}, true, nil
}

// AuthMiddleware guards pages: requests without a profile go back to the index.
func AuthMiddleware(store sessions.Store, next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok, err := readSession(store, r)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		next(w, r.WithContext(WithProfile(r.Context(), profile)))
	}
}

// APIAuthMiddleware guards JSON endpoints and answers 401 instead of redirecting.
func APIAuthMiddleware(store sessions.Store, next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok, err := readSession(store, r)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(WithProfile(r.Context(), profile)))
	}
}
