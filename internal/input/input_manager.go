package input

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"guildhall/internal"
	"guildhall/internal/handler"
	"guildhall/internal/middleware"
	"guildhall/internal/nlog"
	"guildhall/internal/service"
	"guildhall/internal/view"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

type IptConfig struct {
	ServerPort        uint16
	ReadTimeout       int64
	WriteTimeout      int64
	TemplateDirectory string
	SecretKey         string
	SocketURL         string
}

func ConfigFrom(cfg *internal.Config) *IptConfig {
	templates := cfg.TemplateDirectory
	if !filepath.IsAbs(templates) {
		templates = filepath.Join(cfg.FolderPath, templates)
	}
	return &IptConfig{
		ServerPort:        cfg.HTTPServerPort,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		TemplateDirectory: templates,
		SecretKey:         cfg.SecretKey,
		SocketURL:         cfg.SocketURL,
	}
}

type InputManager struct { // Manages HTTP input
	running atomic.Bool
	paused  atomic.Bool

	logger nlog.Logger
	server *http.Server

	stopFromOutsideChan chan struct{}
	doneFromInsideChan  chan struct{}

	profileService service.ProfileService
	serverService  service.ServerService
	messageService service.MessageService
}

func NewInputManager() *InputManager {
	return &InputManager{
		running:             atomic.Bool{},
		paused:              atomic.Bool{},
		stopFromOutsideChan: make(chan struct{}),
		doneFromInsideChan:  make(chan struct{}),
	}
}

func (i *InputManager) IsReady() bool {
	return i.logger != nil && i.profileService != nil && i.serverService != nil && i.messageService != nil
}

func (i *InputManager) IsRunning() bool {
	return i.running.Load()
}

func (i *InputManager) SetLogger(l nlog.Logger) {
	i.logger = l
}

func (i *InputManager) SetServices(ps service.ProfileService, ss service.ServerService, ms service.MessageService) {
	i.profileService = ps
	i.serverService = ss
	i.messageService = ms
}

func (i *InputManager) Logf(format string, a ...any) {
	i.logger.Logf(format, a...)
}

func (i *InputManager) SetPause(paused bool) {
	i.paused.Store(paused)
}

func (i *InputManager) IsPaused() bool {
	return i.paused.Load()
}

// PauseMiddleware answers 503 to everything but the health check while the
// manager is paused.
func (i *InputManager) PauseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if i.IsPaused() && r.URL.Path != "/health" {
			w.Header().Set("Retry-After", "30")
			http.Error(w, "Service is paused for maintenance", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (i *InputManager) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		i.Logf("%s %s {%v}", r.Method, r.URL.Path, time.Since(start))
	})
}

func NewCookieStore(secret string) *sessions.CookieStore {
	cookieStore := sessions.NewCookieStore([]byte(secret))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(7 * 24 * time.Hour.Seconds()),
	}
	return cookieStore
}

// Router wires every route onto the given cookie store and renderer.
func (i *InputManager) Router(cookieStore sessions.Store, renderer *view.PageRenderer, socketURL string) *mux.Router {
	profileHandler := handler.NewProfileHandler(i.profileService, i.serverService, cookieStore, renderer)
	serverHandler := handler.NewServerHandler(i.serverService, i.messageService, renderer, socketURL)
	messageHandler := handler.NewMessageHandler(i.messageService)
	healthHandler := handler.NewHealthHandler(i.IsPaused)

	page := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.AuthMiddleware(cookieStore, h)
	}
	api := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.APIAuthMiddleware(cookieStore, h)
	}

	r := mux.NewRouter()
	r.Use(i.PauseMiddleware)
	r.Use(i.logRequests)

	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	// Identity
	r.HandleFunc("/", profileHandler.Index).Methods("GET")
	r.HandleFunc("/api/profiles", profileHandler.Identify).Methods("POST")
	r.HandleFunc("/logout", profileHandler.Logout).Methods("GET")

	// Servers
	r.HandleFunc("/api/servers", api(serverHandler.CreateServer)).Methods("POST")
	r.HandleFunc("/invite/{inviteCode}", api(serverHandler.Join)).Methods("POST")
	r.HandleFunc("/api/servers/{serverId}/channels", api(serverHandler.CreateChannel)).Methods("POST")
	r.HandleFunc("/api/servers/{serverId}/directory", api(serverHandler.GetDirectory)).Methods("GET")
	r.HandleFunc("/servers/{serverId}", page(serverHandler.GetServer)).Methods("GET")
	r.HandleFunc("/servers/{serverId}/channels/{channelId}", page(serverHandler.GetChannel)).Methods("GET")
	r.HandleFunc("/servers/{serverId}/conversations/{memberId}", page(serverHandler.GetConversation)).Methods("GET")

	// Messages
	r.HandleFunc("/api/messages", api(messageHandler.List)).Methods("GET")
	r.HandleFunc("/api/messages", api(messageHandler.Send)).Methods("POST")
	r.HandleFunc(socketURL+"/{messageId}", api(messageHandler.Edit)).Methods("PATCH")
	r.HandleFunc(socketURL+"/{messageId}", api(messageHandler.Delete)).Methods("DELETE")

	return r
}

func (i *InputManager) Run(ctx context.Context, cfg *IptConfig) error {
	i.Logf("Input service started...")

	if !i.IsReady() {
		return fmt.Errorf("The Input manager is not ready... Missing components")
	}

	cookieStore := NewCookieStore(cfg.SecretKey)

	// Load templates and page renderer
	templates, err := internal.RetrieveWebTemplates(cfg.TemplateDirectory)
	if err != nil {
		return err
	}
	renderer, err := view.NewPageRenderer(templates)
	if err != nil {
		return err
	}

	i.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:        i.Router(cookieStore, renderer, cfg.SocketURL),
		ReadTimeout:    time.Duration(cfg.ReadTimeout * int64(time.Second)),
		WriteTimeout:   time.Duration(cfg.WriteTimeout * int64(time.Second)),
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		select {
		case <-ctx.Done():
			i.Logf("Received stop signal. Shutting down...")
		case <-i.stopFromOutsideChan:
			i.Logf("Server was asked to stop. Shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := i.server.Shutdown(shutdownCtx); err != nil {
			i.Logf("Error during shutdown... %v\n", err)
		}
		close(i.doneFromInsideChan)
	}()

	i.running.Store(true)
	i.Logf("Http server starting on port {%d}", cfg.ServerPort)

	if err := i.server.ListenAndServe(); err != http.ErrServerClosed {
		i.Logf("FATAL: HTTP Server error{%v}\n", err)
		i.running.Store(false)
		return err
	}

	<-i.doneFromInsideChan
	i.running.Store(false)
	return nil
}

func (i *InputManager) Stop() {
	select {
	case <-i.stopFromOutsideChan:
	default:
		close(i.stopFromOutsideChan)
	}
	<-i.doneFromInsideChan
}
