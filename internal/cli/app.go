// Package cli is the interactive front end: it wires the local store, the
// caching transport, the API client, connectivity watching and the sync
// engine together and drives them from a small REPL.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/kopislukatan/storyapp/internal/api"
	"github.com/kopislukatan/storyapp/internal/cache"
	"github.com/kopislukatan/storyapp/internal/config"
	"github.com/kopislukatan/storyapp/internal/connectivity"
	"github.com/kopislukatan/storyapp/internal/logging"
	"github.com/kopislukatan/storyapp/internal/models"
	"github.com/kopislukatan/storyapp/internal/notify"
	"github.com/kopislukatan/storyapp/internal/push"
	"github.com/kopislukatan/storyapp/internal/services"
	"github.com/kopislukatan/storyapp/internal/session"
	"github.com/kopislukatan/storyapp/internal/store"
	"github.com/kopislukatan/storyapp/internal/syncengine"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	log    logging.Logger

	store        *store.Store
	web          *http.Client
	apiClient    *api.Client
	monitor      *connectivity.Monitor
	engine       *syncengine.Engine
	authService  services.AuthService
	storyService services.StoryService
	pushManager  *push.Manager

	user   *models.User
	reader *bufio.Reader
	out    io.Writer

	unbind func()
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewDefault(os.Stderr, slog.LevelInfo)

	st := store.New(cfg.DatabasePath)
	if err := st.Open(ctx); err != nil {
		return nil, err
	}

	router, err := cache.NewRouter(http.DefaultTransport, cache.NewStore(st.DB()), cfg.APIBaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := router.Activate(ctx); err != nil {
		return nil, err
	}

	// one caching client for both API calls and photo downloads
	web := &http.Client{Transport: router}
	apiClient := api.New(cfg.APIBaseURL, web)

	monitor := connectivity.New(apiClient.Ping(ctx) == nil, log)

	sess := session.New(st.Settings)
	authService := services.NewAuthService(apiClient, sess)
	storyService := services.NewStoryService(apiClient, st.Stories, st.Pending, st.Favorites, monitor, log)

	engine := syncengine.New(st.Pending, apiClient, storyService.Refresh, log)

	notifier := notify.NewWriterNotifier(os.Stdout)
	registrar := push.NewLocalRegistrar("https://push.local/send", nil)
	pushManager := push.NewManager(registrar, apiClient, st.Settings, notifier, cfg.VAPIDPublicKey, log)

	a := &App{
		config:       cfg,
		log:          log,
		store:        st,
		web:          web,
		apiClient:    apiClient,
		monitor:      monitor,
		engine:       engine,
		authService:  authService,
		storyService: storyService,
		pushManager:  pushManager,
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}

	if !cfg.Guest {
		user, err := authService.Restore(ctx)
		if err != nil {
			log.Warn(ctx, "failed to restore session", "error", err)
		}
		a.user = user
	}

	if err := pushManager.Restore(ctx); err != nil {
		log.Warn(ctx, "failed to restore push subscription", "error", err)
	}

	a.unbind = engine.Bind(monitor)
	return a, nil
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) status() string {
	mode := "offline"
	if a.monitor.Online() {
		mode = "online"
	}
	if a.user != nil {
		return fmt.Sprintf("%s, %s", a.user.Name, mode)
	}
	return mode
}

// Run starts the connectivity watcher and the REPL, and tears everything
// down when the REPL exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.store.Close()
	defer a.unbind()

	go a.monitor.Watch(ctx, a.config.OnlineCheckInterval, a.apiClient.Ping)

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}
