package cli

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"lmsc-client/internal/app"
	"lmsc-client/internal/config"
	filevault "lmsc-client/internal/infra/file"
	"lmsc-client/internal/infra/memory"
	redisvault "lmsc-client/internal/infra/redis"
	"lmsc-client/internal/logger"
	"lmsc-client/internal/transport/rest"
)

// runtime is the wired-up application a command runs against.
type runtime struct {
	cfg     config.Config
	log     *logger.Logger
	session *app.SessionStore
	search  app.SearchFunc
	viewer  app.StudentLessonLoader
	engine  *app.AssessmentEngine
	orch    *app.DashboardOrchestrator
}

// buildRuntime loads config and assembles the object graph. With an API base
// URL the REST client backs every collaborator; without one the in-memory
// demo stores do, so the tool works offline.
func buildRuntime() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = config.Config{} // no config file is fine; defaults below
	}
	if apiBaseURL != "" {
		cfg.API.BaseURL = apiBaseURL
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, err
	}

	vault, err := buildVault(cfg)
	if err != nil {
		return nil, err
	}

	pageSize := cfg.Search.PageSize
	if pageSize == 0 {
		pageSize = 10
	}

	rt := &runtime{cfg: cfg, log: log}

	if cfg.API.BaseURL != "" {
		// The client asks the session for the bearer lazily, so the two can
		// reference each other; calls made before login go out without one.
		client := rest.NewClient(cfg.API.BaseURL,
			rest.WithLogger(log),
			rest.WithHTTPClient(&http.Client{Timeout: config.Duration(cfg.API.Timeout, 15*time.Second)}),
			rest.WithTokenSource(rest.TokenFunc(func() (string, bool) {
				if rt.session == nil {
					return "", false
				}
				return rt.session.Token()
			})),
		)
		rt.session = app.NewSessionStore(client, vault, log)

		cache := app.NewLessonCache(client, 5*time.Minute)
		rt.search = client.Search
		// Per-student view data must not be cached under the lesson key, so
		// the viewer goes straight to the API.
		rt.viewer = client
		rt.engine = app.NewAssessmentEngine(cache, client, client, log)
		rt.orch = app.NewDashboardOrchestrator(rt.session, client.Search, client, cache, client, client, pageSize)
		return rt, nil
	}

	lessonStore := memory.NewLessonStore(sampleLessons())
	attempts := memory.NewAttemptStore()
	submissions := memory.NewSubmissionStore()
	aggregator := app.NewAggregator(lessonStore, attempts, submissions, nil)

	rt.session = app.NewSessionStore(demoAuthenticator{}, vault, log)
	rt.search = lessonStore.Search
	rt.viewer = app.NewLessonViewer(lessonStore, attempts, submissions)
	rt.engine = app.NewAssessmentEngine(lessonStore, attempts, submissions, log)
	rt.orch = app.NewDashboardOrchestrator(rt.session, lessonStore.Search, lessonStore, lessonStore, aggregator, aggregator, pageSize)
	return rt, nil
}

func buildVault(cfg config.Config) (app.Vault, error) {
	if cfg.Session.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})
		return redisvault.NewSessionVault(client, "lmsc"), nil
	}

	path := cfg.Session.File
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".lmsc", "session.json")
	}
	return filevault.NewSessionVault(path), nil
}
