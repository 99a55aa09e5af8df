package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/devaloi/meowww/internal/hub"
	"github.com/devaloi/meowww/internal/middleware"
	"github.com/devaloi/meowww/internal/store"
)

const (
	// backlogTimeout is how long a queued request waits for a free worker.
	backlogTimeout = 30 * time.Second

	servicePrefix = "/_"
)

// Options wires the router to its collaborators.
type Options struct {
	Hub    *hub.Hub
	Store  store.Store // nil disables stats
	Logger *slog.Logger
	// Metrics is served at /_/metrics when non-nil.
	Metrics http.Handler

	// Workers caps concurrently served chat requests; up to
	// WorkerBacklog more wait in line.
	Workers       int
	WorkerBacklog int
	CORSAllow     []string
	WriteWait     time.Duration
}

// NewRouter wires up all HTTP routes and middleware.
func NewRouter(o Options) http.Handler {
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(o.CORSAllow))

	// Everything that is not a room lives under /_/, which no room path
	// reaches: a room named "_" only ever sees "/_" and "/_/notify".
	r.Get(servicePrefix+"/health", Health())
	if o.Metrics != nil {
		r.Method(http.MethodGet, servicePrefix+"/metrics", o.Metrics)
	}
	r.Get(servicePrefix+"/api/rooms", ListRooms(o.Hub))
	r.Get(servicePrefix+"/api/rooms/{name}", RoomInfo(o.Hub))
	r.Get(servicePrefix+"/api/stats", Stats(o.Store, logger))
	r.Handle(servicePrefix+"/static/*", Static())

	r.Group(func(r chi.Router) {
		r.Use(chimw.ThrottleBacklog(o.Workers, o.WorkerBacklog, backlogTimeout))
		r.Get("/", Home(o.Hub, logger))
		r.Get("/{room}", RoomPage(o.Hub, logger))
		r.Post("/{room}", PostMessage(o.Hub, o.Store, logger))
		r.Get("/{room}/notify", Notify(o.Hub, o.Store, o.WriteWait, logger))
	})
	return r
}
