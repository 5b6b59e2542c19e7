package api

import (
	"context"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/orchestrator"
	"github.com/harudayoo/phoniphaleia-vs-sub000/storage"
	"github.com/harudayoo/phoniphaleia-vs-sub000/threshold"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// RequestIDHeader carries the ID assigned to each request.
const RequestIDHeader = "X-Request-Id"

// Elections is the backend the API serves.
type Elections interface {
	Create(req *NewElection) (*storage.Election, []*threshold.KeyShare, error)
	Election(id types.ElectionID) (*storage.Election, error)
	Prove(ctx context.Context, id types.ElectionID, voterSecret *big.Int, selections []ballot.Selection) ([]*ballot.EncryptedBallot, error)
	Cast(id types.ElectionID, ballots []*ballot.EncryptedBallot) error
	Close(id types.ElectionID) error
	StartTally(ctx context.Context, id types.ElectionID) (orchestrator.Status, error)
	SubmitShares(id types.ElectionID, lines []string) (orchestrator.Status, error)
	SubmitPartials(id types.ElectionID, set *orchestrator.PartialSet) (orchestrator.Status, error)
	Targets(id types.ElectionID) ([]orchestrator.Target, error)
	TallyStatus(id types.ElectionID) (orchestrator.Status, error)
	AbortTally(id types.ElectionID) error
	Results(id types.ElectionID) (*storage.Results, error)
}

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host      string
	Port      int
	Elections Elections
}

// API type represents the API HTTP server.
type API struct {
	router    *chi.Mux
	elections Elections
	server    *http.Server
	addr      net.Addr
}

// New creates a new API instance with the given configuration and starts
// the HTTP server. Port 0 picks a free port, see Addr.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Elections == nil {
		return nil, fmt.Errorf("missing elections backend")
	}
	a := &API{
		elections: conf.Elections,
	}

	// Initialize router
	a.initRouter()
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", conf.Host, conf.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	a.addr = ln.Addr()
	a.server = &http.Server{Handler: a.router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Infow("starting API server", "addr", a.addr.String())
		if err := a.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Errorw(err, "API server stopped")
		}
	}()
	return a, nil
}

// NewHandler returns the API router without starting a server.
func NewHandler(elections Elections) http.Handler {
	a := &API{elections: elections}
	a.initRouter()
	return a.router
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Addr returns the address the server listens on.
func (a *API) Addr() net.Addr {
	return a.addr
}

// Stop shuts the server down, waiting for in-flight requests until ctx is
// done.
func (a *API) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	handlers := []struct {
		method, endpoint string
		handler          http.HandlerFunc
	}{
		{http.MethodGet, PingEndpoint, func(w http.ResponseWriter, _ *http.Request) { httpWriteOK(w) }},
		{http.MethodPost, ElectionsEndpoint, a.newElection},
		{http.MethodGet, ElectionEndpoint, a.election},
		{http.MethodPost, ProofsEndpoint, a.prove},
		{http.MethodPost, BallotsEndpoint, a.castBallots},
		{http.MethodPost, CloseEndpoint, a.closeElection},
		{http.MethodPost, TallyEndpoint, a.startTally},
		{http.MethodGet, TallyEndpoint, a.tallyStatus},
		{http.MethodDelete, TallyEndpoint, a.abortTally},
		{http.MethodPost, TallySharesEndpoint, a.submitShares},
		{http.MethodGet, TallyTargetsEndpoint, a.tallyTargets},
		{http.MethodPost, TallyPartialsEndpoint, a.submitPartials},
		{http.MethodGet, ResultsEndpoint, a.results},
	}
	for _, h := range handlers {
		log.Debugw("register handler", "endpoint", h.endpoint, "method", h.method)
		a.router.Method(h.method, h.endpoint, h.handler)
	}
}

// requestID assigns a random ID to every request, echoes it in the
// RequestIDHeader header and logs the request with it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set(RequestIDHeader, id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debugw("api request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).String())
	})
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(requestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(5 * time.Minute))
	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrResourceNotFound.Withf("%s %s", r.Method, r.URL.Path).Write(w)
	})

	// Register the API handlers
	a.registerHandlers()
}
