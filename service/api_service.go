package service

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/harudayoo/phoniphaleia-vs-sub000/api"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
)

// shutdownTimeout bounds the wait for in-flight requests on Stop.
const shutdownTimeout = 10 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	elections *Elections
	api       *api.API
	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	host      string
	port      int
}

// NewAPI creates a new APIService instance.
func NewAPI(elections *Elections, host string, port int) *APIService {
	return &APIService{
		elections: elections,
		host:      host,
		port:      port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start. The server is stopped when
// ctx is done.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	srv, err := api.New(&api.APIConfig{
		Host:      as.host,
		Port:      as.port,
		Elections: as.elections,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	as.api = srv

	ctx, cancel := context.WithCancel(ctx)
	as.cancel = cancel
	done := make(chan struct{})
	as.done = done
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Warnw("API server shutdown", "error", err.Error())
		}
	}()
	return nil
}

// Stop halts the API server and waits for the in-flight requests.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		as.cancel()
		<-as.done
		as.cancel = nil
	}
}

// HostPort returns the host and port of the API server. Once started, the
// port is the one actually bound.
func (as *APIService) HostPort() (string, int) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.api != nil {
		if addr, ok := as.api.Addr().(*net.TCPAddr); ok {
			return as.host, addr.Port
		}
	}
	return as.host, as.port
}
