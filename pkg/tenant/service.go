package tenant

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/eduquinha/eduquinha/pkg/broadcast"
)

// Service holds the application's current tenant resolution. It is
// constructed once at the composition root and closed at shutdown.
//
// The tenant is encoded in the URL rather than in a fixed session value, so
// navigation is a tenant-changing event: every observed identifier change
// triggers a fresh resolution. Resolutions run asynchronously and may
// complete out of order; a generation counter captured at issuance is
// compared at apply time so that the latest intent always wins and stale
// results are discarded silently.
type Service struct {
	resolver *Resolver
	log      *slog.Logger

	mu         sync.Mutex
	gen        uint64
	identifier string
	state      Resolution
	closed     bool

	changes *broadcast.Hub[Resolution]
	wg      sync.WaitGroup
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a Service in the idle state.
func NewService(resolver *Resolver, opts ...ServiceOption) *Service {
	s := &Service{
		resolver: resolver,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:    Resolution{Status: StatusIdle},
		changes:  broadcast.NewHub[Resolution](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start captures the initial identifier and kicks off the first resolution.
func (s *Service) Start(ctx context.Context, identifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begin(ctx, identifier)
}

// Observe reports the identifier currently visible in the URL. A change from
// the stored identifier supersedes any in-flight resolution; an unchanged
// identifier is a no-op.
func (s *Service) Observe(ctx context.Context, identifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.state.Status != StatusIdle && identifier == s.identifier {
		return
	}
	s.begin(ctx, identifier)
}

// Refresh re-resolves the current identifier unconditionally, bypassing the
// cache. Used after administrative mutations that may invalidate cached
// tenant data.
func (s *Service) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.resolver.Invalidate(ctx, s.identifier)
	s.begin(ctx, s.identifier)
}

// State returns the current resolution snapshot.
func (s *Service) State() Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for resolution changes and returns an unsubscribe
// function. Handlers run on a single dispatch goroutine.
func (s *Service) Subscribe(fn func(Resolution)) func() {
	return s.changes.Subscribe(fn)
}

// Close supersedes any in-flight resolution, waits for it to finish and
// shuts down change dispatch.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.gen++ // orphan in-flight resolutions so their results are dropped
	s.mu.Unlock()

	s.wg.Wait()
	return s.changes.Close()
}

// begin issues a new resolution generation. Caller holds the lock.
func (s *Service) begin(ctx context.Context, identifier string) {
	if s.closed {
		return
	}

	s.gen++
	gen := s.gen
	s.identifier = identifier
	s.state = loading()

	// Detach from the caller's cancellation: a navigated-away request must
	// not abort the resolution its navigation triggered.
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res := s.resolver.Resolve(ctx, identifier)
		s.apply(gen, res)
	}()
}

// apply installs a completed resolution unless it has been superseded.
func (s *Service) apply(gen uint64, res Resolution) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	s.state = res
	s.mu.Unlock()

	s.changes.Publish(res)
}
