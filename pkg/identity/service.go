package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/eduquinha/eduquinha/pkg/logger"
)

// Service tracks the signed-in user and their profile for the lifetime of
// the application. It subscribes to the provider's auth-state changes at
// construction and re-fetches the profile on every change; sign-out clears
// the state. Profile load failures become a nil profile plus a log line,
// never an error that escapes to callers.
type Service struct {
	provider Provider
	profiles ProfileStore
	log      *slog.Logger

	mu      sync.RWMutex
	user    *User
	profile *Profile
	loading bool

	unsubscribe func()
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the identity service and subscribes to provider events.
func NewService(provider Provider, profiles ProfileStore, opts ...ServiceOption) *Service {
	s := &Service{
		provider: provider,
		profiles: profiles,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.unsubscribe = provider.Subscribe(func(e Event) {
		switch e.Kind {
		case EventSignedIn, EventRefreshed:
			s.setUser(context.Background(), e.User)
		case EventSignedOut:
			s.clear()
		}
	})

	return s
}

// Close detaches the service from provider events.
func (s *Service) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	return nil
}

// User returns the currently signed-in user, or nil.
func (s *Service) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Profile returns the current profile, or nil when signed out or when the
// profile row has not been provisioned yet.
func (s *Service) Profile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Loading reports whether a profile fetch is in progress.
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SignIn authenticates and returns the session token for transport.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	user, token, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return "", err
	}
	s.setUser(ctx, user)
	return token, nil
}

// SignUp registers a new account and returns the session token.
func (s *Service) SignUp(ctx context.Context, email, password string) (string, error) {
	user, token, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return "", err
	}
	s.setUser(ctx, user)
	return token, nil
}

// SignOut revokes the session best-effort. Provider failures are logged and
// swallowed; local state is cleared either way.
func (s *Service) SignOut(ctx context.Context, token string) {
	if err := s.provider.SignOut(ctx, token); err != nil {
		s.log.WarnContext(ctx, "sign-out failed", logger.Error(err))
	}
	s.clear()
}

// Identify resolves a session token into its user and profile for
// request-scoped use. An invalid session yields ErrSessionNotFound; a
// missing or unloadable profile yields a nil profile alongside the user.
func (s *Service) Identify(ctx context.Context, token string) (*User, *Profile, error) {
	user, err := s.provider.Session(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	return user, s.loadProfile(ctx, user), nil
}

func (s *Service) setUser(ctx context.Context, user *User) {
	s.mu.Lock()
	s.user = user
	s.profile = nil
	s.loading = user != nil
	s.mu.Unlock()

	if user == nil {
		return
	}

	profile := s.loadProfile(ctx, user)

	s.mu.Lock()
	// A sign-out may have raced the fetch; do not resurrect state.
	if s.user != nil && s.user.ID == user.ID {
		s.profile = profile
		s.loading = false
	}
	s.mu.Unlock()
}

func (s *Service) clear() {
	s.mu.Lock()
	s.user = nil
	s.profile = nil
	s.loading = false
	s.mu.Unlock()
}

// loadProfile fetches the profile joined with its school summary. When the
// join fails for any reason other than a missing row, it falls back to the
// two-step fetch and merges the school summary manually.
func (s *Service) loadProfile(ctx context.Context, user *User) *Profile {
	profile, err := s.profiles.GetWithTenant(ctx, user.ID)
	switch {
	case err == nil:
		return profile
	case errors.Is(err, ErrProfileNotFound):
		// Expected for freshly created accounts.
		return nil
	}

	s.log.WarnContext(ctx, "joined profile fetch failed, falling back to two-step fetch",
		logger.UserID(user.ID), logger.Error(err))

	profile, err = s.profiles.Get(ctx, user.ID)
	switch {
	case err == nil:
	case errors.Is(err, ErrProfileNotFound):
		return nil
	default:
		s.log.ErrorContext(ctx, "profile fetch failed", logger.UserID(user.ID), logger.Error(err))
		return nil
	}

	if profile.TenantID != nil && profile.Tenant == nil {
		summary, err := s.profiles.TenantSummary(ctx, *profile.TenantID)
		if err != nil {
			s.log.WarnContext(ctx, "school summary fetch failed",
				logger.SchoolID(*profile.TenantID), logger.Error(err))
		} else {
			profile.Tenant = summary
		}
	}
	return profile
}
