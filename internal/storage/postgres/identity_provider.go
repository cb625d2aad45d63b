package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduquinha/eduquinha/internal/storage/pg"
	"github.com/eduquinha/eduquinha/pkg/broadcast"
	"github.com/eduquinha/eduquinha/pkg/identity"
)

// IdentityProvider is a password-based identity.Provider backed by the users
// and sessions tables. Auth-state changes are published to in-process
// subscribers.
type IdentityProvider struct {
	pool       *pgxpool.Pool
	sessionTTL time.Duration
	events     *broadcast.Hub[identity.Event]
}

// IdentityConfig loads identity provider settings from the environment.
type IdentityConfig struct {
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"` // SessionTTL is how long a session token stays valid.
}

// NewIdentityProvider creates the provider. Close releases the event hub.
func NewIdentityProvider(pool *pgxpool.Pool, cfg IdentityConfig) *IdentityProvider {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &IdentityProvider{
		pool:       pool,
		sessionTTL: ttl,
		events:     broadcast.NewHub[identity.Event](),
	}
}

// Close shuts down event dispatch.
func (p *IdentityProvider) Close() error {
	return p.events.Close()
}

// Subscribe registers fn for auth-state changes.
func (p *IdentityProvider) Subscribe(fn func(identity.Event)) func() {
	return p.events.Subscribe(fn)
}

// Session returns the user owning a valid session token.
func (p *IdentityProvider) Session(ctx context.Context, token string) (*identity.User, error) {
	var user identity.User
	err := p.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > now()`, token,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, identity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &user, nil
}

// SignIn authenticates by email and password and opens a session.
func (p *IdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.User, string, error) {
	var (
		user identity.User
		hash string
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = lower($1)`, email,
	).Scan(&user.ID, &user.Email, &hash, &user.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			// Burn a comparison anyway so unknown emails cost the same
			// as wrong passwords.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGJDvsYn3Hdl9nNKAwEBv8BqxCJHybW"), []byte(password))
			return nil, "", identity.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, "", identity.ErrInvalidCredentials
	}

	token, err := p.openSession(ctx, &user)
	if err != nil {
		return nil, "", err
	}

	p.events.Publish(identity.Event{Kind: identity.EventSignedIn, User: &user})
	return &user, token, nil
}

// SignUp registers a new account and opens a session. The profile row is
// provisioned separately by administrative flows; until then the account has
// a nil profile.
func (p *IdentityProvider) SignUp(ctx context.Context, email, password string) (*identity.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	var user identity.User
	err = p.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES (lower($1), $2)
		RETURNING id, email, created_at`, email, string(hash),
	).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, "", identity.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("insert user: %w", err)
	}

	token, err := p.openSession(ctx, &user)
	if err != nil {
		return nil, "", err
	}

	p.events.Publish(identity.Event{Kind: identity.EventSignedIn, User: &user})
	return &user, token, nil
}

// SignOut revokes the session token. Revoking an unknown token succeeds.
func (p *IdentityProvider) SignOut(ctx context.Context, token string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	p.events.Publish(identity.Event{Kind: identity.EventSignedOut})
	return nil
}

func (p *IdentityProvider) openSession(ctx context.Context, user *identity.User) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)`, token, user.ID, time.Now().Add(p.sessionTTL))
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
