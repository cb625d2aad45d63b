package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduquinha/eduquinha/internal/storage/pg"
	"github.com/eduquinha/eduquinha/pkg/identity"
)

// ProfileStore loads profile rows joined with their school summary.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore creates a ProfileStore over the given pool.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// GetWithTenant returns the profile with its school summary in one query.
func (s *ProfileStore) GetWithTenant(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	var (
		p          identity.Profile
		role       string
		schoolID   *uuid.UUID
		schoolName *string
		schoolSlug *string
		schoolLogo *string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT p.id, p.user_id, p.name, p.role, p.school_id, p.created_at,
		       sc.id, sc.name, sc.slug, sc.logo_url
		FROM profiles p
		LEFT JOIN schools sc ON sc.id = p.school_id
		WHERE p.user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.Name, &role, &p.TenantID, &p.CreatedAt,
		&schoolID, &schoolName, &schoolSlug, &schoolLogo)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("query profile with school: %w", err)
	}

	p.Role = identity.Role(role)
	if schoolID != nil {
		p.Tenant = &identity.TenantSummary{
			ID:   *schoolID,
			Name: deref(schoolName),
			Slug: deref(schoolSlug),
			Logo: deref(schoolLogo),
		}
	}
	return &p, nil
}

// Get returns the bare profile row.
func (s *ProfileStore) Get(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	var (
		p    identity.Profile
		role string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, name, role, school_id, created_at
		FROM profiles
		WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.Name, &role, &p.TenantID, &p.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}
	p.Role = identity.Role(role)
	return &p, nil
}

// TenantSummary returns the school summary for a school ID.
func (s *ProfileStore) TenantSummary(ctx context.Context, tenantID uuid.UUID) (*identity.TenantSummary, error) {
	var summary identity.TenantSummary
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, slug, logo_url
		FROM schools
		WHERE id = $1`, tenantID,
	).Scan(&summary.ID, &summary.Name, &summary.Slug, &summary.Logo)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, identity.ErrTenantSummaryNotFound
		}
		return nil, fmt.Errorf("query school summary: %w", err)
	}
	return &summary, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
