// Package postgres implements the data-store interfaces over pgx: school
// lookup, profile fetch and the password identity provider.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduquinha/eduquinha/internal/storage/pg"
	"github.com/eduquinha/eduquinha/pkg/tenant"
)

// TenantStore loads and manages school records. It implements
// tenant.Provider for the resolution core.
type TenantStore struct {
	pool *pgxpool.Pool
}

// NewTenantStore creates a TenantStore over the given pool.
func NewTenantStore(pool *pgxpool.Pool) *TenantStore {
	return &TenantStore{pool: pool}
}

// GetBySlug returns the active school with the given slug. Zero rows,
// including inactive schools, map to tenant.ErrTenantNotFound; more than one
// active row is a data-integrity condition reported as
// tenant.ErrDuplicateSlug.
func (s *TenantStore) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	// LIMIT 2 so a uniqueness violation is observable without scanning the
	// whole table.
	rows, err := s.pool.Query(ctx, `
		SELECT id, slug, name, logo_url, active, settings, created_at
		FROM schools
		WHERE slug = $1 AND active = true
		LIMIT 2`, slug)
	if err != nil {
		return nil, fmt.Errorf("query school by slug: %w", err)
	}
	defer rows.Close()

	var found []*tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &t.Logo, &t.Active, &t.Settings, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan school: %w", err)
		}
		found = append(found, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read schools: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, tenant.ErrTenantNotFound
	case 1:
		return found[0], nil
	default:
		return nil, tenant.ErrDuplicateSlug
	}
}

// ErrSlugTaken is returned by Create for an already used slug.
var ErrSlugTaken = errors.New("school slug already in use")

// Create inserts a new school and returns the stored record.
func (s *TenantStore) Create(ctx context.Context, name, slug, logo string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := s.pool.QueryRow(ctx, `
		INSERT INTO schools (name, slug, logo_url)
		VALUES ($1, $2, $3)
		RETURNING id, slug, name, logo_url, active, settings, created_at`,
		name, slug, logo,
	).Scan(&t.ID, &t.Slug, &t.Name, &t.Logo, &t.Active, &t.Settings, &t.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("insert school: %w", err)
	}
	return &t, nil
}

// SetActive toggles a school's active flag. Deactivated schools stop
// resolving on their next uncached lookup.
func (s *TenantStore) SetActive(ctx context.Context, slug string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE schools SET active = $2 WHERE slug = $1`, slug, active)
	if err != nil {
		return fmt.Errorf("update school active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}
