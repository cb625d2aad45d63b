package admin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduquinha/eduquinha/internal/storage/postgres"
	"github.com/eduquinha/eduquinha/modules/admin"
	"github.com/eduquinha/eduquinha/pkg/identity"
	"github.com/eduquinha/eduquinha/pkg/tenant"
)

// memStore records created schools by slug.
type memStore struct {
	created map[string]*tenant.Tenant
}

func (s *memStore) Create(ctx context.Context, name, slug, logo string) (*tenant.Tenant, error) {
	if _, exists := s.created[slug]; exists {
		return nil, postgres.ErrSlugTaken
	}
	t := &tenant.Tenant{ID: uuid.New(), Slug: slug, Name: name, Logo: logo, Active: true}
	s.created[slug] = t
	return t, nil
}

func (s *memStore) SetActive(ctx context.Context, slug string, active bool) error {
	t, ok := s.created[slug]
	if !ok {
		return tenant.ErrTenantNotFound
	}
	t.Active = active
	return nil
}

type fixture struct {
	router http.Handler
	store  *memStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := &memStore{created: make(map[string]*tenant.Tenant)}

	resolver := tenant.NewResolver(providerFunc(func(ctx context.Context, slug string) (*tenant.Tenant, error) {
		if s, ok := store.created[slug]; ok && s.Active {
			return s, nil
		}
		return nil, tenant.ErrTenantNotFound
	}), tenant.WithCache(tenant.NewNoopCache()))
	t.Cleanup(func() { _ = resolver.Close() })

	tenants := tenant.NewService(resolver)
	t.Cleanup(func() { _ = tenants.Close() })
	tenants.Start(context.Background(), "")

	return &fixture{
		router: admin.NewRouter(admin.Deps{
			Hosts:    tenant.DefaultHosts(),
			Schools:  store,
			Resolver: resolver,
			Tenants:  tenants,
		}),
		store: store,
	}
}

type providerFunc func(ctx context.Context, slug string) (*tenant.Tenant, error)

func (f providerFunc) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return f(ctx, slug)
}

func (f *fixture) do(t *testing.T, method, target, body string, role identity.Role) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if role != "" {
		user := &identity.User{ID: uuid.New(), Email: "admin@example.com"}
		ctx := identity.WithUser(req.Context(), user)
		ctx = identity.WithProfile(ctx, &identity.Profile{ID: uuid.New(), UserID: user.ID, Role: role})
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func TestCreateSchool(t *testing.T) {
	t.Parallel()

	t.Run("slug derived from name", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		rec, body := f.do(t, "POST", "http://eduquinha.com.br/schools",
			`{"name":"Escola São João"}`, identity.RoleAdmin)

		require.Equal(t, http.StatusCreated, rec.Code)
		school := body["school"].(map[string]any)
		assert.Equal(t, "escola-sao-joao", school["slug"])
		assert.Contains(t, body["link"], "escola-sao-joao.eduquinha.com.br")
	})

	t.Run("explicit slug is normalized", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		rec, body := f.do(t, "POST", "http://eduquinha.com.br/schools",
			`{"name":"Escola ABC","slug":"Escola ABC!"}`, identity.RoleAdmin)

		require.Equal(t, http.StatusCreated, rec.Code)
		school := body["school"].(map[string]any)
		assert.Equal(t, "escola-abc", school["slug"])
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.do(t, "POST", "http://eduquinha.com.br/schools", `{"name":"Escola ABC"}`, identity.RoleAdmin)
		rec, body := f.do(t, "POST", "http://eduquinha.com.br/schools", `{"name":"Escola ABC"}`, identity.RoleAdmin)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "slug_taken", body["code"])
	})

	t.Run("empty name rejected", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		rec, _ := f.do(t, "POST", "http://eduquinha.com.br/schools", `{"name":"  "}`, identity.RoleAdmin)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSchoolLink(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	t.Run("production host mints a subdomain link", func(t *testing.T) {
		t.Parallel()

		rec, body := f.do(t, "GET", "http://eduquinha.com.br/schools/escola-abc/link", "", identity.RoleSysadmin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://escola-abc.eduquinha.com.br/", body["link"])
	})

	t.Run("development host mints a query-param link", func(t *testing.T) {
		t.Parallel()

		rec, body := f.do(t, "GET", "http://localhost:3000/schools/escola-abc/link", "", identity.RoleSysadmin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:3000/?escola=escola-abc", body["link"])
	})
}

func TestDeactivateSchool(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.do(t, "POST", "http://eduquinha.com.br/schools", `{"name":"Escola ABC"}`, identity.RoleAdmin)

	rec, body := f.do(t, "POST", "http://eduquinha.com.br/schools/escola-abc/deactivate", "", identity.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["active"])
	assert.False(t, f.store.created["escola-abc"].Active)

	rec, _ = f.do(t, "POST", "http://eduquinha.com.br/schools/desconhecida/deactivate", "", identity.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminAuthorization(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	t.Run("anonymous gets 401", func(t *testing.T) {
		t.Parallel()
		rec, _ := f.do(t, "POST", "http://eduquinha.com.br/schools", `{"name":"X"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-admin role gets 403", func(t *testing.T) {
		t.Parallel()
		rec, _ := f.do(t, "POST", "http://eduquinha.com.br/schools", `{"name":"X"}`, identity.RoleProfessor)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("sysadmin passes", func(t *testing.T) {
		t.Parallel()
		rec, _ := f.do(t, "POST", "http://eduquinha.com.br/schools", `{"name":"Escola Nova"}`, identity.RoleSysadmin)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}
