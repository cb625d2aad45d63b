package shell_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduquinha/eduquinha/modules/shell"
	"github.com/eduquinha/eduquinha/pkg/environment"
	"github.com/eduquinha/eduquinha/pkg/identity"
	"github.com/eduquinha/eduquinha/pkg/tenant"
)

// memSchools is an in-memory tenant.Provider. A nil err plus missing slug
// answers not found.
type memSchools struct {
	schools map[string]*tenant.Tenant
	err     error
}

func (s *memSchools) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	if s.err != nil {
		return nil, s.err
	}
	t, ok := s.schools[slug]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t, nil
}

// memIdentity is an in-memory identity.Provider with one account and session.
type memIdentity struct {
	user  *identity.User
	token string
}

func (p *memIdentity) Session(ctx context.Context, token string) (*identity.User, error) {
	if token != p.token {
		return nil, identity.ErrSessionNotFound
	}
	return p.user, nil
}

func (p *memIdentity) SignIn(ctx context.Context, email, password string) (*identity.User, string, error) {
	if email != p.user.Email || password != "s3cret" {
		return nil, "", identity.ErrInvalidCredentials
	}
	return p.user, p.token, nil
}

func (p *memIdentity) SignUp(ctx context.Context, email, password string) (*identity.User, string, error) {
	if email == p.user.Email {
		return nil, "", identity.ErrEmailTaken
	}
	return &identity.User{ID: uuid.New(), Email: email}, "tok-new", nil
}

func (p *memIdentity) SignOut(ctx context.Context, token string) error { return nil }

func (p *memIdentity) Subscribe(fn func(identity.Event)) func() { return func() {} }

// memProfiles serves one profile by user ID.
type memProfiles struct {
	profile *identity.Profile
}

func (s *memProfiles) GetWithTenant(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	if s.profile == nil || s.profile.UserID != userID {
		return nil, identity.ErrProfileNotFound
	}
	return s.profile, nil
}

func (s *memProfiles) Get(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	return s.GetWithTenant(ctx, userID)
}

func (s *memProfiles) TenantSummary(ctx context.Context, tenantID uuid.UUID) (*identity.TenantSummary, error) {
	return nil, identity.ErrTenantSummaryNotFound
}

type fixture struct {
	router   http.Handler
	schools  *memSchools
	provider *memIdentity
	profiles *memProfiles
	school   *tenant.Tenant
}

func newFixture(t *testing.T, env environment.Environment) *fixture {
	t.Helper()

	school := &tenant.Tenant{
		ID:     uuid.New(),
		Slug:   "escola-abc",
		Name:   "Escola ABC",
		Active: true,
	}
	schools := &memSchools{schools: map[string]*tenant.Tenant{school.Slug: school}}

	resolver := tenant.NewResolver(schools, tenant.WithCache(tenant.NewNoopCache()))
	t.Cleanup(func() { _ = resolver.Close() })

	tenants := tenant.NewService(resolver)
	t.Cleanup(func() { _ = tenants.Close() })
	tenants.Start(context.Background(), "")

	provider := &memIdentity{
		user:  &identity.User{ID: uuid.New(), Email: "ana@example.com", CreatedAt: time.Now()},
		token: "tok-1",
	}
	profiles := &memProfiles{}
	identities := identity.NewService(provider, profiles)
	t.Cleanup(func() { _ = identities.Close() })

	router := shell.NewRouter(shell.Deps{
		Env:      env,
		Hosts:    tenant.DefaultHosts(),
		Resolver: resolver,
		Tenants:  tenants,
		Identity: identities,
	})

	return &fixture{
		router:   router,
		schools:  schools,
		provider: provider,
		profiles: profiles,
		school:   school,
	}
}

func (f *fixture) bindProfile(role identity.Role) {
	f.profiles.profile = &identity.Profile{
		ID:       uuid.New(),
		UserID:   f.provider.user.ID,
		Name:     "Ana",
		Role:     role,
		TenantID: &f.school.ID,
		Tenant: &identity.TenantSummary{
			ID:   f.school.ID,
			Name: f.school.Name,
			Slug: f.school.Slug,
		},
	}
}

func (f *fixture) get(t *testing.T, target string, signedIn bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest("GET", target, nil)
	if signedIn {
		req.AddCookie(&http.Cookie{Name: identity.SessionCookie, Value: f.provider.token})
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHome_AnonymousSeesSignin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, environment.Production)
	rec, body := f.get(t, "http://eduquinha.com.br/", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signin", body["surface"])
}

func TestHome_RoleDispatch(t *testing.T) {
	t.Parallel()

	roles := map[identity.Role]string{
		identity.RoleAdmin:       "dashboard-admin",
		identity.RoleProfessor:   "dashboard-professor",
		identity.RoleResponsavel: "dashboard-responsavel",
		identity.RoleAluno:       "dashboard-aluno",
		identity.RoleSysadmin:    "dashboard-sysadmin",
	}

	for role, surface := range roles {
		role, surface := role, surface
		t.Run(string(role), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, environment.Production)
			f.bindProfile(role)

			rec, body := f.get(t, "http://escola-abc.eduquinha.com.br/", true)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, surface, body["surface"])
		})
	}
}

func TestHome_UnknownRole(t *testing.T) {
	t.Parallel()

	f := newFixture(t, environment.Production)
	f.bindProfile(identity.Role("coordenador"))

	rec, body := f.get(t, "http://escola-abc.eduquinha.com.br/", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unknown-role", body["surface"])
	assert.NotNil(t, body["data"], "raw profile must be surfaced")
	links := body["links"].(map[string]any)
	assert.Equal(t, "/auth/signout", links["signout"])
}

func TestHome_SchoolNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, environment.Production)
	rec, body := f.get(t, "http://desconhecida.eduquinha.com.br/", false)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "school-not-found", body["surface"])
	links := body["links"].(map[string]any)
	assert.Contains(t, links["home"], "eduquinha.com.br")
}

func TestHome_SchoolLoadError(t *testing.T) {
	t.Parallel()

	f := newFixture(t, environment.Production)
	f.schools.err = errors.New("db down")

	rec, body := f.get(t, "http://escola-abc.eduquinha.com.br/", false)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "school-unavailable", body["surface"])
	assert.Equal(t, "lookup_failed", body["code"])
}

func TestHome_DevGuardRedirect(t *testing.T) {
	t.Parallel()

	f := newFixture(t, environment.Development)
	f.bindProfile(identity.RoleProfessor)

	req := httptest.NewRequest("GET", "http://localhost:3000/?page=2", nil)
	req.AddCookie(&http.Cookie{Name: identity.SessionCookie, Value: f.provider.token})
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/?escola=escola-abc&page=2", rec.Header().Get("Location"))

	// Following the redirect reaches the dashboard without another rewrite.
	rec2, body := f.get(t, "http://localhost:3000"+rec.Header().Get("Location"), true)
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, "dashboard-professor", body["surface"])
}

func TestTenantAPI_Current(t *testing.T) {
	t.Parallel()

	f := newFixture(t, environment.Production)
	rec, body := f.get(t, "http://escola-abc.eduquinha.com.br/api/tenant/current", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "resolved", body["status"])
	school := body["tenant"].(map[string]any)
	assert.Equal(t, "escola-abc", school["slug"])
}

func TestAuth_SignInFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, environment.Production)

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest("POST", "http://eduquinha.com.br/auth/signin",
			strings.NewReader(`{"email":"ana@example.com","password":"wrong"}`))
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("success sets the session cookie", func(t *testing.T) {
		req := httptest.NewRequest("POST", "http://eduquinha.com.br/auth/signin",
			strings.NewReader(`{"email":"ana@example.com","password":"s3cret"}`))
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var session *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == identity.SessionCookie {
				session = c
			}
		}
		require.NotNil(t, session)
		assert.Equal(t, "tok-1", session.Value)
		assert.True(t, session.HttpOnly)
	})

	t.Run("missing fields", func(t *testing.T) {
		req := httptest.NewRequest("POST", "http://eduquinha.com.br/auth/signin",
			strings.NewReader(`{"email":"ana@example.com"}`))
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuth_SignOutClearsCookie(t *testing.T) {
	t.Parallel()

	f := newFixture(t, environment.Production)

	req := httptest.NewRequest("POST", "http://eduquinha.com.br/auth/signout", nil)
	req.AddCookie(&http.Cookie{Name: identity.SessionCookie, Value: "tok-1"})
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == identity.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.Empty(t, session.Value)
	assert.Negative(t, session.MaxAge)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	f := newFixture(t, environment.Production)
	rec, _ := f.get(t, "http://eduquinha.com.br/healthz", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())
}

func TestRequestIDEchoed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, environment.Production)
	rec, _ := f.get(t, "http://eduquinha.com.br/healthz", false)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
