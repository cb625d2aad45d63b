package shell

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/eduquinha/eduquinha/pkg/identity"
	"github.com/eduquinha/eduquinha/pkg/logger"
	"github.com/eduquinha/eduquinha/pkg/tenant"
)

type handlers struct {
	deps Deps
}

// home is the role-routed entry point. Resolution failures and the anonymous
// state render dedicated surfaces; a signed-in profile is dispatched to its
// role's dashboard. The switch is exhaustive over known roles, with a
// catch-all surface for values the binary does not recognize yet.
func (h *handlers) home(w http.ResponseWriter, r *http.Request) {
	res := tenant.ResolutionFromContext(r.Context())

	switch res.Status {
	case tenant.StatusNotFound:
		base := h.deps.Hosts.BaseURL(requestURL(r))
		support := *base
		support.Path = "/suporte"
		writeJSON(w, http.StatusNotFound, payload{
			Surface: "school-not-found",
			Code:    "school_not_found",
			Message: "Escola não encontrada.",
			Links: map[string]string{
				"home":    base.String(),
				"support": support.String(),
			},
		})
		return
	case tenant.StatusError:
		writeJSON(w, http.StatusServiceUnavailable, payload{
			Surface: "school-unavailable",
			Code:    string(res.Reason),
			Message: "Não foi possível carregar a escola. Tente novamente.",
			Links:   map[string]string{"retry": r.URL.RequestURI()},
		})
		return
	}

	user := identity.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusOK, payload{
			Surface: "signin",
			Links: map[string]string{
				"signin": "/auth/signin",
				"signup": "/auth/signup",
			},
		})
		return
	}

	profile := identity.ProfileFromContext(r.Context())
	if profile == nil {
		// Account exists but no profile row has been provisioned yet.
		writeJSON(w, http.StatusOK, payload{
			Surface: "profile-pending",
			Message: "Sua conta ainda não foi vinculada a uma escola.",
			Data:    user,
			Links:   map[string]string{"signout": "/auth/signout"},
		})
		return
	}

	switch profile.Role {
	case identity.RoleAdmin:
		h.dashboard(w, r, "dashboard-admin", profile, res.Tenant)
	case identity.RoleProfessor:
		h.dashboard(w, r, "dashboard-professor", profile, res.Tenant)
	case identity.RoleResponsavel:
		h.dashboard(w, r, "dashboard-responsavel", profile, res.Tenant)
	case identity.RoleAluno:
		h.dashboard(w, r, "dashboard-aluno", profile, res.Tenant)
	case identity.RoleSysadmin:
		h.dashboard(w, r, "dashboard-sysadmin", profile, res.Tenant)
	default:
		// A role this binary does not know. Surface the raw profile so the
		// problem is visible and offer re-authentication as the way out.
		h.deps.Log.WarnContext(r.Context(), "profile has unknown role",
			logger.UserID(profile.UserID), slog.String("role", string(profile.Role)))
		writeJSON(w, http.StatusOK, payload{
			Surface: "unknown-role",
			Code:    "unknown_role",
			Message: "Perfil com papel desconhecido.",
			Data:    profile,
			Links:   map[string]string{"signout": "/auth/signout"},
		})
	}
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request, surface string, profile *identity.Profile, t *tenant.Tenant) {
	writeJSON(w, http.StatusOK, payload{
		Surface: surface,
		Data: map[string]any{
			"profile": profile,
			"school":  t,
		},
	})
}

// currentTenant reports the resolution attached to this request.
func (h *handlers) currentTenant(w http.ResponseWriter, r *http.Request) {
	res := tenant.ResolutionFromContext(r.Context())
	writeJSON(w, http.StatusOK, res)
}

// refreshTenant drops the cached entry for this request's tenant and
// re-resolves the application-wide state. The re-resolution is asynchronous,
// so the answer is the loading snapshot.
func (h *handlers) refreshTenant(w http.ResponseWriter, r *http.Request) {
	if id := h.deps.Hosts.FromRequest(r); id != "" {
		h.deps.Resolver.Invalidate(r.Context(), id)
	}
	h.deps.Tenants.Refresh(r.Context())
	writeJSON(w, http.StatusAccepted, h.deps.Tenants.State())
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c credentials) validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("email is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

func (h *handlers) signIn(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.deps.Identity.SignIn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, payload{
				Code:    "invalid_credentials",
				Message: "E-mail ou senha incorretos.",
			})
			return
		}
		h.deps.Log.ErrorContext(r.Context(), "sign-in failed", logger.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, payload{
			Code:    "auth_unavailable",
			Message: "Não foi possível entrar agora. Tente novamente.",
		})
		return
	}

	h.setSession(w, token)
	writeJSON(w, http.StatusOK, payload{Data: h.deps.Identity.User()})
}

func (h *handlers) signUp(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.deps.Identity.SignUp(r.Context(), creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			writeJSON(w, http.StatusConflict, payload{
				Code:    "email_taken",
				Message: "Este e-mail já está cadastrado.",
			})
			return
		}
		h.deps.Log.ErrorContext(r.Context(), "sign-up failed", logger.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, payload{
			Code:    "auth_unavailable",
			Message: "Não foi possível criar a conta agora. Tente novamente.",
		})
		return
	}

	h.setSession(w, token)
	writeJSON(w, http.StatusCreated, payload{Data: h.deps.Identity.User()})
}

// signOut revokes the session and clears the cookie. Backend failures are
// absorbed by the identity service, so the client always ends signed out.
func (h *handlers) signOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(identity.SessionCookie); err == nil && cookie.Value != "" {
		h.deps.Identity.SignOut(r.Context(), cookie.Value)
	}
	h.clearSession(w)
	writeJSON(w, http.StatusOK, payload{
		Surface: "signin",
		Links:   map[string]string{"signin": "/auth/signin"},
	})
}

func (h *handlers) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, payload{
			Code:    "invalid_request",
			Message: "Invalid request body.",
		})
		return credentials{}, false
	}
	if err := creds.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, payload{
			Code:    "invalid_request",
			Message: err.Error(),
		})
		return credentials{}, false
	}
	return creds, true
}

func (h *handlers) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     identity.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.deps.Env.IsProduction(),
	})
}

func (h *handlers) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     identity.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func requestURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Host = r.Host
	if u.Scheme == "" {
		if r.TLS != nil {
			u.Scheme = "https"
		} else {
			u.Scheme = "http"
		}
	}
	return &u
}
