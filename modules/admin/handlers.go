package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eduquinha/eduquinha/internal/storage/postgres"
	"github.com/eduquinha/eduquinha/pkg/logger"
	"github.com/eduquinha/eduquinha/pkg/slugify"
)

type handlers struct {
	deps Deps
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type createSchoolRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
	Logo string `json:"logo_url,omitempty"`
}

// createSchool registers a school. The slug defaults to the slugified name so
// admins only care about it when they want a specific one.
func (h *handlers) createSchool(w http.ResponseWriter, r *http.Request) {
	var req createSchoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_request", Message: "Invalid request body."})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_request", Message: "name is required"})
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify.Make(req.Name)
	} else {
		slug = slugify.Make(slug)
	}
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_request", Message: "name does not produce a usable slug"})
		return
	}

	school, err := h.deps.Schools.Create(r.Context(), req.Name, slug, req.Logo)
	if err != nil {
		if errors.Is(err, postgres.ErrSlugTaken) {
			writeJSON(w, http.StatusConflict, errorBody{Code: "slug_taken", Message: "A school with this slug already exists."})
			return
		}
		h.deps.Log.ErrorContext(r.Context(), "school creation failed", logger.Slug(slug), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Code: "internal_error", Message: "Could not create the school."})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"school": school,
		"link":   h.link(r, school.Slug),
	})
}

// schoolLink mints a shareable URL for the school, shaped for the caller's
// current host style (query parameter in development, subdomain otherwise).
func (h *handlers) schoolLink(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	writeJSON(w, http.StatusOK, map[string]string{
		"slug": slug,
		"link": h.link(r, slug),
	})
}

// refreshSchool drops the cached record for the slug and, when it is the
// currently resolved tenant, re-resolves the application state.
func (h *handlers) refreshSchool(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	h.deps.Resolver.Invalidate(r.Context(), slug)
	h.deps.Tenants.Refresh(r.Context())
	writeJSON(w, http.StatusAccepted, map[string]string{"slug": slug, "status": "refreshing"})
}

func (h *handlers) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if err := h.deps.Schools.SetActive(r.Context(), slug, active); err != nil {
			h.deps.Log.ErrorContext(r.Context(), "school activation toggle failed",
				logger.Slug(slug), logger.Error(err))
			writeJSON(w, http.StatusNotFound, errorBody{Code: "school_not_found", Message: "School not found."})
			return
		}
		// The old state may be cached; force the next lookup to hit storage.
		h.deps.Resolver.Invalidate(r.Context(), slug)
		writeJSON(w, http.StatusOK, map[string]any{"slug": slug, "active": active})
	}
}

func (h *handlers) link(r *http.Request, slug string) string {
	base := &url.URL{Scheme: "https", Host: r.Host, Path: "/"}
	if r.TLS == nil {
		base.Scheme = "http"
	}
	return h.deps.Hosts.TenantURL(base, slug).String()
}
