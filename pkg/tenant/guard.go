package tenant

import (
	"net/http"

	"github.com/eduquinha/eduquinha/pkg/environment"
	"github.com/eduquinha/eduquinha/pkg/identity"
)

// ConsistencyGuard reconciles the signed-in profile's school with the URL in
// development-style environments, where the tenant travels as a query
// parameter instead of a subdomain.
//
// When the parameter is absent and the profile is bound to a school with a
// known slug, the request is redirected to the same URL with the parameter
// added. All other query parameters survive verbatim and the redirect does
// not create a history entry worth keeping (the browser lands on the
// canonical URL). Production hosts are never rewritten: there the subdomain
// is authoritative. Once the parameter is present the guard is a no-op, so
// repeated invocations produce at most one rewrite.
func ConsistencyGuard(hosts Hosts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if !environment.IsDevelopment(ctx) || !hosts.IsDevHost(r.Host) {
				next.ServeHTTP(w, r)
				return
			}

			query := r.URL.Query()
			if query.Get(hosts.queryParam()) != "" {
				next.ServeHTTP(w, r)
				return
			}

			profile := identity.ProfileFromContext(ctx)
			if profile == nil || profile.TenantID == nil {
				next.ServeHTTP(w, r)
				return
			}

			slug := ""
			if profile.Tenant != nil {
				slug = profile.Tenant.Slug
			}
			if slug == "" {
				// The profile is bound to a school but the slug is not
				// known here; resolving it belongs to the tenant context,
				// not the guard.
				next.ServeHTTP(w, r)
				return
			}

			query.Set(hosts.queryParam(), slug)
			target := *r.URL
			target.RawQuery = query.Encode()
			http.Redirect(w, r, target.RequestURI(), http.StatusFound)
		})
	}
}
