// Package tenant resolves which school a request belongs to and carries the
// result through the application.
//
// The tenant identifier is encoded in the environment: on production-style
// hosts it is the first subdomain label (acme in acme.eduquinha.com.br), on
// development-style hosts it travels in the escola query parameter because
// local hostnames cannot carry tenant labels. Hosts is the single seam that
// decides which encoding applies.
//
// # Architecture
//
//  1. Hosts: pure identifier extraction from host and query, plus the
//     inverse operations for building shareable tenant URLs.
//  2. Resolver: turns an identifier into a Resolution by querying a
//     Provider, with caching and a per-lookup deadline. Failures become
//     stable reason codes, never raw backend errors.
//  3. Service: the application-wide resolution state. It observes
//     identifier changes from navigation, re-resolves on change, and uses a
//     generation counter so a stale in-flight result never overwrites a
//     newer one (last intent wins, not last completion).
//  4. Middleware: per-request binding of the Resolution into the request
//     context, with an observer hook that keeps the Service in step.
//  5. ConsistencyGuard: development-only URL rewrite that adds the escola
//     parameter when the signed-in profile is bound to a school and the
//     parameter is absent.
//
// # Usage
//
//	hosts := tenant.DefaultHosts()
//	resolver := tenant.NewResolver(store, tenant.WithCacheTTL(5*time.Minute))
//	svc := tenant.NewService(resolver)
//
//	r.Use(tenant.Middleware(hosts, resolver, tenant.WithObserver(svc.Observe)))
//	r.Use(tenant.ConsistencyGuard(hosts))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		if t, ok := tenant.FromContext(r.Context()); ok {
//			// school-scoped rendering
//		}
//	}
package tenant
