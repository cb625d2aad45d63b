package tenant

import (
	"net/url"
	"strings"
)

// TenantURL builds a shareable URL pointing at the given tenant, derived from
// base. On a development-style host the slug is carried in the query
// parameter; on a production-style host it replaces the subdomain label. When
// the base host has fewer than two labels the default registrable domain is
// used. Path, remaining query parameters and fragment are preserved.
func (h Hosts) TenantURL(base *url.URL, slug string) *url.URL {
	u := cloneURL(base)

	host := stripPort(u.Host)
	port := portOf(u.Host)

	if h.IsDevHost(host) {
		q := u.Query()
		q.Set(h.queryParam(), slug)
		u.RawQuery = q.Encode()
		return u
	}

	labels := strings.Split(host, ".")
	switch {
	case len(labels) >= 3:
		host = slug + "." + strings.Join(labels[1:], ".")
	case len(labels) == 2:
		host = slug + "." + host
	default:
		host = slug + "." + h.defaultDomain()
	}

	u.Host = joinHostPort(host, port)
	return u
}

// BaseURL strips the tenant from base: development-style hosts lose the query
// parameter, production-style hosts lose their subdomain label when present.
func (h Hosts) BaseURL(base *url.URL) *url.URL {
	u := cloneURL(base)

	host := stripPort(u.Host)
	port := portOf(u.Host)

	if h.IsDevHost(host) {
		q := u.Query()
		q.Del(h.queryParam())
		u.RawQuery = q.Encode()
		return u
	}

	labels := strings.Split(host, ".")
	if len(labels) >= 3 {
		u.Host = joinHostPort(strings.Join(labels[1:], "."), port)
	}
	return u
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return &url.URL{Scheme: "https"}
	}
	c := *u
	if c.Scheme == "" {
		c.Scheme = "https"
	}
	return &c
}

func portOf(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[idx+1:]
	}
	return ""
}

func joinHostPort(host, port string) string {
	if port == "" {
		return host
	}
	return host + ":" + port
}
