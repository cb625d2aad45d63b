package tenant

import (
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// Default host settings. The query parameter name matches the one schools
// share in development links; changing it breaks existing bookmarks.
const (
	DefaultQueryParam    = "escola"
	DefaultDefaultDomain = "eduquinha.com.br"
)

var (
	defaultDevHosts       = []string{"localhost", "127.0.0.1", "0.0.0.0"}
	defaultReservedLabels = []string{"www", "app", "api", "admin"}

	// identifierPattern keeps identifiers DNS-label shaped. Anything else
	// is treated as "no tenant" rather than an error.
	identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)
)

// Hosts describes how tenant identifiers are encoded in URLs.
//
// On a development-style host the tenant travels in a query parameter since
// it cannot be a hostname label; on a production-style host the tenant is the
// first subdomain label. Hosts is the single seam deciding which strategy
// applies, so tests and deployments configure it instead of sniffing
// hostnames throughout the codebase.
type Hosts struct {
	// DevHosts are hostnames treated as development-style.
	DevHosts []string
	// ReservedLabels are subdomain labels that never identify a tenant.
	ReservedLabels []string
	// DefaultDomain is the registrable domain used to build tenant URLs
	// when the current host carries fewer than two labels.
	DefaultDomain string
	// QueryParam is the development-mode tenant selector parameter.
	QueryParam string
}

// DefaultHosts returns the production defaults.
func DefaultHosts() Hosts {
	return Hosts{
		DevHosts:       slices.Clone(defaultDevHosts),
		ReservedLabels: slices.Clone(defaultReservedLabels),
		DefaultDomain:  DefaultDefaultDomain,
		QueryParam:     DefaultQueryParam,
	}
}

// Config loads host settings from the environment.
type Config struct {
	DevHosts       []string `env:"TENANT_DEV_HOSTS" envDefault:"localhost,127.0.0.1,0.0.0.0"`  // DevHosts are hostnames treated as development-style.
	ReservedLabels []string `env:"TENANT_RESERVED_LABELS" envDefault:"www,app,api,admin"`      // ReservedLabels never resolve as tenant identifiers.
	DefaultDomain  string   `env:"TENANT_DEFAULT_DOMAIN" envDefault:"eduquinha.com.br"`        // DefaultDomain is the fallback registrable domain for tenant links.
	QueryParam     string   `env:"TENANT_QUERY_PARAM" envDefault:"escola"`                     // QueryParam is the development-mode tenant selector.
}

// Hosts converts the config into a Hosts value.
func (c Config) Hosts() Hosts {
	return Hosts{
		DevHosts:       c.DevHosts,
		ReservedLabels: c.ReservedLabels,
		DefaultDomain:  c.DefaultDomain,
		QueryParam:     c.QueryParam,
	}
}

func (h Hosts) queryParam() string {
	if h.QueryParam == "" {
		return DefaultQueryParam
	}
	return h.QueryParam
}

func (h Hosts) defaultDomain() string {
	if h.DefaultDomain == "" {
		return DefaultDefaultDomain
	}
	return h.DefaultDomain
}

func (h Hosts) reserved(label string) bool {
	labels := h.ReservedLabels
	if labels == nil {
		labels = defaultReservedLabels
	}
	return slices.Contains(labels, strings.ToLower(label))
}

// IsDevHost reports whether host (with or without port) is development-style.
func (h Hosts) IsDevHost(host string) bool {
	host = stripPort(host)
	hosts := h.DevHosts
	if hosts == nil {
		hosts = defaultDevHosts
	}
	return slices.Contains(hosts, strings.ToLower(host))
}

// Identifier derives the tenant identifier from a hostname and query string.
//
// Development-style hosts use the query parameter; production-style hosts use
// the first subdomain label unless it is reserved or the host has fewer than
// three labels (bare domain). Pure and deterministic: malformed input yields
// "" rather than an error.
func (h Hosts) Identifier(host string, query url.Values) string {
	host = stripPort(host)
	if host == "" {
		return ""
	}

	if h.IsDevHost(host) {
		id := query.Get(h.queryParam())
		if id == "" || !identifierPattern.MatchString(id) {
			return ""
		}
		return id
	}

	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return ""
	}

	label := labels[0]
	if label == "" || h.reserved(label) || !identifierPattern.MatchString(label) {
		return ""
	}
	return label
}

// FromRequest derives the tenant identifier from an HTTP request.
func (h Hosts) FromRequest(r *http.Request) string {
	return h.Identifier(r.Host, r.URL.Query())
}

// FromURL derives the tenant identifier from a URL.
func (h Hosts) FromURL(u *url.URL) string {
	host := u.Host
	if host == "" {
		host = u.Hostname()
	}
	return h.Identifier(host, u.Query())
}

func stripPort(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}
	return host
}
