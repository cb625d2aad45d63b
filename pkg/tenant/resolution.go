package tenant

// Status is the phase of a tenant resolution.
type Status string

const (
	// StatusIdle means no resolution has been requested yet.
	StatusIdle Status = "idle"
	// StatusLoading means a resolution is in flight.
	StatusLoading Status = "loading"
	// StatusResolved means the lookup finished; Tenant is nil when the
	// request carried no tenant identifier (main/marketing site).
	StatusResolved Status = "resolved"
	// StatusNotFound means the identifier matched no active school.
	StatusNotFound Status = "not_found"
	// StatusError means the lookup failed for a reason that may be
	// transient; Reason carries a stable machine-readable code.
	StatusError Status = "error"
)

// Reason is a stable machine-readable failure code. Raw backend error
// strings never cross this boundary.
type Reason string

const (
	// ReasonLookupFailed covers backend or network failures.
	ReasonLookupFailed Reason = "lookup_failed"
	// ReasonSlugConflict means multiple active schools share the slug.
	ReasonSlugConflict Reason = "slug_conflict"
	// ReasonTimeout means the lookup exceeded its deadline.
	ReasonTimeout Reason = "timeout"
)

// Resolution is the outcome of resolving a tenant identifier.
type Resolution struct {
	Status Status  `json:"status"`
	Tenant *Tenant `json:"tenant,omitempty"`
	Reason Reason  `json:"reason,omitempty"`
}

// NoTenant reports whether the resolution succeeded without a tenant,
// i.e. the main site rather than a school subdomain.
func (r Resolution) NoTenant() bool {
	return r.Status == StatusResolved && r.Tenant == nil
}

// Terminal reports whether the resolution reached a final state.
func (r Resolution) Terminal() bool {
	switch r.Status {
	case StatusResolved, StatusNotFound, StatusError:
		return true
	}
	return false
}

func resolved(t *Tenant) Resolution {
	return Resolution{Status: StatusResolved, Tenant: t}
}

func notFound() Resolution {
	return Resolution{Status: StatusNotFound}
}

func failed(reason Reason) Resolution {
	return Resolution{Status: StatusError, Reason: reason}
}

func loading() Resolution {
	return Resolution{Status: StatusLoading}
}
