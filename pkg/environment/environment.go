package environment

// Environment represents the application runtime environment.
//
// It is the single seam deciding development-style behavior: in development
// the tenant cannot be encoded in the hostname, so the query-parameter
// fallback and the URL consistency guard are enabled; in production the
// subdomain is authoritative.
type Environment string

const (
	// Development for local development environments.
	Development Environment = "development"
	// Staging for pre-production environments.
	Staging Environment = "staging"
	// Production for production environments.
	Production Environment = "production"
)

// Parse normalizes an environment name, accepting common short forms.
// Unrecognized values default to Development so that a misconfigured
// local setup never accidentally behaves like production.
func Parse(s string) Environment {
	switch s {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

// IsDevelopment reports whether e is a development-style environment.
func (e Environment) IsDevelopment() bool {
	return e == Development || e == "dev" || e == ""
}

// IsProduction reports whether e is a production-style environment.
func (e Environment) IsProduction() bool {
	return e == Production || e == "prod"
}

// Config loads the environment name from the process environment.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"` // AppEnv is the runtime environment name: development, staging or production.
}

// Environment returns the parsed environment from the config.
func (c Config) Environment() Environment {
	return Parse(c.AppEnv)
}
