package tenant_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduquinha/eduquinha/pkg/tenant"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestHosts_TenantURL(t *testing.T) {
	t.Parallel()

	hosts := tenant.DefaultHosts()

	tests := []struct {
		name string
		base string
		slug string
		want string
	}{
		{"dev host gains query param", "http://localhost:3000/turmas", "escola-abc", "http://localhost:3000/turmas?escola=escola-abc"},
		{"dev host keeps other params", "http://localhost:3000/?page=2", "escola-abc", "http://localhost:3000/?escola=escola-abc&page=2"},
		{"subdomain replaced", "https://outra.eduquinha.com.br/", "escola-abc", "https://escola-abc.eduquinha.com.br/"},
		{"bare domain gains subdomain", "https://eduquinha.com.br/", "escola-abc", "https://escola-abc.eduquinha.com.br/"},
		{"single label falls back to default domain", "https://intranet/", "escola-abc", "https://escola-abc.eduquinha.com.br/"},
		{"port preserved", "https://outra.eduquinha.com.br:8443/x", "escola-abc", "https://escola-abc.eduquinha.com.br:8443/x"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hosts.TenantURL(mustParse(t, tt.base), tt.slug)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestHosts_TenantURL_RoundTrip(t *testing.T) {
	t.Parallel()

	hosts := tenant.DefaultHosts()

	// A link minted for any base must resolve back to the same identifier.
	bases := []string{
		"http://localhost:3000/",
		"https://eduquinha.com.br/turmas?page=2",
		"https://outra.eduquinha.com.br/",
	}
	for _, base := range bases {
		link := hosts.TenantURL(mustParse(t, base), "escola-abc")
		assert.Equal(t, "escola-abc", hosts.FromURL(link), "base %s produced %s", base, link)
	}
}

func TestHosts_BaseURL(t *testing.T) {
	t.Parallel()

	hosts := tenant.DefaultHosts()

	t.Run("dev host loses param only", func(t *testing.T) {
		t.Parallel()

		got := hosts.BaseURL(mustParse(t, "http://localhost:3000/?escola=abc&page=2"))
		assert.Equal(t, "http://localhost:3000/?page=2", got.String())
	})

	t.Run("subdomain stripped", func(t *testing.T) {
		t.Parallel()

		got := hosts.BaseURL(mustParse(t, "https://escola-abc.eduquinha.com.br/turmas"))
		assert.Equal(t, "https://eduquinha.com.br/turmas", got.String())
	})

	t.Run("bare domain unchanged", func(t *testing.T) {
		t.Parallel()

		got := hosts.BaseURL(mustParse(t, "https://eduquinha.com.br/"))
		assert.Equal(t, "https://eduquinha.com.br/", got.String())
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		t.Parallel()

		base := mustParse(t, "https://escola-abc.eduquinha.com.br/")
		_ = hosts.BaseURL(base)
		assert.Equal(t, "escola-abc.eduquinha.com.br", base.Host)
	})
}
