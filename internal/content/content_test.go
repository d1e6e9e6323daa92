package content

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T, files ...string) *FSResolver {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("<html></html>"), 0o644))
	}
	return NewResolverFromFs(fs)
}

func TestFSResolver_Resolve(t *testing.T) {
	r := newTree(t,
		"lures/teams_error.html",
		"lures/chrome/index.html",
		"lures/scenarios/acme_portal/index.html",
		"lures/scenarios/chrome/index.html",
		"lures/broken/readme.txt",
	)

	tests := []struct {
		scenario string
		want     string
		kind     Kind
		ok       bool
	}{
		{"teams_error", "lures/teams_error.html", KindStatic, true},
		{"acme_portal", "lures/scenarios/acme_portal/index.html", KindCloned, true},
		{"chrome", "lures/scenarios/chrome/index.html", KindCloned, true},
		{"broken", "", "", false},
		{"missing", "", "", false},
		{"../etc", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			ref, ok := r.Resolve(tt.scenario)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, ref.Template)
			assert.Equal(t, tt.kind, ref.Kind)
		})
	}
}

func TestFSResolver_Listings(t *testing.T) {
	r := newTree(t,
		"lures/teams_error.html",
		"lures/chrome/index.html",
		"lures/scenarios/acme_portal/index.html",
		"traps/root_certificate.html",
		"traps/cloudflare.html",
		"traps/notes.txt",
	)

	assert.Equal(t, []Entry{
		{ID: "chrome", Name: "Lure: chrome"},
		{ID: "teams_error", Name: "Lure: teams_error"},
		{ID: "acme_portal", Name: "Cloned Site: acme_portal"},
	}, r.Scenarios())

	assert.Equal(t, []Entry{
		{ID: "cloudflare", Name: "Cloudflare"},
		{ID: "root_certificate", Name: "Root Certificate"},
	}, r.Traps())
}

func TestIsAllowedTrap(t *testing.T) {
	assert.True(t, IsAllowedTrap("windows_update"))
	assert.False(t, IsAllowedTrap("{{7*7}}"))
	assert.False(t, IsAllowedTrap(""))
}
