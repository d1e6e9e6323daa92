// Package content answers whether lure content exists for a scenario.
// Rendering is left to the presentation layer; only identifiers flow through here.
package content

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// allowedTraps lists the fake-error overlays a caller may request.
var allowedTraps = map[string]struct{}{
	"cloudflare":       {},
	"chrome_update":    {},
	"windows_update":   {},
	"filefix":          {},
	"missing_font":     {},
	"root_certificate": {},
	"teams_error":      {},
}

// IsAllowedTrap reports whether trap is one of the known overlays.
func IsAllowedTrap(trap string) bool {
	_, ok := allowedTraps[trap]
	return ok
}

// Kind tells where a scenario's content was found.
type Kind string

const (
	KindCloned Kind = "cloned"
	KindStatic Kind = "static"
)

// Ref identifies renderable content for a scenario.
type Ref struct {
	Scenario string `json:"scenario"`
	Template string `json:"template"`
	Kind     Kind   `json:"kind"`
}

// Resolver looks up content for a scenario.
type Resolver interface {
	Resolve(scenario string) (Ref, bool)
}

// Entry is a listing row for the admin API.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FSResolver probes a content tree laid out as
//
//	lures/scenarios/<scenario>/index.html   cloned sites
//	lures/<scenario>/index.html             static lure directories
//	lures/<scenario>.html                   static lure files
//	traps/<trap>.html
type FSResolver struct {
	fs afero.Fs
}

// NewFSResolver roots a resolver at dir on the OS filesystem.
func NewFSResolver(dir string) *FSResolver {
	return &FSResolver{fs: afero.NewBasePathFs(afero.NewOsFs(), dir)}
}

// NewResolverFromFs wraps an existing filesystem, rooted at its top.
func NewResolverFromFs(fs afero.Fs) *FSResolver {
	return &FSResolver{fs: fs}
}

// Resolve checks cloned sites first, then static lures.
func (r *FSResolver) Resolve(scenario string) (Ref, bool) {
	if scenario == "" || strings.ContainsAny(scenario, `/\`) || strings.Contains(scenario, "..") {
		return Ref{}, false
	}

	candidates := []struct {
		file string
		kind Kind
	}{
		{path.Join("lures", "scenarios", scenario, "index.html"), KindCloned},
		{path.Join("lures", scenario, "index.html"), KindStatic},
		{path.Join("lures", scenario+".html"), KindStatic},
	}
	for _, c := range candidates {
		if r.isFile(c.file) {
			return Ref{Scenario: scenario, Template: c.file, Kind: c.kind}, true
		}
	}
	return Ref{}, false
}

// Scenarios lists static lures followed by cloned sites.
func (r *FSResolver) Scenarios() []Entry {
	var entries []Entry
	for _, info := range r.readDir("lures") {
		name := info.Name()
		switch {
		case !info.IsDir() && strings.HasSuffix(name, ".html"):
			id := strings.TrimSuffix(name, ".html")
			entries = append(entries, Entry{ID: id, Name: "Lure: " + id})
		case info.IsDir() && name != "scenarios" && r.isFile(path.Join("lures", name, "index.html")):
			entries = append(entries, Entry{ID: name, Name: "Lure: " + name})
		}
	}
	for _, info := range r.readDir(path.Join("lures", "scenarios")) {
		if info.IsDir() && r.isFile(path.Join("lures", "scenarios", info.Name(), "index.html")) {
			entries = append(entries, Entry{ID: info.Name(), Name: "Cloned Site: " + info.Name()})
		}
	}
	return entries
}

// Traps lists the trap overlays present on disk.
func (r *FSResolver) Traps() []Entry {
	var entries []Entry
	for _, info := range r.readDir("traps") {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".html") {
			continue
		}
		id := strings.TrimSuffix(info.Name(), ".html")
		entries = append(entries, Entry{ID: id, Name: titleize(id)})
	}
	return entries
}

func (r *FSResolver) isFile(name string) bool {
	info, err := r.fs.Stat(name)
	return err == nil && !info.IsDir()
}

func (r *FSResolver) readDir(dir string) []os.FileInfo {
	infos, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos
}

func titleize(id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
