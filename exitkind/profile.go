package exitkind

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Site is one place an exit happened: a bytecode index and the reason.
type Site struct {
	BytecodeIndex uint32
	Kind          Kind
}

func (s Site) String() string {
	return fmt.Sprintf("bc#%d:%s", s.BytecodeIndex, s.Kind)
}

// Profile remembers the distinct sites a code block has exited from, so the
// next compilation can stop speculating there. Safe for concurrent use.
type Profile struct {
	sites mapset.Set[Site]
}

func NewProfile() *Profile {
	return &Profile{sites: mapset.NewSet[Site]()}
}

// Add records site and reports whether it was new.
func (p *Profile) Add(site Site) bool {
	if !site.Kind.Valid() || site.Kind == Unset {
		panic(fmt.Sprintf("exitkind: profiling invalid site %s", site))
	}
	return p.sites.Add(site)
}

func (p *Profile) Has(site Site) bool {
	return p.sites.Contains(site)
}

// HasKind reports whether any site exited for kind.
func (p *Profile) HasKind(kind Kind) bool {
	for _, s := range p.sites.ToSlice() {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

func (p *Profile) Len() int {
	return p.sites.Cardinality()
}

// Sites returns the recorded sites ordered by bytecode index, then kind.
func (p *Profile) Sites() []Site {
	sites := p.sites.ToSlice()
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].BytecodeIndex != sites[j].BytecodeIndex {
			return sites[i].BytecodeIndex < sites[j].BytecodeIndex
		}
		return sites[i].Kind < sites[j].Kind
	})
	return sites
}
