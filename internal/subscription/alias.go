package subscription

import "strings"

// Aliases maps every known spelling of a team name to its alias
// group. Lookup is symmetric and transitive within one group only.
type Aliases struct {
	groups map[string]int
}

// defaultAliasGroups covers spellings the community actually uses.
// Extend via config rather than here.
var defaultAliasGroups = [][]string{
	{"natus vincere", "navi", "na'vi"},
	{"faze", "faze clan"},
	{"ninjas in pyjamas", "nip"},
	{"team vitality", "vitality"},
	{"g2 esports", "g2"},
	{"mousesports", "mouz"},
	{"virtus.pro", "virtus pro", "vp"},
	{"team spirit", "spirit"},
	{"team liquid", "liquid"},
	{"eternal fire", "ef"},
}

// NewAliases builds an alias table from the given groups. Passing nil
// yields the built-in defaults; extra groups from config are appended
// after the defaults and may not bridge two existing groups.
func NewAliases(extra map[string][]string) *Aliases {
	a := &Aliases{groups: make(map[string]int)}
	id := 0
	for _, group := range defaultAliasGroups {
		for _, name := range group {
			a.groups[normalize(name)] = id
		}
		id++
	}
	for canonical, names := range extra {
		gid, ok := a.groups[normalize(canonical)]
		if !ok {
			gid = id
			id++
			a.groups[normalize(canonical)] = gid
		}
		for _, name := range names {
			a.groups[normalize(name)] = gid
		}
	}
	return a
}

// Match reports whether the two names refer to the same team:
// case-insensitive exact match, or membership in the same alias group.
func (a *Aliases) Match(favorite, candidate string) bool {
	f, c := normalize(favorite), normalize(candidate)
	if f == "" || c == "" {
		return false
	}
	if f == c {
		return true
	}
	fg, ok := a.groups[f]
	if !ok {
		return false
	}
	cg, ok := a.groups[c]
	return ok && fg == cg
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
