package track

import (
	"fmt"
	"regexp"
)

// Forced restricts which sequence roles Candidates may return.
type Forced int

const (
	ForceStart       Forced = iota // sequence openers
	ForceMiddleOrEnd               // any continuation
	ForceEnd                       // closers only
)

// NamingLaw is the legacy two-part naming convention: "<theme>_<code>".
// A template named "C_start" opens theme C, "C_mid2" continues it and
// "C_end" closes it.
type NamingLaw struct {
	ThemePattern string // regexp fragment matching a theme, e.g. "[A-Za-z0-9]+"
	StartCode    string
	MiddleCode   string
	EndCode      string
}

func DefaultNamingLaw() NamingLaw {
	return NamingLaw{
		ThemePattern: "[A-Za-z0-9]+",
		StartCode:    "start",
		MiddleCode:   "mid",
		EndCode:      "end",
	}
}

// Matcher classifies templates into sequence roles. Explicit tags always
// win; the naming law is consulted only in compat mode and only for
// templates whose Role is RoleUnset.
type Matcher struct {
	Law    NamingLaw
	Compat bool

	start *regexp.Regexp
	cont  *regexp.Regexp
	end   *regexp.Regexp
}

func NewMatcher(law NamingLaw, compat bool) (*Matcher, error) {
	if law.ThemePattern == "" || law.StartCode == "" || law.MiddleCode == "" || law.EndCode == "" {
		return nil, fmt.Errorf("naming law: theme pattern and all role codes are required")
	}
	theme := "(" + law.ThemePattern + ")"
	start, err := regexp.Compile("^" + theme + "_(" + regexp.QuoteMeta(law.StartCode) + ")")
	if err != nil {
		return nil, fmt.Errorf("naming law start: %w", err)
	}
	cont, err := regexp.Compile("^" + theme + "_(" + regexp.QuoteMeta(law.MiddleCode) + "|" + regexp.QuoteMeta(law.EndCode) + ")")
	if err != nil {
		return nil, fmt.Errorf("naming law continuation: %w", err)
	}
	end, err := regexp.Compile("^" + theme + "_(" + regexp.QuoteMeta(law.EndCode) + ")")
	if err != nil {
		return nil, fmt.Errorf("naming law end: %w", err)
	}
	return &Matcher{Law: law, Compat: compat, start: start, cont: cont, end: end}, nil
}

// Classify applies the naming law to a bare name. ok is false for names
// that follow no part of the law.
func (m *Matcher) Classify(name string) (theme string, role Role, ok bool) {
	if g := m.start.FindStringSubmatch(name); g != nil {
		return g[1], RoleStart, true
	}
	if g := m.end.FindStringSubmatch(name); g != nil {
		return g[1], RoleEnd, true
	}
	if g := m.cont.FindStringSubmatch(name); g != nil {
		return g[1], RoleMiddle, true
	}
	return "", RolePlain, false
}

// Tag returns the theme and role of t.
func (m *Matcher) Tag(t *Template) (string, Role) {
	if t == nil {
		return "", RolePlain
	}
	if t.Role != RoleUnset {
		if t.Role == RolePlain {
			return "", RolePlain
		}
		return t.Theme, t.Role
	}
	if !m.Compat {
		return "", RolePlain
	}
	theme, role, ok := m.Classify(t.Name)
	if !ok {
		return "", RolePlain
	}
	return theme, role
}

// StartTheme reports the theme t opens, if any.
func (m *Matcher) StartTheme(t *Template) (string, bool) {
	theme, role := m.Tag(t)
	return theme, role == RoleStart
}

// IsEnd reports whether t closes a sequence of the given theme.
func (m *Matcher) IsEnd(t *Template, theme string) bool {
	th, role := m.Tag(t)
	return role == RoleEnd && th == theme
}

// Candidates returns the subset of ts that fits the forced role. An empty
// theme matches any theme, which is how sequence openers are listed.
func (m *Matcher) Candidates(ts []*Template, theme string, forced Forced) []Candidate {
	out := make([]Candidate, 0, len(ts))
	for _, t := range ts {
		if t == nil {
			continue
		}
		th, role := m.Tag(t)
		if theme != "" && th != theme {
			continue
		}
		switch forced {
		case ForceStart:
			if role != RoleStart {
				continue
			}
		case ForceMiddleOrEnd:
			if role != RoleMiddle && role != RoleEnd {
				continue
			}
		case ForceEnd:
			if role != RoleEnd {
				continue
			}
		}
		out = append(out, Candidate{Template: t, Weight: t.Weight})
	}
	return out
}

// Normal returns the templates eligible outside a sequence: plain roads
// and sequence openers.
func (m *Matcher) Normal(ts []*Template) []Candidate {
	out := make([]Candidate, 0, len(ts))
	for _, t := range ts {
		if t == nil {
			continue
		}
		if _, role := m.Tag(t); role != RolePlain && role != RoleStart {
			continue
		}
		out = append(out, Candidate{Template: t, Weight: t.Weight})
	}
	return out
}
