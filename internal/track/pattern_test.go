package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher(t *testing.T, compat bool) *Matcher {
	t.Helper()
	m, err := NewMatcher(DefaultNamingLaw(), compat)
	require.NoError(t, err)
	return m
}

func TestClassify(t *testing.T) {
	m := newTestMatcher(t, true)
	tests := []struct {
		name  string
		theme string
		role  Role
		ok    bool
	}{
		{"C_start", "C", RoleStart, true},
		{"C_start_2", "C", RoleStart, true},
		{"Desert_mid", "Desert", RoleMiddle, true},
		{"Desert_mid3", "Desert", RoleMiddle, true},
		{"C_end", "C", RoleEnd, true},
		{"straight", "", RolePlain, false},
		{"_start", "", RolePlain, false},
		{"C-start", "", RolePlain, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, role, ok := m.Classify(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.role, role)
			assert.Equal(t, tt.theme, theme)
		})
	}
}

func TestTagExplicitWins(t *testing.T) {
	m := newTestMatcher(t, true)

	tagged := &Template{Name: "C_start", Theme: "Z", Role: RoleEnd}
	theme, role := m.Tag(tagged)
	assert.Equal(t, "Z", theme)
	assert.Equal(t, RoleEnd, role)

	plain := &Template{Name: "C_start", Role: RolePlain}
	theme, role = m.Tag(plain)
	assert.Empty(t, theme)
	assert.Equal(t, RolePlain, role)

	inferred := &Template{Name: "C_mid"}
	theme, role = m.Tag(inferred)
	assert.Equal(t, "C", theme)
	assert.Equal(t, RoleMiddle, role)

	off := newTestMatcher(t, false)
	_, role = off.Tag(inferred)
	assert.Equal(t, RolePlain, role)
}

func TestCandidatesByRole(t *testing.T) {
	m := newTestMatcher(t, true)
	ts := []*Template{
		{Name: "straight", Weight: 1},
		{Name: "C_start", Weight: 1},
		{Name: "C_mid", Weight: 1},
		{Name: "C_end", Weight: 1},
		{Name: "D_start", Weight: 1},
		{Name: "D_end", Weight: 1},
		nil,
		{Name: "tagged", Theme: "C", Role: RoleEnd, Weight: 0.5},
	}
	names := func(cs []Candidate) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.Template.Name)
		}
		return out
	}

	assert.Equal(t, []string{"C_mid", "C_end", "tagged"}, names(m.Candidates(ts, "C", ForceMiddleOrEnd)))
	assert.Equal(t, []string{"C_end", "tagged"}, names(m.Candidates(ts, "C", ForceEnd)))
	assert.Equal(t, []string{"D_end"}, names(m.Candidates(ts, "D", ForceEnd)))
	assert.Equal(t, []string{"C_start", "D_start"}, names(m.Candidates(ts, "", ForceStart)))
	assert.Empty(t, m.Candidates(ts, "E", ForceMiddleOrEnd))
	assert.Equal(t, []string{"straight", "C_start", "D_start"}, names(m.Normal(ts)))

	assert.True(t, m.IsEnd(ts[7], "C"))
	assert.False(t, m.IsEnd(ts[5], "C"))
	theme, ok := m.StartTheme(ts[4])
	assert.True(t, ok)
	assert.Equal(t, "D", theme)
}

func TestNewMatcherRejectsIncompleteLaw(t *testing.T) {
	_, err := NewMatcher(NamingLaw{ThemePattern: "[A-Z]+", StartCode: "s"}, true)
	assert.Error(t, err)

	_, err = NewMatcher(NamingLaw{ThemePattern: "([", StartCode: "s", MiddleCode: "m", EndCode: "e"}, true)
	assert.Error(t, err)
}

func TestCustomLaw(t *testing.T) {
	m, err := NewMatcher(NamingLaw{ThemePattern: "[a-z]+", StartCode: "in", MiddleCode: "through", EndCode: "out"}, true)
	require.NoError(t, err)
	theme, role, ok := m.Classify("cave_through")
	require.True(t, ok)
	assert.Equal(t, "cave", theme)
	assert.Equal(t, RoleMiddle, role)
}
