package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"trackrunner/internal/track"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trackrunner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsMatchTrackDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	if diff := cmp.Diff(track.DefaultConfig(), cfg.TrackConfig()); diff != "" {
		t.Fatalf("track config mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, track.DefaultNamingLaw(), cfg.NamingLaw())
}

func TestDefaultCatalog(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cat, err := cfg.Catalog()
	require.NoError(t, err)
	m, err := cfg.Matcher()
	require.NoError(t, err)

	require.Len(t, cat.Roads, 9)
	require.Len(t, cat.Branches, 4)

	byName := map[string]*track.Template{}
	for _, r := range cat.Roads {
		byName[r.Name] = r
	}
	theme, ok := m.StartTheme(byName["Canyon_start"])
	assert.True(t, ok)
	assert.Equal(t, "Canyon", theme)
	theme, ok = m.StartTheme(byName["neon_gate"])
	assert.True(t, ok)
	assert.Equal(t, "neon", theme)
	assert.True(t, m.IsEnd(byName["neon_exit"], "neon"))

	normal := map[string]bool{}
	for _, c := range m.Normal(cat.Roads) {
		normal[c.Template.Name] = true
	}
	assert.Equal(t, map[string]bool{"straight": true, "straight_lit": true, "Canyon_start": true, "neon_gate": true}, normal)

	descs := cfg.Descriptors()
	assert.Equal(t, track.BranchDescriptor{CanGoLeft: true, CanGoRight: true}, descs["tee"])
	assert.Equal(t, track.BranchDescriptor{CanGoForward: true, CanGoLeft: true, CanGoRight: true}, descs["cross"])
	assert.Equal(t, "canyon", cfg.Palettes()["Canyon_mid"])
}

func TestFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
track:
  forward_count: 8
  max_sequence_length: -1
roads:
  - {name: only, length: 20, width: 8, weight: 1}
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Track.ForwardCount)
	assert.Equal(t, 10, cfg.Track.BackwardCount, "untouched keys keep their defaults")
	assert.Equal(t, -1, cfg.Track.MaxSequenceLength)
	require.Len(t, cfg.Roads, 1)
	assert.Equal(t, "only", cfg.Roads[0].Name)
	assert.Len(t, cfg.Branches, 4)

	lvl, err := ParseLevel(cfg.Log.Level)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "track:\n  forward_count: 8\n")
	t.Setenv("TRACKRUNNER_FORWARD_COUNT", "4")
	t.Setenv("TRACKRUNNER_SEED", "77")
	t.Setenv("TRACKRUNNER_AUTOPILOT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Track.ForwardCount)
	assert.Equal(t, uint64(77), cfg.Run.Seed)
	assert.True(t, cfg.Run.Autopilot)
}

func TestEnvParseError(t *testing.T) {
	t.Setenv("TRACKRUNNER_FORWARD_COUNT", "many")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"sequence of one", "track: {max_sequence_length: 1}", "max sequence length"},
		{"probability", "track: {branch_probability: 2}", "branch probability"},
		{"unknown role", "roads: [{name: r, length: 30, weight: 1, role: sideways}]", "sideways"},
		{"heavy road", "roads: [{name: r, length: 30, weight: 3}]", "weight"},
		{"no roads", "roads: []", "no road templates"},
		{"closed branch", "branches: [{name: wall, length: 30, weight: 1}]", "opens no direction"},
		{"naming", "naming: {start: ''}", "naming"},
		{"log level", "log: {level: loud}", "loud"},
		{"speeds", "run: {runner_speed: 100, runner_max_speed: 50}", "runner_speed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMarshalReloads(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	data, err := cfg.Marshal()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	if diff := cmp.Diff(*cfg, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
