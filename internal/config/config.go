// Package config loads trackrunner settings: embedded defaults, then an
// optional YAML file, then TRACKRUNNER_* environment variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"trackrunner/internal/track"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Track    TrackSection   `yaml:"track"`
	Naming   NamingSection  `yaml:"naming"`
	Roads    []RoadEntry    `yaml:"roads"`
	Branches []BranchEntry  `yaml:"branches"`
	Run      RunSection     `yaml:"run"`
	Desktop  DesktopSection `yaml:"desktop"`
	Log      LogSection     `yaml:"log"`
}

type TrackSection struct {
	ForwardCount            int     `yaml:"forward_count" env:"TRACKRUNNER_FORWARD_COUNT"`
	BackwardCount           int     `yaml:"backward_count" env:"TRACKRUNNER_BACKWARD_COUNT"`
	RoadLength              float64 `yaml:"road_length" env:"TRACKRUNNER_ROAD_LENGTH"`
	BranchProbability       float64 `yaml:"branch_probability" env:"TRACKRUNNER_BRANCH_PROBABILITY"`
	MinRoadsBetweenBranches int     `yaml:"min_roads_between_branches" env:"TRACKRUNNER_MIN_ROADS_BETWEEN_BRANCHES"`
	MaxSequenceLength       int     `yaml:"max_sequence_length" env:"TRACKRUNNER_MAX_SEQUENCE_LENGTH"`
	ClearRadius             float64 `yaml:"clear_radius" env:"TRACKRUNNER_CLEAR_RADIUS"`
}

type NamingSection struct {
	Compat       bool   `yaml:"compat" env:"TRACKRUNNER_NAMING_COMPAT"`
	ThemePattern string `yaml:"theme_pattern"`
	Start        string `yaml:"start"`
	Middle       string `yaml:"middle"`
	End          string `yaml:"end"`
}

// RoadEntry is one road template. Role is empty, plain, start, middle
// or end; an empty role defers to the naming law.
type RoadEntry struct {
	Name    string  `yaml:"name"`
	Length  float64 `yaml:"length"`
	Width   float64 `yaml:"width"`
	Weight  float64 `yaml:"weight"`
	Theme   string  `yaml:"theme,omitempty"`
	Role    string  `yaml:"role,omitempty"`
	Palette string  `yaml:"palette,omitempty"`
}

type BranchEntry struct {
	Name    string  `yaml:"name"`
	Length  float64 `yaml:"length"`
	Width   float64 `yaml:"width"`
	Weight  float64 `yaml:"weight"`
	Forward bool    `yaml:"forward,omitempty"`
	Left    bool    `yaml:"left,omitempty"`
	Right   bool    `yaml:"right,omitempty"`
}

type RunSection struct {
	Seed           uint64  `yaml:"seed" env:"TRACKRUNNER_SEED"`
	TickRate       int     `yaml:"tick_rate" env:"TRACKRUNNER_TICK_RATE"`
	Ticks          int     `yaml:"ticks" env:"TRACKRUNNER_TICKS"`
	RunnerSpeed    float64 `yaml:"runner_speed" env:"TRACKRUNNER_RUNNER_SPEED"`
	RunnerMaxSpeed float64 `yaml:"runner_max_speed" env:"TRACKRUNNER_RUNNER_MAX_SPEED"`
	PursuerDelay   float64 `yaml:"pursuer_delay" env:"TRACKRUNNER_PURSUER_DELAY"`
	Autopilot      bool    `yaml:"autopilot" env:"TRACKRUNNER_AUTOPILOT"`
}

type DesktopSection struct {
	Width       int    `yaml:"width" env:"TRACKRUNNER_WINDOW_WIDTH"`
	Height      int    `yaml:"height" env:"TRACKRUNNER_WINDOW_HEIGHT"`
	Title       string `yaml:"title"`
	VSync       bool   `yaml:"vsync" env:"TRACKRUNNER_VSYNC"`
	Audio       bool   `yaml:"audio" env:"TRACKRUNNER_AUDIO"`
	MetricsAddr string `yaml:"metrics_addr" env:"TRACKRUNNER_METRICS_ADDR"`
	Journal     string `yaml:"journal" env:"TRACKRUNNER_JOURNAL"`
}

type LogSection struct {
	Level string `yaml:"level" env:"TRACKRUNNER_LOG_LEVEL"`
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return &cfg, nil
}

// Load layers the file at path (if any) and the environment over the
// defaults and validates the result. Lists in the file replace the
// default lists wholesale.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for _, section := range []any{&c.Track, &c.Naming, &c.Run, &c.Desktop, &c.Log} {
		if err := env.Parse(section); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return nil
}

// Validate reports every problem it finds, joined.
func (c *Config) Validate() error {
	var errs []error
	if err := c.TrackConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("track: %w", err))
	}
	if _, err := c.Matcher(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Catalog(); err != nil {
		errs = append(errs, err)
	}
	for _, b := range c.Branches {
		if !b.Forward && !b.Left && !b.Right {
			errs = append(errs, fmt.Errorf("branch %q opens no direction", b.Name))
		}
	}
	if c.Run.TickRate < 1 {
		errs = append(errs, fmt.Errorf("run: tick rate must be at least 1, got %d", c.Run.TickRate))
	}
	if c.Run.Ticks < 0 {
		errs = append(errs, fmt.Errorf("run: ticks must be non-negative, got %d", c.Run.Ticks))
	}
	if c.Run.RunnerSpeed <= 0 || c.Run.RunnerMaxSpeed < c.Run.RunnerSpeed {
		errs = append(errs, fmt.Errorf("run: need 0 < runner_speed <= runner_max_speed, got %g and %g",
			c.Run.RunnerSpeed, c.Run.RunnerMaxSpeed))
	}
	if c.Run.PursuerDelay <= 0 {
		errs = append(errs, fmt.Errorf("run: pursuer delay must be positive, got %g", c.Run.PursuerDelay))
	}
	if c.Desktop.Width < 1 || c.Desktop.Height < 1 {
		errs = append(errs, fmt.Errorf("desktop: window size must be positive, got %dx%d", c.Desktop.Width, c.Desktop.Height))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) TrackConfig() track.Config {
	return track.Config{
		ForwardCount:            c.Track.ForwardCount,
		BackwardCount:           c.Track.BackwardCount,
		RoadLength:              c.Track.RoadLength,
		BranchProbability:       c.Track.BranchProbability,
		MinRoadsBetweenBranches: c.Track.MinRoadsBetweenBranches,
		MaxSequenceLength:       c.Track.MaxSequenceLength,
		ClearRadius:             c.Track.ClearRadius,
	}
}

func (c *Config) NamingLaw() track.NamingLaw {
	return track.NamingLaw{
		ThemePattern: c.Naming.ThemePattern,
		StartCode:    c.Naming.Start,
		MiddleCode:   c.Naming.Middle,
		EndCode:      c.Naming.End,
	}
}

func (c *Config) Matcher() (*track.Matcher, error) {
	m, err := track.NewMatcher(c.NamingLaw(), c.Naming.Compat)
	if err != nil {
		return nil, fmt.Errorf("naming: %w", err)
	}
	return m, nil
}

// Catalog converts the template lists.
func (c *Config) Catalog() (*track.Catalog, error) {
	cat := &track.Catalog{}
	for _, r := range c.Roads {
		role, err := track.ParseRole(r.Role)
		if err != nil {
			return nil, fmt.Errorf("road %q: %w", r.Name, err)
		}
		cat.Roads = append(cat.Roads, &track.Template{
			Name:   r.Name,
			Kind:   track.KindRoad,
			Length: r.Length,
			Width:  r.Width,
			Weight: r.Weight,
			Theme:  r.Theme,
			Role:   role,
		})
	}
	for _, b := range c.Branches {
		cat.Branches = append(cat.Branches, &track.Template{
			Name:   b.Name,
			Kind:   track.KindBranch,
			Length: b.Length,
			Width:  b.Width,
			Weight: b.Weight,
		})
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return cat, nil
}

// Descriptors maps branch template names to the directions they open.
func (c *Config) Descriptors() map[string]track.BranchDescriptor {
	out := make(map[string]track.BranchDescriptor, len(c.Branches))
	for _, b := range c.Branches {
		out[b.Name] = track.BranchDescriptor{CanGoForward: b.Forward, CanGoLeft: b.Left, CanGoRight: b.Right}
	}
	return out
}

// Palettes maps road template names to their palette key.
func (c *Config) Palettes() map[string]string {
	out := make(map[string]string, len(c.Roads))
	for _, r := range c.Roads {
		if r.Palette != "" {
			out[r.Name] = r.Palette
		}
	}
	return out
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log: unknown level %q", s)
	}
	return l, nil
}
