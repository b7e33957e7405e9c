package track

import "fmt"

type Kind int

const (
	KindRoad Kind = iota
	KindBranch
)

func (k Kind) String() string {
	switch k {
	case KindRoad:
		return "road"
	case KindBranch:
		return "branch"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Role is a template's place in a themed sequence.
type Role int

const (
	RoleUnset  Role = iota // infer from the name when the matcher runs in compat mode
	RolePlain              // ordinary road, never part of a sequence
	RoleStart              // opens a sequence
	RoleMiddle             // continues a sequence
	RoleEnd                // closes a sequence
)

func (r Role) String() string {
	switch r {
	case RoleUnset:
		return "unset"
	case RolePlain:
		return "plain"
	case RoleStart:
		return "start"
	case RoleMiddle:
		return "middle"
	case RoleEnd:
		return "end"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole is the inverse of Role.String. The empty string is RoleUnset.
func ParseRole(s string) (Role, error) {
	switch s {
	case "", "unset":
		return RoleUnset, nil
	case "plain":
		return RolePlain, nil
	case "start":
		return RoleStart, nil
	case "middle":
		return RoleMiddle, nil
	case "end":
		return RoleEnd, nil
	}
	return RoleUnset, fmt.Errorf("unknown role %q", s)
}

// Template describes something the spawner can instantiate.
type Template struct {
	Name   string
	Kind   Kind
	Length float64 // extent along the placement direction
	Width  float64 // extent across it
	Weight float64 // selection weight in [0,1]

	// Explicit sequence tag. Theme is ignored for RolePlain.
	Theme string
	Role  Role
}

func (t *Template) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// Catalog is the set of templates the generator picks from.
type Catalog struct {
	Roads    []*Template
	Branches []*Template
}

// Validate checks the catalog can drive a generator: at least one road,
// positive lengths, weights in [0,1].
func (c *Catalog) Validate() error {
	if c == nil || len(c.Roads) == 0 {
		return ErrNoRoadTemplates
	}
	seen := make(map[string]bool)
	check := func(t *Template, kind Kind) error {
		if t == nil {
			return fmt.Errorf("nil %s template", kind)
		}
		if t.Name == "" {
			return fmt.Errorf("%s template without a name", kind)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate template name %q", t.Name)
		}
		seen[t.Name] = true
		if t.Kind != kind {
			return fmt.Errorf("template %q: kind %s listed as %s", t.Name, t.Kind, kind)
		}
		if t.Length <= 0 {
			return fmt.Errorf("template %q: length must be positive, got %f", t.Name, t.Length)
		}
		if t.Width < 0 {
			return fmt.Errorf("template %q: width must be non-negative, got %f", t.Name, t.Width)
		}
		if t.Weight < 0 || t.Weight > 1 {
			return fmt.Errorf("template %q: weight must be between 0 and 1, got %f", t.Name, t.Weight)
		}
		return nil
	}
	for _, t := range c.Roads {
		if err := check(t, KindRoad); err != nil {
			return err
		}
	}
	for _, t := range c.Branches {
		if err := check(t, KindBranch); err != nil {
			return err
		}
	}
	return nil
}
