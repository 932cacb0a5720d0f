package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive integer range.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Archetype is one kind of room a flow can place.
type Archetype struct {
	Name        string     `yaml:"name"`
	Size        [3]float64 `yaml:"size"` // x (path axis), y (height), z
	Weight      int        `yaml:"weight"`
	PlayerSpawn bool       `yaml:"player_spawn"`
}

// Flow is a dungeon topology asset: which rooms exist, how long the main
// path is and how many branch rooms hang off it. Flows live one per YAML
// file, named after their address.
type Flow struct {
	Address     string      `yaml:"address"`
	Name        string      `yaml:"name"`
	MainPath    Range       `yaml:"main_path"`    // rooms on the main path, start and goal included
	Branches    Range       `yaml:"branches"`     // number of branches
	BranchDepth Range       `yaml:"branch_depth"` // rooms per branch
	MaxRetries  int         `yaml:"max_retries"`
	Start       string      `yaml:"start"`
	Goal        string      `yaml:"goal"`
	Rooms       []Archetype `yaml:"rooms"`
}

var ErrInvalidFlow = errors.New("invalid flow")

// LoadFlowFile reads and validates one flow asset.
func LoadFlowFile(path string) (*Flow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow %s: %w", path, err)
	}
	var f Flow
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse flow %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("flow %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks the flow is self-consistent. It does not check that the
// ranges are satisfiable together; the generator retries for that.
func (f *Flow) Validate() error {
	if f.Address == "" {
		return fmt.Errorf("%w: missing address", ErrInvalidFlow)
	}
	if len(f.Rooms) == 0 {
		return fmt.Errorf("%w: no room archetypes", ErrInvalidFlow)
	}
	names := make(map[string]struct{}, len(f.Rooms))
	for i, a := range f.Rooms {
		if a.Name == "" {
			return fmt.Errorf("%w: room %d has no name", ErrInvalidFlow, i)
		}
		if _, dup := names[a.Name]; dup {
			return fmt.Errorf("%w: room %q defined twice", ErrInvalidFlow, a.Name)
		}
		names[a.Name] = struct{}{}
		for axis, v := range a.Size {
			if v <= 0 {
				return fmt.Errorf("%w: room %q size[%d] = %v", ErrInvalidFlow, a.Name, axis, v)
			}
		}
		if a.Weight < 0 {
			return fmt.Errorf("%w: room %q has negative weight", ErrInvalidFlow, a.Name)
		}
	}
	for _, ref := range []string{f.Start, f.Goal} {
		if ref == "" {
			continue
		}
		if _, ok := names[ref]; !ok {
			return fmt.Errorf("%w: unknown archetype %q", ErrInvalidFlow, ref)
		}
	}
	if f.MainPath.Min < 1 || f.MainPath.Max < f.MainPath.Min {
		return fmt.Errorf("%w: main_path %d..%d", ErrInvalidFlow, f.MainPath.Min, f.MainPath.Max)
	}
	if f.Branches.Min < 0 || f.Branches.Max < f.Branches.Min {
		return fmt.Errorf("%w: branches %d..%d", ErrInvalidFlow, f.Branches.Min, f.Branches.Max)
	}
	if f.Branches.Max > 0 && (f.BranchDepth.Min < 1 || f.BranchDepth.Max < f.BranchDepth.Min) {
		return fmt.Errorf("%w: branch_depth %d..%d", ErrInvalidFlow, f.BranchDepth.Min, f.BranchDepth.Max)
	}
	return nil
}

// Archetype looks up a room archetype by name.
func (f *Flow) Archetype(name string) (*Archetype, bool) {
	for i := range f.Rooms {
		if f.Rooms[i].Name == name {
			return &f.Rooms[i], true
		}
	}
	return nil, false
}

// Fillers returns the archetypes used between start and goal: every room
// with a positive weight.
func (f *Flow) Fillers() []Archetype {
	var out []Archetype
	for _, a := range f.Rooms {
		if a.Weight > 0 {
			out = append(out, a)
		}
	}
	return out
}
