package world

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and normalizes a world definition from a YAML file.
// The returned world has passed shape checks only; run the validator
// before making it playable.
func Load(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open world file %s: %w", path, err)
	}
	defer f.Close()

	w, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse world file %s: %w", path, err)
	}
	return w, nil
}

// Parse decodes a world definition from YAML. Unknown fields are
// rejected so that authoring typos fail at load time instead of
// silently producing dead content.
func Parse(r io.Reader) (*World, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var w World
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to decode world: %w", err)
	}

	if err := w.normalize(); err != nil {
		return nil, err
	}
	return &w, nil
}

// normalize converts the loosely-typed authored document into the
// fixed shapes the runtime expects: lowercased direction keys, display
// names defaulted from map keys, and empty maps materialized so
// callers never test for nil.
func (w *World) normalize() error {
	if w.Start == "" {
		return fmt.Errorf("world %q has no start location", w.Name)
	}
	if w.Locations == nil {
		return fmt.Errorf("world %q has no locations", w.Name)
	}

	for key, loc := range w.Locations {
		if loc == nil {
			return fmt.Errorf("location %q is empty", key)
		}
		if loc.Name == "" {
			loc.Name = key
		}

		if len(loc.Exits) > 0 {
			exits := make(map[string]*Exit, len(loc.Exits))
			for dir, ex := range loc.Exits {
				if ex == nil || ex.To == "" {
					return fmt.Errorf("location %q: exit %q has no destination", key, dir)
				}
				lower := strings.ToLower(dir)
				if _, dup := exits[lower]; dup {
					return fmt.Errorf("location %q: duplicate exit direction %q", key, lower)
				}
				exits[lower] = ex
			}
			loc.Exits = exits
		}

		if loc.Requires != nil && loc.Requires.Flag == "" && loc.Requires.Item == "" {
			return fmt.Errorf("location %q: requirement names neither flag nor item", key)
		}
	}

	for key, it := range w.Items {
		if it == nil {
			return fmt.Errorf("item %q is empty", key)
		}
		if it.Name == "" {
			it.Name = key
		}
	}

	for key, n := range w.NPCs {
		if n == nil {
			return fmt.Errorf("npc %q is empty", key)
		}
		if n.Name == "" {
			n.Name = key
		}
	}

	return nil
}

// UnmarshalYAML lets a placement be authored either as a bare string
// (the placement description) or as a full mapping.
func (p *Placement) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Description = value.Value
		return nil
	}

	type alias Placement
	var a alias
	if err := value.Decode(&a); err != nil {
		return err
	}
	*p = Placement(a)
	return nil
}

// UnmarshalYAML lets a detail be authored as a bare description string.
func (d *Detail) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		d.Description = value.Value
		return nil
	}

	type alias Detail
	var a alias
	if err := value.Decode(&a); err != nil {
		return err
	}
	*d = Detail(a)
	return nil
}
