package soc

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrUnknownTemplate is returned when a name resolves to no template or
// overlay.
var ErrUnknownTemplate = errors.New("unknown template")

// ErrInheritanceCycle is returned when overlays extend each other in a loop.
var ErrInheritanceCycle = errors.New("inheritance cycle")

// Catalog holds every loaded template and overlay by name. A later
// definition with the same name replaces the earlier one.
type Catalog struct {
	Templates map[string]*Template
	Overlays  map[string]*Overlay
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Templates: make(map[string]*Template),
		Overlays:  make(map[string]*Overlay),
	}
}

// AddTemplate registers t, replacing any definition with the same name.
func (c *Catalog) AddTemplate(t *Template) {
	delete(c.Overlays, t.Name)
	c.Templates[t.Name] = t
}

// AddOverlay registers o, replacing any definition with the same name.
func (c *Catalog) AddOverlay(o *Overlay) {
	delete(c.Templates, o.Name)
	c.Overlays[o.Name] = o
}

// Names lists every definition, sorted.
func (c *Catalog) Names() []string {
	names := slices.Collect(maps.Keys(c.Templates))
	names = slices.AppendSeq(names, maps.Keys(c.Overlays))
	slices.Sort(names)
	return names
}

// Chain resolves name to its root template and the overlays leading to it,
// ordered from the root outward.
func (c *Catalog) Chain(name string) (*Template, []*Overlay, error) {
	var overlays []*Overlay
	visited := map[string]bool{}
	path := []string{}

	current := name
	for {
		if visited[current] {
			return nil, nil, fmt.Errorf("%w: %s", ErrInheritanceCycle, strings.Join(append(path, current), " -> "))
		}
		visited[current] = true
		path = append(path, current)

		if t, ok := c.Templates[current]; ok {
			slices.Reverse(overlays)
			return t, overlays, nil
		}
		ov, ok := c.Overlays[current]
		if !ok {
			if current == name {
				return nil, nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
			}
			return nil, nil, fmt.Errorf("%w: %s (base of %s)", ErrUnknownTemplate, current, path[len(path)-2])
		}
		overlays = append(overlays, ov)
		current = ov.Base
	}
}

// Setup resolves name and composes it.
func (c *Catalog) Setup(ctx context.Context, name string, opts Options) (*Design, error) {
	base, overlays, err := c.Chain(name)
	if err != nil {
		return nil, err
	}
	return Setup(ctx, base, overlays, opts)
}
